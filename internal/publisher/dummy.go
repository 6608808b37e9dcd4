package publisher

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DummyPublisher satisfies the Publisher interface without talking to any
// provider. Used in non-production environments and tests.
type DummyPublisher struct{}

func NewDummyPublisher() *DummyPublisher {
	return &DummyPublisher{}
}

func (d *DummyPublisher) Publish(ctx context.Context, req Request) (*Result, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	slog.Info("dummy publish", "account", req.BusinessAccountID, "media_url", req.MediaURL)

	return &Result{
		ExternalPostID: id,
		PublicURL:      fmt.Sprintf("https://example.invalid/p/%s", id),
	}, nil
}
