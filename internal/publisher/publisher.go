// Package publisher maps a provider to its publish protocol implementation.
package publisher

import (
	"context"
	"fmt"

	config "github.com/postpilot/autopost/configs"
)

type Provider string

const (
	ProviderInstagram Provider = "instagram"
	ProviderDummy     Provider = "dummy"
)

// Request carries everything one publish attempt needs. MediaURL and CoverURL
// must be fetchable by the provider (presigned), and AccessToken is already
// decrypted.
type Request struct {
	BusinessAccountID string
	AccessToken       string
	MediaURL          string
	CoverURL          string
	Description       string
	ShareToFeed       bool
}

type Result struct {
	ExternalPostID string
	PublicURL      string
}

type Publisher interface {
	Publish(ctx context.Context, req Request) (*Result, error)
}

type Factory struct {
	publishers map[Provider]Publisher
}

// NewFactory wires one Publisher per provider. Outside production every
// provider resolves to the dummy implementation so nothing hits the network.
func NewFactory(cfg config.Config) *Factory {
	dummy := NewDummyPublisher()

	publishers := map[Provider]Publisher{
		ProviderInstagram: NewInstagramPublisher(cfg.GraphAPIBaseURL),
		ProviderDummy:     dummy,
	}
	if cfg.Env != "production" {
		publishers[ProviderInstagram] = dummy
	}

	return &Factory{publishers: publishers}
}

// NewFactoryWith builds a factory from explicit implementations, used by
// tests and by callers that need a custom client.
func NewFactoryWith(publishers map[Provider]Publisher) *Factory {
	return &Factory{publishers: publishers}
}

func (f *Factory) For(provider Provider) (Publisher, error) {
	p, ok := f.publishers[provider]
	if !ok {
		return nil, fmt.Errorf("no publisher registered for provider %q", provider)
	}
	return p, nil
}
