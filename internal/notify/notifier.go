// Package notify pushes publication status changes to interested listeners
// over a Redis channel. Delivery is fire and forget: a failed notification is
// logged and never fails the publish that produced it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const statusChannel = "publications:status"

type StatusChange struct {
	RecordID     int64  `json:"record_id"`
	Status       string `json:"status"`
	PublicURL    string `json:"public_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type Notifier interface {
	NotifyStatusChanged(ctx context.Context, change StatusChange)
}

type redisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) Notifier {
	return &redisNotifier{client: client}
}

func (n *redisNotifier) NotifyStatusChanged(ctx context.Context, change StatusChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if err := n.client.Publish(ctx, statusChannel, payload).Err(); err != nil {
		slog.Info("failed to publish status notification", "record_id", change.RecordID, "error", err.Error())
	}
}
