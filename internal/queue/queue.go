package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// publishMaxRetry is the job-layer retry budget: 3 attempts total for one
// Publish use case. Independent of the resilience policies inside the
// provider client, which retry individual network calls.
const publishMaxRetry = 2

// Enqueuer implements service.PublishEnqueuer on top of asynq.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueuePublish(ctx context.Context, recordID int64) error {
	payload, err := json.Marshal(PublishPayload{RecordID: recordID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishRecord, payload)

	_, err = e.client.EnqueueContext(ctx, task, asynq.MaxRetry(publishMaxRetry))
	if err != nil {
		return err
	}

	slog.Info("publication task enqueued", "record_id", recordID)
	return nil
}
