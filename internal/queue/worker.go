package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/postpilot/autopost/internal/service"
)

// HandlePublishTask drives one publication record. Errors propagate so asynq
// retries the whole use case, except not-found and credential failures, which
// stay failed no matter how often they run.
func (q *Queue) HandlePublishTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid publish payload: %v: %w", err, asynq.SkipRetry)
	}

	err := q.ps.Publish(ctx, payload.RecordID)
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrCredential) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
