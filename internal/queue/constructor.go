package queue

import (
	"github.com/postpilot/autopost/internal/service"
)

type Queue struct {
	ps service.PublicationService
}

func NewQueue(ps service.PublicationService) *Queue {
	return &Queue{ps: ps}
}

const TaskTypePublishRecord = "publication:publish"

type PublishPayload struct {
	RecordID int64 `json:"record_id"`
}
