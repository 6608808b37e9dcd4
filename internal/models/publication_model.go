package models

import "time"

type PublicationRecord struct {
	ID             int64     `db:"id" json:"id"`
	MediaPostID    int64     `db:"media_post_id" json:"media_post_id"`
	AccountID      int64     `db:"account_id" json:"account_id"`
	Provider       string    `db:"provider" json:"provider"`
	Status         string    `db:"status" json:"status"`
	ExternalPostID string    `db:"external_post_id" json:"external_post_id"`
	PublicURL      string    `db:"public_url" json:"public_url"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Status transitions are monotonic: scheduled -> processing -> published|failed.
const (
	PublicationStatusScheduled  = "scheduled"
	PublicationStatusProcessing = "processing"
	PublicationStatusPublished  = "published"
	PublicationStatusFailed     = "failed"
)
