package models

import (
	"database/sql"
	"time"
)

type MediaPost struct {
	ID                  int64          `db:"id" json:"id"`
	ProjectID           int64          `db:"project_id" json:"project_id"`
	AutoListID          sql.NullInt64  `db:"auto_list_id" json:"auto_list_id"`
	MediaKey            string         `db:"media_key" json:"media_key"`
	CoverKey            sql.NullString `db:"cover_key" json:"cover_key"`
	Description         string         `db:"description" json:"description"`
	ProcessedInAutoList bool           `db:"processed_in_auto_list" json:"processed_in_auto_list"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}
