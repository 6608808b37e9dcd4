package models

import "time"

type AutoList struct {
	ID          int64     `db:"id" json:"id"`
	ProjectID   int64     `db:"project_id" json:"project_id"`
	Name        string    `db:"name" json:"name"`
	ShareToFeed bool      `db:"share_to_feed" json:"share_to_feed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AutoListEntry is one weekly recurring slot. DayOfWeeks is a bitmask with
// bit 0 (value 1) = Monday through bit 6 (value 64) = Sunday; valid values are
// 1..127. PublicationTime is a minute-precision time of day in "15:04" form,
// with no date component.
type AutoListEntry struct {
	ID              int64     `db:"id" json:"id"`
	AutoListID      int64     `db:"auto_list_id" json:"auto_list_id"`
	DayOfWeeks      int       `db:"day_of_weeks" json:"day_of_weeks"`
	PublicationTime string    `db:"publication_time" json:"publication_time"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
