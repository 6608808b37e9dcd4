package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postpilot/autopost/internal/models"
)

type AutoListEntryRepository interface {
	Create(ctx context.Context, entry *models.AutoListEntry) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.AutoListEntry, error)
	ListByAutoListID(ctx context.Context, autoListID int64) ([]*models.AutoListEntry, error)
	ListDue(ctx context.Context, weekdayBit int, minuteOfDay string) ([]*models.AutoListEntry, error)
	Update(ctx context.Context, entry *models.AutoListEntry) error
	Remove(ctx context.Context, id int64) error
}

type autoListEntryRepository struct {
	db *sql.DB
}

func NewAutoListEntryRepository(db *sql.DB) AutoListEntryRepository {
	return &autoListEntryRepository{db: db}
}

func (r *autoListEntryRepository) Create(ctx context.Context, entry *models.AutoListEntry) (int64, error) {
	query := `
		INSERT INTO auto_list_entries (auto_list_id, day_of_weeks, publication_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.AutoListID, entry.DayOfWeeks, entry.PublicationTime).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *autoListEntryRepository) GetByID(ctx context.Context, id int64) (*models.AutoListEntry, error) {
	query := `SELECT id, auto_list_id, day_of_weeks, to_char(publication_time, 'HH24:MI'), created_at FROM auto_list_entries WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var entry models.AutoListEntry
	err := row.Scan(&entry.ID, &entry.AutoListID, &entry.DayOfWeeks, &entry.PublicationTime, &entry.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &entry, nil
}

func (r *autoListEntryRepository) ListByAutoListID(ctx context.Context, autoListID int64) ([]*models.AutoListEntry, error) {
	query := `SELECT id, auto_list_id, day_of_weeks, to_char(publication_time, 'HH24:MI'), created_at FROM auto_list_entries WHERE auto_list_id = $1`
	return r.list(ctx, query, autoListID)
}

// ListDue returns every entry whose mask covers weekdayBit and whose slot time
// equals minuteOfDay ("HH:MM"). Mirrors schedule.Matches in SQL.
func (r *autoListEntryRepository) ListDue(ctx context.Context, weekdayBit int, minuteOfDay string) ([]*models.AutoListEntry, error) {
	query := `
		SELECT id, auto_list_id, day_of_weeks, to_char(publication_time, 'HH24:MI'), created_at
		FROM auto_list_entries
		WHERE (day_of_weeks & $1) <> 0
		AND publication_time = $2::time
	`
	return r.list(ctx, query, weekdayBit, minuteOfDay)
}

func (r *autoListEntryRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.AutoListEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AutoListEntry
	for rows.Next() {
		var entry models.AutoListEntry
		err := rows.Scan(&entry.ID, &entry.AutoListID, &entry.DayOfWeeks, &entry.PublicationTime, &entry.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (r *autoListEntryRepository) Update(ctx context.Context, entry *models.AutoListEntry) error {
	query := `
		UPDATE auto_list_entries
		SET day_of_weeks = $1,
			publication_time = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, entry.DayOfWeeks, entry.PublicationTime, entry.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *autoListEntryRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM auto_list_entries WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
