package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/autopost/internal/models"
)

type PublicationRepository interface {
	Create(ctx context.Context, tx *sql.Tx, rec *models.PublicationRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PublicationRecord, error)
	ListByMediaPostID(ctx context.Context, mediaPostID int64) ([]*models.PublicationRecord, error)
	SetProcessing(ctx context.Context, id int64) error
	SetPublished(ctx context.Context, id int64, externalPostID, publicURL string) error
	SetFailed(ctx context.Context, id int64, errorMessage string) error
}

type publicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) Create(ctx context.Context, tx *sql.Tx, rec *models.PublicationRecord) (int64, error) {
	query := `
		INSERT INTO publication_records (media_post_id, account_id, provider, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, rec.MediaPostID, rec.AccountID, rec.Provider, rec.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, rec.MediaPostID, rec.AccountID, rec.Provider, rec.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id int64) (*models.PublicationRecord, error) {
	query := `SELECT id, media_post_id, account_id, provider, status, external_post_id, public_url, error_message, created_at, updated_at FROM publication_records WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var rec models.PublicationRecord
	err := row.Scan(&rec.ID, &rec.MediaPostID, &rec.AccountID, &rec.Provider, &rec.Status, &rec.ExternalPostID, &rec.PublicURL, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &rec, nil
}

func (r *publicationRepository) ListByMediaPostID(ctx context.Context, mediaPostID int64) ([]*models.PublicationRecord, error) {
	query := `SELECT id, media_post_id, account_id, provider, status, external_post_id, public_url, error_message, created_at, updated_at FROM publication_records WHERE media_post_id = $1`
	rows, err := r.db.QueryContext(ctx, query, mediaPostID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var recs []*models.PublicationRecord
	for rows.Next() {
		var rec models.PublicationRecord
		err := rows.Scan(&rec.ID, &rec.MediaPostID, &rec.AccountID, &rec.Provider, &rec.Status, &rec.ExternalPostID, &rec.PublicURL, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

func (r *publicationRepository) SetProcessing(ctx context.Context, id int64) error {
	query := `
		UPDATE publication_records
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PublicationStatusProcessing, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *publicationRepository) SetPublished(ctx context.Context, id int64, externalPostID, publicURL string) error {
	query := `
		UPDATE publication_records
		SET status = $1,
			external_post_id = $2,
			public_url = $3,
			error_message = '',
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PublicationStatusPublished, externalPostID, publicURL, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *publicationRepository) SetFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE publication_records
		SET status = $1,
			error_message = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PublicationStatusFailed, errorMessage, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
