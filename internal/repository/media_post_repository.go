package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postpilot/autopost/internal/models"
)

type MediaPostRepository interface {
	Create(ctx context.Context, post *models.MediaPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.MediaPost, error)
	CheckByProjectID(ctx context.Context, postID, projectID int64) (bool, error)
	UpdateContent(ctx context.Context, id int64, description string, coverKey sql.NullString) error
	ClaimNext(ctx context.Context, tx *sql.Tx, autoListID int64) (*models.MediaPost, error)
}

type mediaPostRepository struct {
	db *sql.DB
}

func NewMediaPostRepository(db *sql.DB) MediaPostRepository {
	return &mediaPostRepository{db: db}
}

func (r *mediaPostRepository) Create(ctx context.Context, post *models.MediaPost) (int64, error) {
	query := `
		INSERT INTO media_posts (project_id, auto_list_id, media_key, cover_key, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.ProjectID, post.AutoListID, post.MediaKey, post.CoverKey, post.Description).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *mediaPostRepository) GetByID(ctx context.Context, id int64) (*models.MediaPost, error) {
	query := `SELECT id, project_id, auto_list_id, media_key, cover_key, description, processed_in_auto_list, created_at FROM media_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.MediaPost
	err := row.Scan(&post.ID, &post.ProjectID, &post.AutoListID, &post.MediaKey, &post.CoverKey, &post.Description, &post.ProcessedInAutoList, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}

func (r *mediaPostRepository) CheckByProjectID(ctx context.Context, postID, projectID int64) (bool, error) {
	query := `SELECT 1 FROM media_posts WHERE id = $1 AND project_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, projectID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// UpdateContent overrides description and cover for a manual publish; empty
// values keep what is already stored.
func (r *mediaPostRepository) UpdateContent(ctx context.Context, id int64, description string, coverKey sql.NullString) error {
	query := `
		UPDATE media_posts
		SET description = COALESCE(NULLIF($1, ''), description),
			cover_key = COALESCE($2, cover_key)
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, description, coverKey, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ClaimNext flips processed_in_auto_list on the oldest unprocessed post of the
// autolist and returns it, or (nil, nil) when nothing is queued. Selection and
// flag flip are one statement, so concurrent firings cannot claim the same
// post; SKIP LOCKED makes the loser move on to the next-oldest row instead of
// blocking.
func (r *mediaPostRepository) ClaimNext(ctx context.Context, tx *sql.Tx, autoListID int64) (*models.MediaPost, error) {
	query := `
		UPDATE media_posts
		SET processed_in_auto_list = TRUE
		WHERE id = (
			SELECT id FROM media_posts
			WHERE auto_list_id = $1 AND processed_in_auto_list = FALSE
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, project_id, auto_list_id, media_key, cover_key, description, processed_in_auto_list, created_at
	`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, autoListID)
	} else {
		row = r.db.QueryRowContext(ctx, query, autoListID)
	}

	var post models.MediaPost
	err := row.Scan(&post.ID, &post.ProjectID, &post.AutoListID, &post.MediaKey, &post.CoverKey, &post.Description, &post.ProcessedInAutoList, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}
