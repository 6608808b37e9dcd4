package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/postpilot/autopost/internal/models"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	ListByProjectID(ctx context.Context, projectID int64) ([]*models.SocialAccount, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialAccount, error)
	CheckByProjectID(ctx context.Context, projectID int64, accountIDs []int64) (bool, error)
	SetCredentials(ctx context.Context, id int64, credentials string, expiresAt time.Time) error
	Remove(ctx context.Context, id int64) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

func (r *socialAccountRepository) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	query := `
		INSERT INTO social_accounts (project_id, provider, account_username, credentials, token_expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, sa.ProjectID, sa.Provider, sa.AccountUsername, sa.Credentials, sa.TokenExpiresAt).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, sa.ProjectID, sa.Provider, sa.AccountUsername, sa.Credentials, sa.TokenExpiresAt).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT id, project_id, provider, account_username, credentials, token_expires_at, created_at, updated_at FROM social_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.ProjectID, &sa.Provider, &sa.AccountUsername, &sa.Credentials, &sa.TokenExpiresAt, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

func (r *socialAccountRepository) ListByProjectID(ctx context.Context, projectID int64) ([]*models.SocialAccount, error) {
	query := `SELECT id, project_id, provider, account_username, credentials, token_expires_at, created_at, updated_at FROM social_accounts WHERE project_id = $1`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.ProjectID, &sa.Provider, &sa.AccountUsername, &sa.Credentials, &sa.TokenExpiresAt, &sa.CreatedAt, &sa.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}
	return accounts, nil
}

func (r *socialAccountRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT id, project_id, provider, account_username, credentials, token_expires_at, created_at, updated_at FROM social_accounts WHERE token_expires_at < $1`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.ProjectID, &sa.Provider, &sa.AccountUsername, &sa.Credentials, &sa.TokenExpiresAt, &sa.CreatedAt, &sa.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

// CheckByProjectID reports whether every account id belongs to the project.
func (r *socialAccountRepository) CheckByProjectID(ctx context.Context, projectID int64, accountIDs []int64) (bool, error) {
	if len(accountIDs) == 0 {
		return true, nil
	}
	query := `SELECT COUNT(*) FROM social_accounts WHERE project_id = $1 AND id = ANY($2)`

	var count int
	err := r.db.QueryRowContext(ctx, query, projectID, pq.Array(accountIDs)).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return count == len(accountIDs), nil
}

func (r *socialAccountRepository) SetCredentials(ctx context.Context, id int64, credentials string, expiresAt time.Time) error {
	query := `
		UPDATE social_accounts
		SET credentials = $1,
			token_expires_at = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, credentials, expiresAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
