package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/autopost/internal/models"
)

type AutoListRepository interface {
	Create(ctx context.Context, tx *sql.Tx, al *models.AutoList, accountIDs []int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.AutoList, error)
	ListByProjectID(ctx context.Context, projectID int64) ([]*models.AutoList, error)
	Update(ctx context.Context, tx *sql.Tx, al *models.AutoList, accountIDs []int64) error
	ListAccounts(ctx context.Context, autoListID int64) ([]*models.SocialAccount, error)
	Remove(ctx context.Context, id int64) error
}

type autoListRepository struct {
	db *sql.DB
}

func NewAutoListRepository(db *sql.DB) AutoListRepository {
	return &autoListRepository{db: db}
}

func (r *autoListRepository) Create(ctx context.Context, tx *sql.Tx, al *models.AutoList, accountIDs []int64) (int64, error) {
	query := `
		INSERT INTO auto_lists (project_id, name, share_to_feed)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, al.ProjectID, al.Name, al.ShareToFeed).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, al.ProjectID, al.Name, al.ShareToFeed).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err := r.replaceAccounts(ctx, tx, id, accountIDs); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *autoListRepository) replaceAccounts(ctx context.Context, tx *sql.Tx, autoListID int64, accountIDs []int64) error {
	deleteQuery := `DELETE FROM auto_list_accounts WHERE auto_list_id = $1`
	insertQuery := `INSERT INTO auto_list_accounts (auto_list_id, account_id) VALUES ($1, $2)`

	exec := func(q string, args ...interface{}) error {
		var err error
		if tx != nil {
			_, err = tx.ExecContext(ctx, q, args...)
		} else {
			_, err = r.db.ExecContext(ctx, q, args...)
		}
		return err
	}

	if err := exec(deleteQuery, autoListID); err != nil {
		slog.Info(err.Error())
		return err
	}
	for _, accountID := range accountIDs {
		if err := exec(insertQuery, autoListID, accountID); err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return nil
}

func (r *autoListRepository) GetByID(ctx context.Context, id int64) (*models.AutoList, error) {
	query := `SELECT id, project_id, name, share_to_feed, created_at, updated_at FROM auto_lists WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var al models.AutoList
	err := row.Scan(&al.ID, &al.ProjectID, &al.Name, &al.ShareToFeed, &al.CreatedAt, &al.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &al, nil
}

func (r *autoListRepository) ListByProjectID(ctx context.Context, projectID int64) ([]*models.AutoList, error) {
	query := `SELECT id, project_id, name, share_to_feed, created_at, updated_at FROM auto_lists WHERE project_id = $1`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var lists []*models.AutoList
	for rows.Next() {
		var al models.AutoList
		err := rows.Scan(&al.ID, &al.ProjectID, &al.Name, &al.ShareToFeed, &al.CreatedAt, &al.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		lists = append(lists, &al)
	}
	return lists, nil
}

func (r *autoListRepository) Update(ctx context.Context, tx *sql.Tx, al *models.AutoList, accountIDs []int64) error {
	query := `
		UPDATE auto_lists
		SET name = $1,
			share_to_feed = $2,
			updated_at = $3
		WHERE id = $4
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, al.Name, al.ShareToFeed, time.Now(), al.ID)
	} else {
		_, err = r.db.ExecContext(ctx, query, al.Name, al.ShareToFeed, time.Now(), al.ID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if accountIDs != nil {
		if err := r.replaceAccounts(ctx, tx, al.ID, accountIDs); err != nil {
			return err
		}
	}
	return nil
}

func (r *autoListRepository) ListAccounts(ctx context.Context, autoListID int64) ([]*models.SocialAccount, error) {
	query := `
		SELECT sa.id, sa.project_id, sa.provider, sa.account_username, sa.credentials, sa.token_expires_at, sa.created_at, sa.updated_at
		FROM social_accounts sa
		JOIN auto_list_accounts ala ON ala.account_id = sa.id
		WHERE ala.auto_list_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, autoListID)
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

func (r *autoListRepository) Remove(ctx context.Context, id int64) error {
	// Entries and account links cascade via FK.
	query := `DELETE FROM auto_lists WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
