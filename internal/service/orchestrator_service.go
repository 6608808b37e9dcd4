package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/repository"
)

// PublishEnqueuer hands a freshly created publication record to the job
// queue. Implemented by internal/queue; kept as an interface here so the
// orchestrator does not depend on the queue wiring.
type PublishEnqueuer interface {
	EnqueuePublish(ctx context.Context, recordID int64) error
}

// PublicationOrchestrator claims the next unpublished media post of an
// autolist and fans it out to every linked account.
type PublicationOrchestrator interface {
	FireEntry(ctx context.Context, entryID int64) error
}

type orchestratorService struct {
	db  *sql.DB
	er  repository.AutoListEntryRepository
	al  repository.AutoListRepository
	mp  repository.MediaPostRepository
	pr  repository.PublicationRepository
	enq PublishEnqueuer
}

func NewPublicationOrchestrator(
	db *sql.DB,
	er repository.AutoListEntryRepository,
	al repository.AutoListRepository,
	mp repository.MediaPostRepository,
	pr repository.PublicationRepository,
	enq PublishEnqueuer) PublicationOrchestrator {
	return &orchestratorService{
		db:  db,
		er:  er,
		al:  al,
		mp:  mp,
		pr:  pr,
		enq: enq,
	}
}

// FireEntry runs one firing of a due entry. The claim and the record fan-out
// share one transaction, so a media post is claimed by at most one firing
// even when entries fire concurrently, and a partially fanned-out claim is
// never observable. An autolist with nothing queued is a no-op, not an error.
func (s *orchestratorService) FireEntry(ctx context.Context, entryID int64) error {
	entry, err := s.er.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("error loading entry %d: %w", entryID, err)
	}
	if entry == nil {
		slog.Info("autolist entry does not exist", "entry_id", entryID)
		return fmt.Errorf("autolist entry %d: %w", entryID, ErrNotFound)
	}

	autoList, err := s.al.GetByID(ctx, entry.AutoListID)
	if err != nil {
		return fmt.Errorf("error loading autolist %d: %w", entry.AutoListID, err)
	}
	if autoList == nil {
		slog.Info("autolist does not exist", "auto_list_id", entry.AutoListID)
		return fmt.Errorf("autolist %d: %w", entry.AutoListID, ErrNotFound)
	}

	accounts, err := s.al.ListAccounts(ctx, autoList.ID)
	if err != nil {
		return fmt.Errorf("error loading linked accounts: %w", err)
	}
	if len(accounts) == 0 {
		slog.Info("autolist has no linked accounts", "auto_list_id", autoList.ID)
		return nil
	}

	var tx *sql.Tx
	if s.db != nil {
		tx, err = s.db.BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}
		defer tx.Rollback()
	}

	post, err := s.mp.ClaimNext(ctx, tx, autoList.ID)
	if err != nil {
		return fmt.Errorf("error claiming next post: %w", err)
	}
	if post == nil {
		slog.Info("nothing queued to publish", "auto_list_id", autoList.ID)
		return nil
	}

	recordIDs := make([]int64, 0, len(accounts))
	for _, account := range accounts {
		rec := models.PublicationRecord{
			MediaPostID: post.ID,
			AccountID:   account.ID,
			Provider:    account.Provider,
			Status:      models.PublicationStatusScheduled,
		}
		id, err := s.pr.Create(ctx, tx, &rec)
		if err != nil {
			return fmt.Errorf("error creating publication record for account %d: %w", account.ID, err)
		}
		recordIDs = append(recordIDs, id)
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	// The claim is durable at this point; a lost enqueue is recoverable by
	// re-enqueueing the record, not by re-claiming the post.
	for _, recordID := range recordIDs {
		if err := s.enq.EnqueuePublish(ctx, recordID); err != nil {
			slog.Error("failed to enqueue publication", "record_id", recordID, "error", err.Error())
		}
	}

	slog.Info("entry fired", "entry_id", entryID, "media_post_id", post.ID, "records", len(recordIDs))
	return nil
}
