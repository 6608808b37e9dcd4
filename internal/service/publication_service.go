package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/notify"
	"github.com/postpilot/autopost/internal/publisher"
	"github.com/postpilot/autopost/internal/repository"
	"github.com/postpilot/autopost/internal/storage"
	"github.com/postpilot/autopost/internal/transfer"
)

type PublicationService interface {
	// Publish drives one publication record through the provider protocol.
	// Precondition: the record is not already published; the job runner never
	// re-invokes completed work. Re-invoking a processing or failed record
	// re-attempts the provider call.
	Publish(ctx context.Context, recordID int64) error
	CreateDirect(ctx context.Context, projectID int64, req *transfer.PublishRequest) ([]*transfer.PublicationCreated, error)
	Record(ctx context.Context, recordID int64) (*models.PublicationRecord, error)
}

type publicationService struct {
	pr      repository.PublicationRepository
	mp      repository.MediaPostRepository
	sa      repository.SocialAccountRepository
	al      repository.AutoListRepository
	factory *publisher.Factory
	creds   *CredentialStore
	media   storage.MediaStorage
	notif   notify.Notifier
	enq     PublishEnqueuer
}

func NewPublicationService(
	pr repository.PublicationRepository,
	mp repository.MediaPostRepository,
	sa repository.SocialAccountRepository,
	al repository.AutoListRepository,
	factory *publisher.Factory,
	creds *CredentialStore,
	media storage.MediaStorage,
	notif notify.Notifier,
	enq PublishEnqueuer) PublicationService {
	return &publicationService{
		pr:      pr,
		mp:      mp,
		sa:      sa,
		al:      al,
		factory: factory,
		creds:   creds,
		media:   media,
		notif:   notif,
		enq:     enq,
	}
}

func (s *publicationService) Publish(ctx context.Context, recordID int64) error {
	rec, err := s.pr.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("error loading publication record %d: %w", recordID, err)
	}
	if rec == nil {
		slog.Info("publication record does not exist", "record_id", recordID)
		return fmt.Errorf("publication record %d: %w", recordID, ErrNotFound)
	}

	// Durable "was attempting" marker before anything can crash mid-publish.
	if rec.Status != models.PublicationStatusProcessing {
		if err := s.pr.SetProcessing(ctx, rec.ID); err != nil {
			return fmt.Errorf("error marking record processing: %w", err)
		}
	}

	req, failErr := s.buildRequest(ctx, rec)
	if failErr != nil {
		return s.fail(ctx, rec, failErr)
	}

	pub, err := s.factory.For(publisher.Provider(rec.Provider))
	if err != nil {
		return s.fail(ctx, rec, err)
	}

	result, err := pub.Publish(ctx, *req)
	if err != nil {
		return s.fail(ctx, rec, err)
	}

	if err := s.pr.SetPublished(ctx, rec.ID, result.ExternalPostID, result.PublicURL); err != nil {
		return fmt.Errorf("error marking record published: %w", err)
	}

	s.notif.NotifyStatusChanged(ctx, notify.StatusChange{
		RecordID:  rec.ID,
		Status:    models.PublicationStatusPublished,
		PublicURL: result.PublicURL,
	})
	return nil
}

// buildRequest resolves everything the provider call needs. Any failure here
// fails the record before a network attempt is made.
func (s *publicationService) buildRequest(ctx context.Context, rec *models.PublicationRecord) (*publisher.Request, error) {
	post, err := s.mp.GetByID(ctx, rec.MediaPostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("media post %d: %w", rec.MediaPostID, ErrNotFound)
	}

	account, err := s.sa.GetByID(ctx, rec.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("social account %d: %w", rec.AccountID, ErrNotFound)
	}
	if account.TokenExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: token expired at %s", ErrCredential, account.TokenExpiresAt.Format(time.RFC3339))
	}

	creds, err := s.creds.Open(account.Credentials)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredential, err)
	}

	mediaURL, err := s.media.PresignedURL(ctx, post.MediaKey)
	if err != nil {
		return nil, fmt.Errorf("error presigning media url: %w", err)
	}

	var coverURL string
	if post.CoverKey.Valid && post.CoverKey.String != "" {
		coverURL, err = s.media.PresignedURL(ctx, post.CoverKey.String)
		if err != nil {
			return nil, fmt.Errorf("error presigning cover url: %w", err)
		}
	}

	shareToFeed := false
	if post.AutoListID.Valid {
		autoList, err := s.al.GetByID(ctx, post.AutoListID.Int64)
		if err != nil {
			return nil, err
		}
		if autoList != nil {
			shareToFeed = autoList.ShareToFeed
		}
	}

	return &publisher.Request{
		BusinessAccountID: creds.BusinessAccountID,
		AccessToken:       creds.AccessToken,
		MediaURL:          mediaURL,
		CoverURL:          coverURL,
		Description:       post.Description,
		ShareToFeed:       shareToFeed,
	}, nil
}

// fail persists the terminal status before re-raising, so the datastore never
// lies about what was attempted, then re-raises for the job layer's retry.
func (s *publicationService) fail(ctx context.Context, rec *models.PublicationRecord, cause error) error {
	if err := s.pr.SetFailed(ctx, rec.ID, cause.Error()); err != nil {
		slog.Error("failed to persist failure status", "record_id", rec.ID, "error", err.Error())
	}

	s.notif.NotifyStatusChanged(ctx, notify.StatusChange{
		RecordID:     rec.ID,
		Status:       models.PublicationStatusFailed,
		ErrorMessage: cause.Error(),
	})

	slog.Error("publication failed", "record_id", rec.ID, "provider", rec.Provider, "error", cause.Error())
	return cause
}

// CreateDirect creates scheduled records for a manual publish request and
// enqueues them, bypassing the autolist claim. The request returns before any
// provider work happens; outcomes are observed via Record or notifications.
func (s *publicationService) CreateDirect(ctx context.Context, projectID int64, req *transfer.PublishRequest) ([]*transfer.PublicationCreated, error) {
	if len(req.AccountIDs) == 0 {
		return nil, errors.New("no accounts selected for publishing")
	}
	seen := make(map[int64]struct{}, len(req.AccountIDs))
	for _, id := range req.AccountIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate account id %d", id)
		}
		seen[id] = struct{}{}
	}

	ok, err := s.mp.CheckByProjectID(ctx, req.MediaID, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("media post %d: %w", req.MediaID, ErrNotFound)
	}

	valid, err := s.sa.CheckByProjectID(ctx, projectID, req.AccountIDs)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, errors.New("one or more accounts do not belong to the project")
	}

	if req.Description != "" || req.CoverMediaID != 0 {
		var coverKey sql.NullString
		if req.CoverMediaID != 0 {
			cover, err := s.mp.GetByID(ctx, req.CoverMediaID)
			if err != nil {
				return nil, err
			}
			if cover == nil {
				return nil, fmt.Errorf("cover media %d: %w", req.CoverMediaID, ErrNotFound)
			}
			coverKey = sql.NullString{String: cover.MediaKey, Valid: true}
		}
		if err := s.mp.UpdateContent(ctx, req.MediaID, req.Description, coverKey); err != nil {
			return nil, fmt.Errorf("error applying publish overrides: %w", err)
		}
	}

	created := make([]*transfer.PublicationCreated, 0, len(req.AccountIDs))
	for _, accountID := range req.AccountIDs {
		account, err := s.sa.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, fmt.Errorf("social account %d: %w", accountID, ErrNotFound)
		}

		rec := models.PublicationRecord{
			MediaPostID: req.MediaID,
			AccountID:   accountID,
			Provider:    account.Provider,
			Status:      models.PublicationStatusScheduled,
		}
		id, err := s.pr.Create(ctx, nil, &rec)
		if err != nil {
			return nil, fmt.Errorf("error creating publication record: %w", err)
		}

		if err := s.enq.EnqueuePublish(ctx, id); err != nil {
			slog.Error("failed to enqueue publication", "record_id", id, "error", err.Error())
		}

		created = append(created, &transfer.PublicationCreated{
			RecordID:  id,
			AccountID: accountID,
			Status:    models.PublicationStatusScheduled,
		})
	}

	return created, nil
}

func (s *publicationService) Record(ctx context.Context, recordID int64) (*models.PublicationRecord, error) {
	rec, err := s.pr.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("publication record %d: %w", recordID, ErrNotFound)
	}
	return rec, nil
}
