package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/repository"
	"github.com/postpilot/autopost/internal/schedule"
	"github.com/postpilot/autopost/internal/transfer"
)

type AutoListService interface {
	Create(ctx context.Context, projectID int64, ac *transfer.AutoListCreation) (int64, error)
	Update(ctx context.Context, projectID, autoListID int64, ac *transfer.AutoListCreation) error
	Get(ctx context.Context, autoListID int64) (*models.AutoList, error)
	List(ctx context.Context, projectID int64) ([]*models.AutoList, error)
	Remove(ctx context.Context, projectID, autoListID int64) error

	CreateEntry(ctx context.Context, ec *transfer.AutoListEntryCreation) (int64, error)
	UpdateEntry(ctx context.Context, entryID int64, ec *transfer.AutoListEntryCreation) error
	RemoveEntry(ctx context.Context, entryID int64) error
}

type autoListService struct {
	al repository.AutoListRepository
	er repository.AutoListEntryRepository
	sa repository.SocialAccountRepository
}

func NewAutoListService(
	al repository.AutoListRepository,
	er repository.AutoListEntryRepository,
	sa repository.SocialAccountRepository) AutoListService {
	return &autoListService{al: al, er: er, sa: sa}
}

// validateAccounts rejects empty names, duplicate account ids and accounts
// from other projects before anything is persisted.
func (s *autoListService) validateAccounts(ctx context.Context, projectID int64, ac *transfer.AutoListCreation) error {
	if ac.Name == "" {
		return errors.New("name cannot be empty")
	}

	seen := make(map[int64]struct{}, len(ac.AccountIDs))
	for _, id := range ac.AccountIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate account id %d", id)
		}
		seen[id] = struct{}{}
	}

	valid, err := s.sa.CheckByProjectID(ctx, projectID, ac.AccountIDs)
	if err != nil {
		return err
	}
	if !valid {
		return errors.New("one or more accounts do not belong to the project")
	}
	return nil
}

func (s *autoListService) Create(ctx context.Context, projectID int64, ac *transfer.AutoListCreation) (int64, error) {
	if err := s.validateAccounts(ctx, projectID, ac); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	autoList := models.AutoList{
		ProjectID:   projectID,
		Name:        ac.Name,
		ShareToFeed: ac.ShareToFeed,
	}

	id, err := s.al.Create(ctx, nil, &autoList, ac.AccountIDs)
	if err != nil {
		return 0, fmt.Errorf("error creating autolist: %w", err)
	}
	return id, nil
}

func (s *autoListService) Update(ctx context.Context, projectID, autoListID int64, ac *transfer.AutoListCreation) error {
	existing, err := s.al.GetByID(ctx, autoListID)
	if err != nil {
		return err
	}
	if existing == nil || existing.ProjectID != projectID {
		return fmt.Errorf("autolist %d: %w", autoListID, ErrNotFound)
	}

	if err := s.validateAccounts(ctx, projectID, ac); err != nil {
		slog.Info(err.Error())
		return err
	}

	existing.Name = ac.Name
	existing.ShareToFeed = ac.ShareToFeed
	if err := s.al.Update(ctx, nil, existing, ac.AccountIDs); err != nil {
		return fmt.Errorf("error updating autolist: %w", err)
	}
	return nil
}

func (s *autoListService) Get(ctx context.Context, autoListID int64) (*models.AutoList, error) {
	autoList, err := s.al.GetByID(ctx, autoListID)
	if err != nil {
		return nil, err
	}
	if autoList == nil {
		return nil, fmt.Errorf("autolist %d: %w", autoListID, ErrNotFound)
	}
	return autoList, nil
}

func (s *autoListService) List(ctx context.Context, projectID int64) ([]*models.AutoList, error) {
	if projectID == 0 {
		err := errors.New("project id is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	return s.al.ListByProjectID(ctx, projectID)
}

func (s *autoListService) Remove(ctx context.Context, projectID, autoListID int64) error {
	existing, err := s.al.GetByID(ctx, autoListID)
	if err != nil {
		return err
	}
	if existing == nil || existing.ProjectID != projectID {
		return fmt.Errorf("autolist %d: %w", autoListID, ErrNotFound)
	}
	return s.al.Remove(ctx, autoListID)
}

func (s *autoListService) validateEntry(ec *transfer.AutoListEntryCreation) (string, error) {
	if !schedule.ValidMask(ec.DayOfWeeks) {
		return "", fmt.Errorf("day_of_weeks must be between %d and %d", schedule.MaskMin, schedule.MaskMax)
	}
	normalized, err := schedule.NormalizeTime(ec.PublicationTime)
	if err != nil {
		return "", err
	}
	return normalized, nil
}

func (s *autoListService) CreateEntry(ctx context.Context, ec *transfer.AutoListEntryCreation) (int64, error) {
	normalized, err := s.validateEntry(ec)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	autoList, err := s.al.GetByID(ctx, ec.AutoListID)
	if err != nil {
		return 0, err
	}
	if autoList == nil {
		return 0, fmt.Errorf("autolist %d: %w", ec.AutoListID, ErrNotFound)
	}

	entry := models.AutoListEntry{
		AutoListID:      ec.AutoListID,
		DayOfWeeks:      ec.DayOfWeeks,
		PublicationTime: normalized,
	}

	id, err := s.er.Create(ctx, &entry)
	if err != nil {
		return 0, fmt.Errorf("error creating entry: %w", err)
	}
	return id, nil
}

func (s *autoListService) UpdateEntry(ctx context.Context, entryID int64, ec *transfer.AutoListEntryCreation) error {
	normalized, err := s.validateEntry(ec)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	entry, err := s.er.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("autolist entry %d: %w", entryID, ErrNotFound)
	}

	entry.DayOfWeeks = ec.DayOfWeeks
	entry.PublicationTime = normalized
	return s.er.Update(ctx, entry)
}

func (s *autoListService) RemoveEntry(ctx context.Context, entryID int64) error {
	entry, err := s.er.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("autolist entry %d: %w", entryID, ErrNotFound)
	}
	return s.er.Remove(ctx, entryID)
}
