package service

import (
	"context"
	"time"

	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/repository"
	"github.com/postpilot/autopost/internal/schedule"
)

// TriggerScanner finds autolist entries due at a given instant. Pure query,
// minute granularity: a caller ticking slower than once per minute skips
// slots, and one ticking faster returns the same entries again. Duplicate
// firings are absorbed by the orchestrator's claim, not here. now must
// already be in the schedule's configured zone.
type TriggerScanner interface {
	FindDueEntries(ctx context.Context, now time.Time) ([]*models.AutoListEntry, error)
}

type triggerScanner struct {
	er repository.AutoListEntryRepository
}

func NewTriggerScanner(er repository.AutoListEntryRepository) TriggerScanner {
	return &triggerScanner{er: er}
}

func (s *triggerScanner) FindDueEntries(ctx context.Context, now time.Time) ([]*models.AutoListEntry, error) {
	return s.er.ListDue(ctx, schedule.WeekdayBit(now.Weekday()), schedule.MinuteOfDay(now))
}
