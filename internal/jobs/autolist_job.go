package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postpilot/autopost/internal/service"
)

// AutoListJob is the every-minute tick: scan for due entries and fire each
// one. Firings are independent; one entry's failure never blocks another.
type AutoListJob struct {
	scanner      service.TriggerScanner
	orchestrator service.PublicationOrchestrator
}

func NewAutoListJob(scanner service.TriggerScanner, orchestrator service.PublicationOrchestrator) *AutoListJob {
	return &AutoListJob{scanner: scanner, orchestrator: orchestrator}
}

func (j *AutoListJob) Tick() {
	ctx := context.Background()

	entries, err := j.scanner.FindDueEntries(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if len(entries) == 0 {
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, entry := range entries {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(entryID int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.orchestrator.FireEntry(ctx, entryID); err != nil {
				slog.Error("entry firing failed", "entry_id", entryID, "error", err.Error())
			}
		}(entry.ID)
	}

	wg.Wait()
}
