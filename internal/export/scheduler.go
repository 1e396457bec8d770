package export

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/records/internal/model"
)

// Lister is the read side a Scheduler needs. store.Store satisfies it.
type Lister interface {
	ListRecords(ctx context.Context) ([]*model.Record, error)
}

// Scheduler takes a snapshot of the full record set at a fixed interval.
type Scheduler struct {
	source   Lister
	writer   *Writer
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that snapshots source through writer
// every interval.
func NewScheduler(source Lister, writer *Writer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:   source,
		writer:   writer,
		interval: interval,
		logger:   logger,
	}
}

// Start begins periodic snapshots. The first one runs after one interval.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current snapshot (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.snapshotOnce(ctx)
		}
	}
}

func (s *Scheduler) snapshotOnce(ctx context.Context) {
	records, err := s.source.ListRecords(ctx)
	if err != nil {
		s.logger.Error("scheduled export: list records failed", "error", err)
		return
	}
	snap := s.writer.Snapshot(ctx, records)
	s.logger.Debug("scheduled export completed", "snapshot", snap.ID, "records", len(records))
}
