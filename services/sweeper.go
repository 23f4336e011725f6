package services

import (
	"context"
	"log/slog"
	"time"

	"anonchat/repository"
)

// Sweeper periodically evicts expired rooms and their messages. A failed
// iteration is logged and the loop keeps running; iterations never
// overlap.
type Sweeper struct {
	store    repository.Store
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(store repository.Store, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, logger: logger, interval: interval, now: time.Now}
}

// Run blocks, sweeping once per interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("cleanup sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce deletes every room already expired when the sweep starts,
// cascading to its messages. A room that fails to delete is retried on
// the next cycle.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	names, err := s.store.ListExpiredRooms(ctx, s.now())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	swept := make([]string, 0, len(names))
	for _, name := range names {
		if err := s.store.DeleteRoom(ctx, name); err != nil {
			s.logger.Error("failed to delete expired room", "room", name, "error", err)
			continue
		}
		swept = append(swept, name)
	}
	s.logger.Info("cleaned up expired rooms", "count", len(swept), "rooms", swept)
	return nil
}
