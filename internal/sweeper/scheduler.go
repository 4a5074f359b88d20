package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Reconciler is run after each sweep; the link journal retry hangs off it.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// Scheduler runs the sweep on a fixed cadence in its own goroutine. Requests
// are never blocked by it: fire, run to completion, log the outcome.
type Scheduler struct {
	Sweeper    *Sweeper
	Reconciler Reconciler
	Interval   time.Duration

	stop chan struct{}
	done chan struct{}
}

// Start launches the recurring sweep. Call Stop to shut it down.
func (s *Scheduler) Start() {
	if s.Interval <= 0 {
		s.Interval = 24 * time.Hour
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				return
			}
		}
	}()
	log.Info().Dur("interval", s.Interval).Msg("Archival scheduler started")
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	log.Info().Msg("Archival scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if _, err := s.Sweeper.Run(ctx, s.Sweeper.now()); err != nil {
		log.Error().Err(err).Msg("Scheduled sweep failed")
	}
	if s.Reconciler != nil {
		if retried, err := s.Reconciler.Reconcile(ctx); err != nil {
			log.Error().Err(err).Msg("Link reconcile failed")
		} else if retried > 0 {
			log.Info().Int("retried", retried).Msg("Link reconcile retried incomplete links")
		}
	}
}
