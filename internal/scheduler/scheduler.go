// Package scheduler drives the time-based half of the reservation
// lifecycle.  It owns one ticker goroutine per sweep and nothing else:
// all decisions live in the booking service, so a sweep here is just
// "call the service, log what happened, never die".
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
)

// Scheduler runs the periodic sweeps against a shared booking service.
// Construct with New, then Start once; Stop (or cancelling the context
// passed to Start) shuts every loop down and waits for them to drain.
type Scheduler struct {
	svc *booking.Service

	SweepInterval  time.Duration // no-show, reminder and billing cadence
	ReportInterval time.Duration // monthly-report cadence

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Scheduler with the default cadences: operational sweeps
// every minute, the report check every hour.
func New(svc *booking.Service) *Scheduler {
	return &Scheduler{
		svc:            svc,
		SweepInterval:  time.Minute,
		ReportInterval: time.Hour,
	}
}

// Start launches the sweep loops.  Each loop fires immediately once and
// then on its ticker; a failing sweep is logged and retried on the next
// tick — no sweep failure ever halts the others.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.loop(ctx, "no-show", s.SweepInterval, func(ctx context.Context) error {
		n, err := s.svc.SweepNoShows(ctx)
		if n > 0 {
			log.Printf("scheduler: no-show sweep canceled %d reservation(s)", n)
		}
		return err
	})
	s.loop(ctx, "reminder", s.SweepInterval, func(ctx context.Context) error {
		n, err := s.svc.SweepReminders(ctx)
		if n > 0 {
			log.Printf("scheduler: reminder sweep notified %d reservation(s)", n)
		}
		return err
	})
	s.loop(ctx, "billing", s.SweepInterval, func(ctx context.Context) error {
		n, err := s.svc.SweepBilling(ctx)
		if n > 0 {
			log.Printf("scheduler: billing sweep issued %d bill(s)", n)
		}
		return err
	})
	s.loop(ctx, "monthly-report", s.ReportInterval, func(ctx context.Context) error {
		done, err := s.svc.SweepMonthlyReport(ctx)
		if done {
			log.Printf("scheduler: monthly report generated")
		}
		return err
	})
}

// Stop cancels every loop and blocks until they have all returned.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, sweep func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()

		// kick immediately
		if err := sweep(ctx); err != nil {
			log.Printf("scheduler: %s sweep failed: %v", name, err)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := sweep(ctx); err != nil {
					log.Printf("scheduler: %s sweep failed: %v", name, err)
				}
			}
		}
	}()
}
