/*
sweeper.go - Background SLA sweep

PURPOSE:
  Runs the SLA sweep on a periodic timer so schedules stuck in review
  auto-advance once their deadline passes. The sweep itself lives in the
  scheduling package; this is just the ticker around it.

DESIGN:
  - Background goroutine with a configurable interval (default 1 hour)
  - Runs once immediately on start
  - Safe alongside human decisions: each transition is a store-level
    compare-and-swap, so a lost race is skipped, not an error

USAGE:
  sweeper := NewSlaSweeper(service, notifier)
  sweeper.Start()
  // ... later
  sweeper.Stop()
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/scheduling"
)

// SlaSweeper periodically auto-advances schedules past their review deadline.
type SlaSweeper struct {
	Service       *scheduling.Service
	Notifier      notify.Notifier
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewSlaSweeper(service *scheduling.Service, notifier notify.Notifier) *SlaSweeper {
	if notifier == nil {
		notifier = notify.NewLogNotifier()
	}
	return &SlaSweeper{
		Service:       service,
		Notifier:      notifier,
		CheckInterval: 1 * time.Hour,
		stop:          make(chan struct{}),
	}
}

// Start begins the sweeper.
func (s *SlaSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	log.Printf("[Sweeper] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the sweeper and waits for an in-flight sweep to finish.
func (s *SlaSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (s *SlaSweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *SlaSweeper) sweep() {
	ctx := context.Background()
	now := time.Now()

	advanced, err := s.Service.RunSlaSweep(ctx, now)
	if err != nil {
		log.Printf("[Sweeper] Sweep error: %v", err)
		return
	}
	if len(advanced) == 0 {
		return
	}

	log.Printf("[Sweeper] Auto-advanced %d schedule(s)", len(advanced))
	for _, id := range advanced {
		schedule, err := s.Service.Schedules.GetSchedule(ctx, id)
		if err != nil {
			log.Printf("[Sweeper] Reloading %s: %v", id, err)
			continue
		}
		s.Notifier.Send(ctx, notify.SLAExpired(id, schedule.Status))
		if schedule.Status == scheduling.StatusPublished {
			s.Notifier.Send(ctx, notify.Published(id))
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *SlaSweeper) RunNow() {
	s.sweep()
}
