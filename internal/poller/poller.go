// Package poller re-runs view refreshes on a fixed interval. Failures are
// logged and counted, never surfaced.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"clinicdesk/internal/metrics"
)

// DefaultInterval is the refresh period of the list views.
const DefaultInterval = 30 * time.Second

// Task is one refresh run on every tick.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Poller runs its tasks in order on each tick.
type Poller struct {
	tasks  []Task
	logger zerolog.Logger

	mu       sync.Mutex
	interval time.Duration
	running  bool
	stopCh   chan struct{}
	resetCh  chan time.Duration
}

// New creates a poller running tasks every interval (DefaultInterval when not positive).
func New(interval time.Duration, logger zerolog.Logger, tasks ...Task) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		tasks:    tasks,
		logger:   logger.With().Str("component", "poller").Logger(),
		interval: interval,
		stopCh:   make(chan struct{}),
		resetCh:  make(chan time.Duration, 1),
	}
}

// Interval returns the current period.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the period. A running loop picks it up at once.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if d == p.interval {
		return
	}
	p.interval = d

	// latest value wins; senders hold mu, so the slot is free after the drain
	select {
	case <-p.resetCh:
	default:
	}
	p.resetCh <- d
}

// Start runs the loop until ctx is done or Stop is called. It blocks.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	interval := p.interval
	// a change made while stopped is already in interval
	select {
	case <-p.resetCh:
	default:
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.running && p.stopCh == stopCh {
			p.running = false
		}
		p.mu.Unlock()
	}()

	p.logger.Info().Dur("interval", interval).Int("tasks", len(p.tasks)).Msg("poller started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poller stopped by context")
			return
		case <-stopCh:
			p.logger.Info().Msg("poller stopped")
			return
		case d := <-p.resetCh:
			ticker.Reset(d)
			p.logger.Info().Dur("interval", d).Msg("poll interval changed")
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// Stop ends a running loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.running = false
		close(p.stopCh)
	}
}

// RunOnce runs every task once and returns how many failed.
func (p *Poller) RunOnce(ctx context.Context) int {
	failed := 0
	for _, t := range p.tasks {
		if ctx.Err() != nil {
			return failed
		}
		start := time.Now()
		if err := t.Run(ctx); err != nil {
			failed++
			metrics.IncPollFailure(t.Name)
			p.logger.Warn().Err(err).Str("task", t.Name).Msg("background refresh failed")
			continue
		}
		p.logger.Debug().Str("task", t.Name).Dur("duration", time.Since(start)).Msg("refreshed")
	}
	return failed
}
