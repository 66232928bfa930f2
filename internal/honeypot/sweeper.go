package honeypot

import (
	"log/slog"
	"time"
)

// Sweeper periodically evicts idle honeypot sessions from an Engine so a
// long-running process does not accumulate abandoned conversations
// indefinitely (spec.md §5 "session cleanup").
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper builds a Sweeper. Call Start to begin the background loop.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the eviction loop until Stop is called. Intended to be
// launched in its own goroutine by the caller.
func (s *Sweeper) Start() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := s.engine.EvictIdle(); evicted > 0 {
				slog.Info("honeypot: swept idle sessions", "count", evicted)
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop terminates the eviction loop.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}
