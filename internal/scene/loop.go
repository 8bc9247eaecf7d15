package scene

import (
	"context"
	"sort"
	"sync"
	"time"
)

// LoopScheduler is a wall-clock TickScheduler for headless operation: it
// drives registered callbacks from its own ticker goroutine. In the full
// application the render loop implements TickScheduler instead.
type LoopScheduler struct {
	mu      sync.Mutex
	entries []loopEntry
	nextID  int
	start   time.Time
}

type loopEntry struct {
	id       int
	priority int
	fn       func(now float64)
}

// NewLoopScheduler returns an idle scheduler; call Run to start ticking.
func NewLoopScheduler() *LoopScheduler {
	return &LoopScheduler{start: time.Now()}
}

// RegisterTick adds a callback at the given priority (higher runs first).
func (s *LoopScheduler) RegisterTick(priority int, fn func(now float64)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, loopEntry{id: id, priority: priority, fn: fn})
	sort.SliceStable(s.entries, func(i, k int) bool {
		return s.entries[i].priority > s.entries[k].priority
	})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

// Run ticks at the given rate until the context is cancelled. Callbacks run
// on the loop goroutine; this is the single logical tick thread.
func (s *LoopScheduler) Run(ctx context.Context, fps float64) {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			now := t.Sub(s.start).Seconds()
			s.mu.Lock()
			entries := append([]loopEntry(nil), s.entries...)
			s.mu.Unlock()
			for _, e := range entries {
				e.fn(now)
			}
		}
	}
}
