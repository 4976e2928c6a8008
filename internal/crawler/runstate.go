package crawler

import (
	"sync"
	"time"
)

// RunState is the single-flight guard for crawl runs: at most one run may be
// active per process. Acquisition is scoped — callers release via Finish in
// a defer so the flag clears on every exit path.
type RunState struct {
	mu        sync.Mutex
	running   bool
	startedAt time.Time
}

// TryStart attempts to mark a run as active. It returns false, without
// queueing, when a run is already in progress.
func (s *RunState) TryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.startedAt = time.Now()
	return true
}

// Finish clears the active flag.
func (s *RunState) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Running reports whether a run is currently active.
func (s *RunState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// StartedAt returns when the active run began; the zero time when idle.
func (s *RunState) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.startedAt
}
