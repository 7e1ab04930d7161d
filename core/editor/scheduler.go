package editor

import (
	"sync"
	"time"
)

// Scheduler arms a single delayed callback. Re-arming supersedes any pending
// callback; Cancel drops it. It is the only cancellation semantic in the
// engine and exists so the settle-then-snapshot behavior can be driven by a
// manual scheduler in tests instead of real timers.
type Scheduler interface {
	Arm(d time.Duration, fn func())
	Cancel()
}

type timerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc. The armed
// callback runs on its own goroutine.
func NewTimerScheduler() Scheduler {
	return &timerScheduler{}
}

func (s *timerScheduler) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

func (s *timerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
