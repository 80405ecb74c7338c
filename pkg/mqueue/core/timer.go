package core

import (
	"sync"
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// TimerFacility is the single-shot timer contract of spec §6: absolute
// and duration timers, with cancellation. It is consumed, never
// implemented, by every component above it; handlers never block on it.
type TimerFacility interface {
	// AddDuration arms a timer that fires cb(handle) after d elapses.
	AddDuration(d time.Duration, cb func(types.TimerHandle)) types.TimerHandle
	// AddAbsolute arms a timer that fires cb(handle) at t.
	AddAbsolute(t time.Time, cb func(types.TimerHandle)) types.TimerHandle
	// Delete cancels a previously armed timer. Deleting an already-fired
	// or unknown handle is a no-op.
	Delete(handle types.TimerHandle)
	// Now returns the facility's notion of current time.
	Now() time.Time
}

// StdTimers backs TimerFacility with time.AfterFunc. No package in the
// reference corpus offers a single-shot absolute/duration timer
// abstraction narrower than the standard library's time package — this
// is the one ambient concern where stdlib is the idiomatic choice
// (DESIGN.md).
type StdTimers struct {
	mutex   sync.Mutex
	next    uint64
	timers  map[types.TimerHandle]*time.Timer
}

// NewStdTimers constructs an empty StdTimers facility.
func NewStdTimers() *StdTimers {
	return &StdTimers{timers: make(map[types.TimerHandle]*time.Timer)}
}

func (s *StdTimers) allocate() types.TimerHandle {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.next++
	return types.TimerHandle(s.next)
}

// AddDuration implements TimerFacility.
func (s *StdTimers) AddDuration(d time.Duration, cb func(types.TimerHandle)) types.TimerHandle {
	handle := s.allocate()
	t := time.AfterFunc(d, func() { cb(handle) })
	s.mutex.Lock()
	s.timers[handle] = t
	s.mutex.Unlock()
	return handle
}

// AddAbsolute implements TimerFacility.
func (s *StdTimers) AddAbsolute(at time.Time, cb func(types.TimerHandle)) types.TimerHandle {
	return s.AddDuration(time.Until(at), cb)
}

// Delete implements TimerFacility.
func (s *StdTimers) Delete(handle types.TimerHandle) {
	s.mutex.Lock()
	t, ok := s.timers[handle]
	delete(s.timers, handle)
	s.mutex.Unlock()
	if ok {
		t.Stop()
	}
}

// Now implements TimerFacility.
func (s *StdTimers) Now() time.Time {
	return time.Now()
}
