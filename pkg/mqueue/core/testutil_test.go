package core

import (
	"sync"
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// noopLogger discards everything; used so executive/sync tests don't
// need a real logrus backend wired up.
type noopLogger struct{}

func (noopLogger) Info(...interface{})            {}
func (noopLogger) Infof(string, ...interface{})   {}
func (noopLogger) Warn(...interface{})            {}
func (noopLogger) Warnf(string, ...interface{})   {}
func (noopLogger) Error(...interface{})           {}
func (noopLogger) Errorf(string, ...interface{})  {}
func (noopLogger) Debug(...interface{})           {}
func (noopLogger) Debugf(string, ...interface{})  {}
func (noopLogger) Fatal(...interface{})           {}
func (noopLogger) Fatalf(string, ...interface{})  {}
func (noopLogger) ToggleDebug(v bool) bool        { return v }

// fakeTimers is a deterministic, manually-driven TimerFacility: nothing
// fires until the test calls fire(handle), so timeout/retention paths
// can be exercised without sleeping.
type fakeTimers struct {
	mutex  sync.Mutex
	next   uint64
	timers map[types.TimerHandle]func(types.TimerHandle)
	now    time.Time
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{timers: make(map[types.TimerHandle]func(types.TimerHandle)), now: time.Unix(0, 0)}
}

func (f *fakeTimers) AddDuration(_ time.Duration, cb func(types.TimerHandle)) types.TimerHandle {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.next++
	h := types.TimerHandle(f.next)
	f.timers[h] = cb
	return h
}

func (f *fakeTimers) AddAbsolute(_ time.Time, cb func(types.TimerHandle)) types.TimerHandle {
	return f.AddDuration(0, cb)
}

func (f *fakeTimers) Delete(handle types.TimerHandle) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.timers, handle)
}

func (f *fakeTimers) Now() time.Time { return f.now }

// fire invokes the callback registered for handle, as if it had expired.
// Returns false if the handle is unknown (already cancelled/fired).
func (f *fakeTimers) fire(handle types.TimerHandle) bool {
	f.mutex.Lock()
	cb, ok := f.timers[handle]
	delete(f.timers, handle)
	f.mutex.Unlock()
	if !ok {
		return false
	}
	cb(handle)
	return true
}

func newTestExecutive(local types.NodeID) (*Executive, *fakeTimers, *Ring) {
	ring := &Ring{}
	ring.Update([]types.NodeID{local}, 1)
	timers := newFakeTimers()
	return NewExecutive(local, ring, timers, noopLogger{}), timers, ring
}

func mustRespond(t interface {
	Fatalf(string, ...interface{})
}, conn *Connection) Response {
	select {
	case r := <-conn.Responses():
		return r
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a response")
		return Response{}
	}
}
