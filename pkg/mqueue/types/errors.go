package types

import "errors"

// Error taxonomy for the message-queue core. Every executive handler
// computes exactly one of these and carries it back in the response
// header on the originating node; every other replica applies the
// same (non-)mutation silently. See spec §7.
var (
	// ErrNotExist is returned when the referenced queue, group, reply
	// or pending receive no longer exists at delivery time.
	ErrNotExist = errors.New("mqueue: does not exist")

	// ErrExist is returned on duplicate creation, or a reopen whose
	// creation attributes do not match the stored ones.
	ErrExist = errors.New("mqueue: already exists")

	// ErrBusy is returned against a queue currently open elsewhere.
	ErrBusy = errors.New("mqueue: resource busy")

	// ErrQueueFull is returned when the targeted priority area lacks
	// capacity for the message being sent.
	ErrQueueFull = errors.New("mqueue: queue full")

	// ErrTooBig is returned when an attribute or message exceeds a
	// hard limit.
	ErrTooBig = errors.New("mqueue: too big")

	// ErrNoResources is returned when an operation would exceed a
	// global cardinality limit (max queues, max groups, ...).
	ErrNoResources = errors.New("mqueue: no resources")

	// ErrBadOperation is returned for semantically disallowed calls,
	// e.g. retention-time-set on a persistent queue.
	ErrBadOperation = errors.New("mqueue: bad operation")

	// ErrBadFlags is returned for an invalid flag combination. Checked
	// client-side, before broadcast.
	ErrBadFlags = errors.New("mqueue: bad flags")

	// ErrNoMemory signals an allocation failure inside a handler; the
	// handler must have freed any partially constructed state already.
	ErrNoMemory = errors.New("mqueue: no memory")

	// ErrInterrupt is returned to a pending receiver cancelled by
	// MessageCancel or by its connection leaving.
	ErrInterrupt = errors.New("mqueue: interrupted")

	// ErrTimeout is returned when a timer fired before completion.
	ErrTimeout = errors.New("mqueue: timeout")

	// ErrTryAgain is the back-pressure signal: the transport's send-ok
	// predicate was false, or the translator's circuit breaker is open.
	// A synchronization round in progress does not produce it. MessageGet
	// with no timeout on an empty queue also returns it.
	ErrTryAgain = errors.New("mqueue: try again")

	// ErrNoSpace is returned when a reply is larger than the
	// send-receive caller's declared buffer.
	ErrNoSpace = errors.New("mqueue: no space")

	// ErrInit is returned when a required callback was not registered
	// before issuing an operation that needs it.
	ErrInit = errors.New("mqueue: not initialized")
)
