package mqueue

import "github.com/jabolina/go-mqueue/pkg/mqueue/types"

// Error taxonomy for the message-queue core (spec §7). Defined once in
// package types (so the core packages can use them without importing
// this public-facing package and creating a cycle) and re-exported here
// as the values client code actually imports.
var (
	ErrNotExist     = types.ErrNotExist
	ErrExist        = types.ErrExist
	ErrBusy         = types.ErrBusy
	ErrQueueFull    = types.ErrQueueFull
	ErrTooBig       = types.ErrTooBig
	ErrNoResources  = types.ErrNoResources
	ErrBadOperation = types.ErrBadOperation
	ErrBadFlags     = types.ErrBadFlags
	ErrNoMemory     = types.ErrNoMemory
	ErrInterrupt    = types.ErrInterrupt
	ErrTimeout      = types.ErrTimeout
	ErrTryAgain     = types.ErrTryAgain
	ErrNoSpace      = types.ErrNoSpace
	ErrInit         = types.ErrInit
)
