package mqueue

import "github.com/jabolina/go-mqueue/pkg/mqueue/types"

// Hard limits exposed to clients via LimitGet (spec §6). Canonical
// values live in package types; re-exported here for the public API.
const (
	MaxNameLength       = types.MaxNameLength
	NumPriorities       = types.NumPriorities
	MaxMessageSize      = types.MaxMessageSize
	MaxPriorityAreaSize = types.MaxPriorityAreaSize
	MaxQueueSize        = types.MaxQueueSize
	MaxQueues           = types.MaxQueues
	MaxGroups           = types.MaxGroups
	MaxQueuesPerGroup   = types.MaxQueuesPerGroup
	MaxReplySize        = types.MaxReplySize
)

// Limits is the value returned by LimitGet.
type Limits = types.Limits

// DefaultLimits returns the compiled-in limit set of spec §6.
func DefaultLimits() Limits {
	return types.DefaultLimits()
}
