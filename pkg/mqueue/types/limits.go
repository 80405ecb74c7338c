package types

// Hard limits exposed to clients via LimitGet (spec §6).
const (
	// MaxNameLength is the longest byte length a Name may carry.
	MaxNameLength = 256

	// NumPriorities is the number of priority areas every queue has.
	// Priority 0 is highest, NumPriorities-1 is lowest.
	NumPriorities = 4

	// MaxMessageSize is the largest payload a single Message may carry.
	MaxMessageSize = 32

	// MaxPriorityAreaSize is the largest byte capacity of a single
	// priority area within a queue.
	MaxPriorityAreaSize = 128_000

	// MaxQueueSize is the largest combined byte capacity across all
	// priority areas of a single queue.
	MaxQueueSize = 512_000

	// MaxQueues is the global cardinality limit on live queues.
	MaxQueues = 32

	// MaxGroups is the global cardinality limit on live queue groups.
	MaxGroups = 16

	// MaxQueuesPerGroup is the cardinality limit on members of a
	// single group.
	MaxQueuesPerGroup = 16

	// MaxReplySize mirrors MaxMessageSize for MessageReply payloads.
	MaxReplySize = 32
)

// Limits is the value returned by LimitGet.
type Limits struct {
	MaxPriorityAreaSize uint64
	MaxQueueSize        uint64
	MaxQueues           uint32
	MaxGroups           uint32
	MaxQueuesPerGroup   uint32
	MaxMessageSize      uint64
	MaxReplySize        uint64
}

// DefaultLimits returns the compiled-in limit set of spec §6.
func DefaultLimits() Limits {
	return Limits{
		MaxPriorityAreaSize: MaxPriorityAreaSize,
		MaxQueueSize:        MaxQueueSize,
		MaxQueues:           MaxQueues,
		MaxGroups:           MaxGroups,
		MaxQueuesPerGroup:   MaxQueuesPerGroup,
		MaxMessageSize:      MaxMessageSize,
		MaxReplySize:        MaxReplySize,
	}
}
