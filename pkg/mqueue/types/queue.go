package types

import "time"

// OpenFlags is a bitset of the flags a QueueOpen/QueueOpenAsync call may
// carry (spec §3).
type OpenFlags uint32

const (
	// OpenCreate requests creation if the named queue does not exist.
	OpenCreate OpenFlags = 1 << iota
	// OpenReceiveCallback registers the opener for a message-received
	// callback on every successful MessageSend/MessageSendAsync to the
	// queue while it holds the queue open.
	OpenReceiveCallback
	// OpenEmpty drains any queued messages as part of a successful open.
	OpenEmpty
)

// Has reports whether f is set in the flag bitset.
func (f OpenFlags) Has(flag OpenFlags) bool {
	return f&flag != 0
}

// CreationFlags is a bitset carried inside CreationAttrs.
type CreationFlags uint32

const (
	// CreationPersistent marks a queue that is never subject to the
	// retention timer: it lives until explicit QueueUnlink (spec §4.4).
	CreationPersistent CreationFlags = 1 << iota
)

// Has reports whether flag is set.
func (f CreationFlags) Has(flag CreationFlags) bool {
	return f&flag != 0
}

// CreationAttrs are the attributes supplied on first creation of a queue
// and echoed back on QueueStatusGet (spec §3).
type CreationAttrs struct {
	CreationFlags CreationFlags
	RetentionTime time.Duration
	// Size holds, per priority area, the byte capacity of that area.
	// Size[p] <= MaxPriorityAreaSize and the sum across all four must
	// be <= MaxQueueSize.
	Size [numPriorities]uint64
}

// Persistent reports whether this queue should never have a retention
// timer.
func (a CreationAttrs) Persistent() bool {
	return a.CreationFlags.Has(CreationPersistent)
}

// TotalSize sums the four priority-area capacities.
func (a CreationAttrs) TotalSize() uint64 {
	var total uint64
	for _, s := range a.Size {
		total += s
	}
	return total
}

// Equal reports whether two CreationAttrs values are identical — used to
// validate a CREATE-flagged reopen against the stored attributes (spec
// §4.1, QueueOpen preconditions).
func (a CreationAttrs) Equal(other CreationAttrs) bool {
	if a.CreationFlags != other.CreationFlags || a.RetentionTime != other.RetentionTime {
		return false
	}
	return a.Size == other.Size
}

// CapacityThresholds are the per-priority high/low watermarks set by
// QueueCapacityThresholdsSet and returned by QueueCapacityThresholdsGet.
type CapacityThresholds struct {
	High uint64
	Low  uint64
}

// PriorityArea is one of the four independently-accounted sub-buffers of
// a queue (spec §3, GLOSSARY).
type PriorityArea struct {
	QueueSize  uint64
	QueueUsed  uint64
	NMessages  uint64
	Messages   []*MessageEntry
	Thresholds CapacityThresholds
	// CapacityReachedThreshold/CapacityAvailableThreshold carry the field
	// names of spec §3. No handler sets them, and QueueStatusGet does not
	// report them.
	CapacityReachedThreshold   bool
	CapacityAvailableThreshold bool
}

// Room reports whether size additional bytes fit in this priority area.
func (p *PriorityArea) Room(size uint64) bool {
	return p.QueueSize-p.QueueUsed >= size
}

// RefcountSet maps an originating node-id to the count of live opens
// that node holds on a queue. The queue's total refcount is the sum of
// this map's values (spec §3 invariant 3).
type RefcountSet map[NodeID]uint32

// Total sums the per-node open counts.
func (r RefcountSet) Total() uint32 {
	var total uint32
	for _, c := range r {
		total += c
	}
	return total
}

// Queue is the central replicated entity (spec §3). Every field here is
// mutated only from the executive dispatcher's single-writer path.
type Queue struct {
	ID   QueueID
	Name Name

	CreationAttrs CreationAttrs
	OpenFlags     OpenFlags
	UnlinkFlag    bool
	CloseTime     time.Time

	RefcountSet RefcountSet

	Priority [numPriorities]PriorityArea

	// MessageList is the cross-queue insertion-ordered view; the same
	// *MessageEntry values also live in their owning PriorityArea's
	// Messages slice (spec §3's "cross-linked" list).
	MessageList []*MessageEntry

	PendingList []*PendingReceive

	// Group is the back-reference to the single group this queue may be
	// a member of, by stable id (DESIGN NOTES §9's arena-by-id advice).
	Group GroupID

	// Source is the IPC origin of the current opener, used to route
	// receive-callback notifications (spec §3).
	Source Source

	// RetentionTimer is non-zero only while refcount == 0, the queue is
	// non-persistent, and this node is the ring's lowest-id member
	// (spec §4.4).
	RetentionTimer TimerHandle
	HasRetention   bool

	CapacityThresholds [numPriorities]CapacityThresholds
}

// Refcount sums RefcountSet; spec invariant 3.
func (q *Queue) Refcount() uint32 {
	return q.RefcountSet.Total()
}

// UsedTotal sums used bytes across all priority areas; spec invariant 2.
func (q *Queue) UsedTotal() uint64 {
	var total uint64
	for i := range q.Priority {
		total += q.Priority[i].QueueUsed
	}
	return total
}

// NMessagesTotal sums message counts across all priority areas; spec
// invariant 2.
func (q *Queue) NMessagesTotal() uint64 {
	var total uint64
	for i := range q.Priority {
		total += q.Priority[i].NMessages
	}
	return total
}

// PriorityUsage is one priority area's usage snapshot, as returned by
// QueueStatusGet.
type PriorityUsage struct {
	QueueSize uint64
	QueueUsed uint64
	NMessages uint64
}

// QueueStatus is the value QueueStatusGet returns to the originator
// (spec §4.1).
type QueueStatus struct {
	CreationFlags CreationFlags
	RetentionTime time.Duration
	CloseTime     time.Time
	Usage         [numPriorities]PriorityUsage
}
