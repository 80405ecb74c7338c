package types

// QueueID is a process-global monotonic counter assigned on a queue's
// first creation; it survives across later opens/closes of the same
// name (spec §3).
type QueueID uint64

// GroupID is a process-global monotonic counter assigned to a queue
// group on QueueGroupCreate.
type GroupID uint64

// NoGroup is the zero value meaning "this queue is not a member of any
// group".
const NoGroup GroupID = 0
