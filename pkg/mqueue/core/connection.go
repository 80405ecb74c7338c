package core

import (
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// Response is the single synchronous reply delivered to the connection
// that originated a request (spec §6's response_send).
type Response struct {
	Err        error
	QueueID    types.QueueID
	Status     types.QueueStatus
	Message    types.Message
	Data       []byte
	SenderID   types.SenderID
	GroupID    types.GroupID
	Thresholds [types.NumPriorities]types.CapacityThresholds
}

// CallbackKind names which of the four asynchronous dispatch messages
// (spec §6) a Callback carries.
type CallbackKind uint8

const (
	CallbackQueueOpen CallbackKind = iota
	CallbackGroupTrack
	CallbackMessageDelivered
	CallbackMessageReceived
)

// Callback is one asynchronous dispatch_send message (spec §6).
type Callback struct {
	Kind       CallbackKind
	QueueID    types.QueueID
	GroupID    types.GroupID
	ChangeFlag types.ChangeFlag
	Message    types.Message
	Invocation uint64
}

// Connection is the IPC contract of spec §6: a (NodeID, ConnHandle)
// source plus the two channels a host process drains — response_send's
// single reply, and dispatch_send's stream of asynchronous callbacks.
// It mirrors the teacher's own per-request observer/channel shape
// (pkg/mcast/core/peer.go's observer + Command), generalized to also
// carry unsolicited callback traffic.
type Connection struct {
	Source      types.Source
	response    chan Response
	dispatch    chan Callback
	openCallback bool
}

// NewConnection allocates a Connection for source. openCallback records
// whether this connection registered an open-callback handler, required
// before QueueOpenAsync can be issued on it (spec §4.1, ErrInit).
func NewConnection(source types.Source, openCallback bool) *Connection {
	return &Connection{
		Source:       source,
		response:     make(chan Response, 1),
		dispatch:     make(chan Callback, 32),
		openCallback: openCallback,
	}
}

// Respond implements spec §6's response_send: exactly one reply per
// synchronous call.
func (c *Connection) Respond(r Response) {
	select {
	case c.response <- r:
	default:
	}
}

// Responses is the channel a caller blocks on for its one reply.
func (c *Connection) Responses() <-chan Response {
	return c.response
}

// Dispatch implements spec §6's dispatch_send: an asynchronous callback
// queued for later delivery.
func (c *Connection) Dispatch(cb Callback) {
	select {
	case c.dispatch <- cb:
	default:
	}
}

// Dispatches is the channel asynchronous callbacks arrive on.
func (c *Connection) Dispatches() <-chan Callback {
	return c.dispatch
}

// HasOpenCallback reports whether this connection registered an
// open-callback handler (spec §4.1, QueueOpenAsync precondition).
func (c *Connection) HasOpenCallback() bool {
	return c.openCallback
}
