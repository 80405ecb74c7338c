package core

import (
	"context"

	"github.com/jabolina/go-mqueue/pkg/mqueue/definition"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// Node owns every replicated and local structure for one cluster member
// and runs the single goroutine that is the sole writer to all of it
// (spec §5). It mirrors the teacher's Peer.poll: one select loop reading
// off the transport, membership events, and local requests, dispatching
// each into the Executive/SyncEngine before looping again.
type Node struct {
	local      types.NodeID
	ring       *Ring
	transport  Transport
	state      *State
	executive  *Executive
	sync       *SyncEngine
	translator *Translator
	log        definition.Logger

	connect    chan *Connection
	disconnect chan types.Source
	localOps   chan func(*State)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewNode wires an Executive, SyncEngine, and Translator around
// transport and starts the event loop, enforcing the compiled-in
// default limits (spec §6). Use NewNodeWithLimits to override them.
func NewNode(transport Transport, timers TimerFacility, log definition.Logger) *Node {
	return NewNodeWithLimits(transport, timers, log, types.DefaultLimits())
}

// NewNodeWithLimits is NewNode with a deployment-tunable limits.Limits
// (config.LimitsConfig.Resolve) enforced in place of the compiled-in
// defaults.
func NewNodeWithLimits(transport Transport, timers TimerFacility, log definition.Logger, limits types.Limits) *Node {
	local := transport.LocalID()
	ring := &Ring{}
	ring.Update([]types.NodeID{local}, 1)

	executive := NewExecutive(local, ring, timers, log)
	executive.SetLimits(limits)
	n := &Node{
		local:      local,
		ring:       ring,
		transport:  transport,
		state:      executive.State(),
		executive:  executive,
		translator: NewTranslator(transport, executive.State()),
		log:        log,
		connect:    make(chan *Connection, 8),
		disconnect: make(chan types.Source, 8),
		localOps:   make(chan func(*State), 32),
	}
	n.sync = NewSyncEngine(local, ring, executive.State(), executive, transport, log)
	executive.SetTimeoutBroadcaster(func(r *types.TimeoutRecord) {
		if err := transport.Broadcast(r); err != nil {
			log.Errorf("failed broadcasting timeout record: %v", err)
		}
	})

	n.ctx, n.cancel = context.WithCancel(context.Background())
	go n.poll()
	return n
}

// Translator exposes the client-request surface for the public API
// package to build on.
func (n *Node) Translator() *Translator { return n.translator }

// SubmitLocal runs fn against the replicated state from inside the
// node's single event-loop goroutine, the same serialization guarantee
// every broadcast-delivered operation gets (spec §5). Used by the
// process-local supplemented features (QueueGroupTrack/TrackStop) that
// mutate State.Tracks without going through a broadcast round-trip.
func (n *Node) SubmitLocal(fn func(*State)) {
	select {
	case n.localOps <- fn:
	case <-n.ctx.Done():
	}
}

// LocalID is this node's id.
func (n *Node) LocalID() types.NodeID { return n.local }

// Connect registers a new local connection so its responses and
// callbacks can be routed once its requests are delivered back.
func (n *Node) Connect(conn *Connection) {
	select {
	case n.connect <- conn:
	case <-n.ctx.Done():
	}
}

// Disconnect tears down a connection's routing and implicitly closes
// every queue it still holds open (spec §3's cleanup-on-disconnect).
func (n *Node) Disconnect(source types.Source) {
	select {
	case n.disconnect <- source:
	case <-n.ctx.Done():
	}
}

// Close stops the event loop and the underlying transport.
func (n *Node) Close() {
	n.cancel()
	n.transport.Close()
}

func (n *Node) poll() {
	defer n.log.Debugf("node %d event loop stopped", n.local)
	for {
		select {
		case <-n.ctx.Done():
			return

		case conn, ok := <-n.connect:
			if !ok {
				return
			}
			n.executive.Register(conn)

		case source, ok := <-n.disconnect:
			if !ok {
				return
			}
			n.closeConnection(source)

		case fn, ok := <-n.localOps:
			if !ok {
				return
			}
			fn(n.state)

		case delivery, ok := <-n.transport.Listen():
			if !ok {
				return
			}
			n.apply(delivery.Record)

		case ev, ok := <-n.transport.Membership():
			if !ok {
				return
			}
			n.sync.OnMembershipChange(ev)
		}
	}
}

// apply routes a delivered record to either the synchronization engine
// (while a round is in progress) or straight to the executive
// dispatcher — the two never run concurrently, since both are only ever
// touched from this one goroutine.
func (n *Node) apply(record types.Record) {
	switch record.(type) {
	case *types.SyncQueueRecord, *types.SyncQueueRefcountRecord, *types.SyncQueueMessageRecord,
		*types.SyncQueuePendingRecord, *types.SyncGroupRecord, *types.SyncGroupMemberRecord,
		*types.SyncReplyRecord, *types.SyncCompleteRecord:
		n.sync.Apply(record)
	default:
		if n.sync.Phase() != SyncNotStarted {
			// A sync round for a newer ring is in progress; ordinary
			// operations keep applying against live state regardless,
			// since the shadow only replaces it on activation.
		}
		n.executive.Apply(record)
	}
}

func (n *Node) closeConnection(source types.Source) {
	cleanup, ok := n.state.Cleanup[source]
	if ok {
		for _, qid := range append([]types.QueueID(nil), cleanup.Queues...) {
			if q, ok := n.state.Queues[qid]; ok {
				_ = n.translator.QueueClose(source.ConnHandle, q.Name, q.ID)
			}
		}
	}
	n.executive.Unregister(source)
}
