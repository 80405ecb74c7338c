package core

import (
	"sync"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// LocalHub is an in-process, totally-ordered broadcast fabric used by
// tests and by single-host deployments that do not need a real network
// transport. It gives every attached LocalTransport the same delivery
// order, which is all the Transport contract (spec §6) requires — the
// same guarantee a real closed-process-group transport would have to
// provide. Modeled after the teacher's own test harness
// (test/testing.go's UnityCluster), generalized into a reusable fabric
// instead of a test-only helper.
type LocalHub struct {
	mutex    sync.Mutex
	members  map[types.NodeID]*LocalTransport
	ringID   uint64
	sendOK   bool
}

// NewLocalHub creates an empty fabric.
func NewLocalHub() *LocalHub {
	return &LocalHub{members: make(map[types.NodeID]*LocalTransport), ringID: 1, sendOK: true}
}

// Join attaches a new node to the fabric and returns its Transport. The
// join itself triggers a regular membership event on every existing (and
// the new) member.
func (h *LocalHub) Join(id types.NodeID) *LocalTransport {
	h.mutex.Lock()
	t := &LocalTransport{
		hub:      h,
		localID:  id,
		producer: make(chan Delivery, 256),
		members:  make(chan MembershipEvent, 8),
		ring:     &Ring{},
	}
	h.members[id] = t
	h.ringID++
	ring := h.ringID
	snapshot := h.memberIDsLocked()
	h.mutex.Unlock()

	t.ring.Update(snapshot, ring)
	h.broadcastMembership(MembershipEvent{Type: MembershipRegular, Members: snapshot, Joined: []types.NodeID{id}, RingID: ring})
	return t
}

// Leave detaches a node, notifying survivors of the new membership.
func (h *LocalHub) Leave(id types.NodeID) {
	h.mutex.Lock()
	delete(h.members, id)
	h.ringID++
	ring := h.ringID
	snapshot := h.memberIDsLocked()
	h.mutex.Unlock()

	h.broadcastMembership(MembershipEvent{Type: MembershipRegular, Members: snapshot, Left: []types.NodeID{id}, RingID: ring})
}

// SetSendOK toggles the fabric-wide back-pressure predicate, used to
// exercise the TryAgain path (spec §5) deterministically in tests.
func (h *LocalHub) SetSendOK(ok bool) {
	h.mutex.Lock()
	h.sendOK = ok
	h.mutex.Unlock()
}

func (h *LocalHub) memberIDsLocked() []types.NodeID {
	ids := make([]types.NodeID, 0, len(h.members))
	for id := range h.members {
		ids = append(ids, id)
	}
	return ids
}

func (h *LocalHub) broadcastMembership(ev MembershipEvent) {
	h.mutex.Lock()
	targets := make([]*LocalTransport, 0, len(h.members))
	for _, m := range h.members {
		targets = append(targets, m)
		m.ring.Update(ev.Members, ev.RingID)
	}
	h.mutex.Unlock()
	for _, m := range targets {
		m.members <- ev
	}
}

// broadcast delivers record, in submission order, to every attached
// member including the sender — the defining property of the transport
// contract (spec §6).
func (h *LocalHub) broadcast(record types.Record, origin types.NodeID) {
	h.mutex.Lock()
	targets := make([]*LocalTransport, 0, len(h.members))
	for _, m := range h.members {
		targets = append(targets, m)
	}
	h.mutex.Unlock()
	for _, m := range targets {
		m.producer <- Delivery{Record: record, Origin: origin}
	}
}

func (h *LocalHub) sendOKSnapshot() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.sendOK
}

// LocalTransport is one node's handle on a LocalHub.
type LocalTransport struct {
	hub      *LocalHub
	localID  types.NodeID
	producer chan Delivery
	members  chan MembershipEvent
	ring     *Ring
	closed   bool
}

// Broadcast implements Transport.
func (t *LocalTransport) Broadcast(record types.Record) error {
	t.hub.broadcast(record, t.localID)
	return nil
}

// Listen implements Transport.
func (t *LocalTransport) Listen() <-chan Delivery {
	return t.producer
}

// Membership implements Transport.
func (t *LocalTransport) Membership() <-chan MembershipEvent {
	return t.members
}

// LocalID implements Transport.
func (t *LocalTransport) LocalID() types.NodeID {
	return t.localID
}

// SendOK implements Transport.
func (t *LocalTransport) SendOK() bool {
	return t.hub.sendOKSnapshot()
}

// Close implements Transport.
func (t *LocalTransport) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.hub.Leave(t.localID)
}

var _ Transport = (*LocalTransport)(nil)
var _ Transport = (*ReltTransport)(nil)
