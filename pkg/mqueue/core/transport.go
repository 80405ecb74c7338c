package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue/definition"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
	"github.com/jabolina/relt/pkg/relt"
	prolog "github.com/prometheus/common/log"
	version "github.com/hashicorp/go-version"
)

// minSupportedProtocolVersion is the oldest wire protocol this build
// can speak; it replaces the teacher's raw integer comparison in
// protocol.go/checkRPCHeader with a proper semver constraint so a
// version bump only requires widening this string.
const minSupportedProtocolVersion = ">= 1.0.0"

// CheckProtocolVersion parses raw as a semantic version and checks it
// against minSupportedProtocolVersion, the compatibility gate every
// node passes through before it is allowed to dial into a group.
func CheckProtocolVersion(raw string) (*version.Version, error) {
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parse protocol version %q: %w", raw, err)
	}
	constraint, err := version.NewConstraint(minSupportedProtocolVersion)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(v) {
		return nil, fmt.Errorf("protocol version %s does not satisfy %s", v, minSupportedProtocolVersion)
	}
	return v, nil
}

// MembershipType distinguishes a regular view change (the new
// membership is agreed and stable) from a transitional one (spec §6).
type MembershipType uint8

const (
	MembershipRegular MembershipType = iota
	MembershipTransitional
)

// MembershipEvent is delivered whenever the process-group transport's
// view of the cluster changes (spec §6's membership callback).
type MembershipEvent struct {
	Type    MembershipType
	Members []types.NodeID
	Left    []types.NodeID
	Joined  []types.NodeID
	RingID  uint64
}

// Delivery pairs a decoded record with the node that broadcast it.
type Delivery struct {
	Record types.Record
	Origin types.NodeID
}

// Transport is the totally-ordered group-communication contract of spec
// §6: mcast delivers (payload, origin) to every member in the same
// order; membership changes carry a ring id.
type Transport interface {
	// Broadcast reliably delivers record to every current member,
	// including the local node, in an order agreed cluster-wide.
	Broadcast(record types.Record) error
	// Listen returns the channel every delivered record arrives on.
	Listen() <-chan Delivery
	// Membership returns the channel membership-change notifications
	// arrive on.
	Membership() <-chan MembershipEvent
	// LocalID is this node's id within the ring.
	LocalID() types.NodeID
	// SendOK is the back-pressure predicate translators must consult
	// before broadcasting (spec §5).
	SendOK() bool
	// Close tears down the transport.
	Close()
}

// Ring tracks the current membership and ring-id a transport has
// reported, and derives the "lowest-id node" singleton-duty rule used by
// retention timers and sync initiation (spec §4.3, §4.4, GLOSSARY).
type Ring struct {
	mutex   sync.RWMutex
	members []types.NodeID
	ringID  uint64
}

// Update replaces the tracked membership and ring id.
func (r *Ring) Update(members []types.NodeID, ringID uint64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.members = append([]types.NodeID(nil), members...)
	r.ringID = ringID
}

// Members returns a snapshot of the current membership.
func (r *Ring) Members() []types.NodeID {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]types.NodeID(nil), r.members...)
}

// RingID returns the last ring id observed.
func (r *Ring) RingID() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.ringID
}

// LowestID returns the numerically smallest member of the current
// membership, or 0 if the ring is empty.
func (r *Ring) LowestID() types.NodeID {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if len(r.members) == 0 {
		return 0
	}
	lowest := r.members[0]
	for _, m := range r.members[1:] {
		if m < lowest {
			lowest = m
		}
	}
	return lowest
}

// Contains reports whether id is a current member.
func (r *Ring) Contains(id types.NodeID) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, m := range r.members {
		if m == id {
			return true
		}
	}
	return false
}

// envelope is the JSON transport framing for a broadcast record: the
// record id names which concrete Go type Payload decodes into, the way
// the wire Header/RecordID pairing in spec §6 intends.
type envelope struct {
	ID      types.RecordID  `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// ReltTransport implements Transport over github.com/jabolina/relt's
// reliable multicast primitive, the same dependency the teacher's own
// pkg/mcast/core/transport.go wraps. Membership/ring tracking is not
// part of relt's API, and ReltTransport does not supply it: its Ring
// holds only the local node (ring id 1) and nothing is ever sent on its
// Membership channel. Group membership detection is, per spec §1, an
// external collaborator this repository only consumes through the
// Transport interface above.
type ReltTransport struct {
	log             definition.Logger
	relt            *relt.Relt
	localID         types.NodeID
	group           string
	producer        chan Delivery
	members         chan MembershipEvent
	ring            *Ring
	protocolVersion *version.Version

	ctx    context.Context
	cancel context.CancelFunc
}

// NewReltTransport dials into the named process group using relt, after
// checking protocolVersion against minSupportedProtocolVersion so an
// operator rolling out an incompatible build fails at bootstrap instead
// of desyncing the ring later.
func NewReltTransport(localID types.NodeID, name, group, protocolVersion string, log definition.Logger) (*ReltTransport, error) {
	v, err := CheckProtocolVersion(protocolVersion)
	if err != nil {
		return nil, err
	}

	conf := relt.DefaultReltConfiguration()
	conf.Name = name
	conf.Exchange = relt.GroupAddress(group)
	r, err := relt.NewRelt(*conf)
	if err != nil {
		return nil, fmt.Errorf("dial relt group %s: %w", group, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ring := &Ring{}
	ring.Update([]types.NodeID{localID}, 1)

	t := &ReltTransport{
		log:             log,
		relt:            r,
		localID:         localID,
		group:           group,
		producer:        make(chan Delivery, 256),
		members:         make(chan MembershipEvent, 8),
		ring:            ring,
		protocolVersion: v,
		ctx:             ctx,
		cancel:          cancel,
	}
	go t.poll()
	return t, nil
}

// Broadcast implements Transport.
func (t *ReltTransport) Broadcast(record types.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		prolog.Errorf("failed marshalling record %#v: %v", record, err)
		return err
	}
	env := envelope{ID: record.RecordID(), Payload: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return t.relt.Broadcast(t.ctx, relt.Send{Address: relt.GroupAddress(t.group), Data: data})
}

// Listen implements Transport.
func (t *ReltTransport) Listen() <-chan Delivery {
	return t.producer
}

// Membership implements Transport.
func (t *ReltTransport) Membership() <-chan MembershipEvent {
	return t.members
}

// LocalID implements Transport.
func (t *ReltTransport) LocalID() types.NodeID {
	return t.localID
}

// SendOK implements Transport. relt does not expose a send-window
// predicate directly; a healthy connection to the group is treated as
// permanently send-ok, and real back-pressure is applied one layer up
// by the translator's circuit breaker (translator.go) around broadcast
// failures, per spec §5.
func (t *ReltTransport) SendOK() bool {
	select {
	case <-t.ctx.Done():
		return false
	default:
		return true
	}
}

// Close implements Transport.
func (t *ReltTransport) Close() {
	t.cancel()
	if err := t.relt.Close(); err != nil {
		t.log.Errorf("failed stopping transport: %v", err)
	}
}

func (t *ReltTransport) poll() {
	listener, err := t.relt.Consume()
	if err != nil {
		t.log.Fatalf("failed consuming relt group %s: %v", t.group, err)
		return
	}
	for {
		select {
		case <-t.ctx.Done():
			return
		case recv, ok := <-listener:
			if !ok {
				return
			}
			t.consume(recv.Origin, recv.Data, recv.Error)
		}
	}
}

func (t *ReltTransport) consume(origin string, data []byte, recvErr error) {
	if recvErr != nil {
		t.log.Errorf("failed consuming message from %s: %v", origin, recvErr)
		return
	}
	if data == nil {
		t.log.Warnf("received empty message from %s", origin)
		return
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.log.Errorf("failed unmarshalling envelope from %s: %v", origin, err)
		return
	}
	record := types.NewRecord(env.ID)
	if record == nil {
		t.log.Errorf("unknown record id %d from %s", env.ID, origin)
		return
	}
	if err := json.Unmarshal(env.Payload, record); err != nil {
		t.log.Errorf("failed unmarshalling record %d from %s: %v", env.ID, origin, err)
		return
	}

	timeout, cancel := context.WithTimeout(t.ctx, 250*time.Millisecond)
	defer cancel()
	select {
	case <-timeout.Done():
		t.log.Warnf("failed delivering record %d from %s: producer full", env.ID, origin)
	case t.producer <- Delivery{Record: record, Origin: t.localID}:
	}
}
