package core

import (
	"github.com/jabolina/go-mqueue/pkg/mqueue/definition"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// SyncPhase names one step of the synchronization engine's state machine
// (spec §4.3): NOT_STARTED -> STARTED -> QUEUE -> GROUP -> REPLY ->
// activate -> NOT_STARTED.
type SyncPhase uint8

const (
	SyncNotStarted SyncPhase = iota
	SyncStarted
	SyncQueuePhase
	SyncGroupPhase
	SyncReplyPhase
)

// shadowState accumulates the records streamed by a sync round before
// they are atomically swapped in to replace the live State (spec §4.3:
// "shadow lists swapped in atomically"). Building a shadow instead of
// mutating the live State directly is what lets a ring change arrive
// mid-sync without corrupting what is already serving requests.
type shadowState struct {
	ringID  uint64
	queues  []*types.Queue
	refcounts map[types.QueueID]map[types.NodeID]uint32
	pending map[types.QueueID][]*types.PendingReceive
	groups  []*types.Group
	members map[types.GroupID][]types.QueueID
	replies []*types.ReplyEntry
}

func newShadowState(ringID uint64) *shadowState {
	return &shadowState{
		ringID:    ringID,
		refcounts: make(map[types.QueueID]map[types.NodeID]uint32),
		pending:   make(map[types.QueueID][]*types.PendingReceive),
		members:   make(map[types.GroupID][]types.QueueID),
	}
}

// SyncEngine drives the synchronization state machine that runs on every
// ring change (spec §4.3). Only the ring's lowest-id node initiates a
// sync round; every member (including the initiator) applies the
// streamed records into a shadow state and activates it once the REPLY
// phase closes.
type SyncEngine struct {
	local     types.NodeID
	ring      *Ring
	state     *State
	executive *Executive
	transport Transport
	log       definition.Logger

	phase  SyncPhase
	shadow *shadowState
}

// NewSyncEngine builds a SyncEngine bound to one node's Executive and
// Transport.
func NewSyncEngine(local types.NodeID, ring *Ring, state *State, executive *Executive, transport Transport, log definition.Logger) *SyncEngine {
	return &SyncEngine{
		local:     local,
		ring:      ring,
		state:     state,
		executive: executive,
		transport: transport,
		log:       log,
		phase:     SyncNotStarted,
	}
}

// Phase reports the engine's current state-machine phase.
func (s *SyncEngine) Phase() SyncPhase { return s.phase }

// OnMembershipChange starts a new sync round (spec §4.3). A
// transitional membership event only resets any round already in
// progress; the lowest-id node of a regular event streams the
// replicated lists that survive the new ring.
func (s *SyncEngine) OnMembershipChange(ev MembershipEvent) {
	if ev.Type == MembershipTransitional {
		s.phase = SyncNotStarted
		s.shadow = nil
		return
	}

	s.ring.Update(ev.Members, ev.RingID)
	s.phase = SyncStarted
	s.shadow = newShadowState(ev.RingID)

	if s.ring.LowestID() != s.local {
		return
	}
	s.streamQueues(ev.RingID, ev.Members)
	s.streamGroups(ev.RingID)
	s.streamReplies(ev.RingID, ev.Members)
}

func (s *SyncEngine) streamQueues(ringID uint64, members []types.NodeID) {
	s.phase = SyncQueuePhase
	present := make(map[types.NodeID]bool, len(members))
	for _, m := range members {
		present[m] = true
	}
	for _, q := range s.state.Queues {
		_ = s.transport.Broadcast(&types.SyncQueueRecord{
			ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncQueue}},
			RingID:     ringID,
			Queue:      append(types.Name(nil), q.Name...),
			QID:        q.ID,
			Attrs:      q.CreationAttrs,
			Flags:      q.OpenFlags,
			Unlink:     q.UnlinkFlag,
			CloseAt:    q.CloseTime,
		})
		refcount := make(map[types.NodeID]uint32, len(q.RefcountSet))
		for node, c := range q.RefcountSet {
			refcount[node] = c
		}
		_ = s.transport.Broadcast(&types.SyncQueueRefcountRecord{
			ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncQueueRefcount}},
			RingID:     ringID,
			QID:        q.ID,
			Refcount:   refcount,
		})
		for _, entry := range q.MessageList {
			_ = s.transport.Broadcast(&types.SyncQueueMessageRecord{
				ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncQueueMessage}},
				RingID:     ringID,
				QID:        q.ID,
				SendTime:   entry.SendTime,
				SenderID:   entry.SenderID,
				Message:    entry.Message,
			})
		}
		// Local pending-receive records whose originator survived the
		// configuration change remain valid (spec §4.3); one still bound
		// to a departed node is dropped instead.
		for _, pending := range q.PendingList {
			if !present[pending.Source.NodeID] {
				continue
			}
			_ = s.transport.Broadcast(&types.SyncQueuePendingRecord{
				ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncQueuePending}},
				RingID:     ringID,
				QID:        q.ID,
				Source:     pending.Source,
				Timeout:    pending.Timeout,
				SenderID:   pending.SenderID,
			})
		}
	}
}

func (s *SyncEngine) streamGroups(ringID uint64) {
	s.phase = SyncGroupPhase
	for _, g := range s.state.Groups {
		_ = s.transport.Broadcast(&types.SyncGroupRecord{
			ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncGroup}},
			RingID:     ringID,
			GID:        g.ID,
			Name:       append(types.Name(nil), g.Name...),
			Policy:     g.Policy,
		})
		for _, qid := range g.QueueHead {
			_ = s.transport.Broadcast(&types.SyncGroupMemberRecord{
				ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncGroupMember}},
				RingID:     ringID,
				GID:        g.ID,
				QID:        qid,
			})
		}
	}
}

// streamReplies streams every open reply correlation whose origin node
// is still a member of the new membership; replies belonging to a
// departed node are orphans and are dropped instead (spec §4.3: "orphan
// replies are discarded").
func (s *SyncEngine) streamReplies(ringID uint64, members []types.NodeID) {
	s.phase = SyncReplyPhase
	present := make(map[types.NodeID]bool, len(members))
	for _, m := range members {
		present[m] = true
	}
	for _, reply := range s.state.Replies {
		if !present[reply.SenderID.Origin()] {
			continue
		}
		_ = s.transport.Broadcast(&types.SyncReplyRecord{
			ExecHeader:     types.ExecHeader{Header: types.Header{ID: types.RecordSyncReply}},
			RingID:         ringID,
			SenderID:       reply.SenderID,
			Source:         reply.Source,
			ReplySizeLimit: reply.ReplySizeLimit,
			Timeout:        reply.Timeout,
		})
	}
	_ = s.transport.Broadcast(&types.SyncCompleteRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSyncComplete}},
		RingID:     ringID,
	})
}

// Apply feeds one delivered sync record into the in-progress shadow
// state. Records for a stale ring id (a round already superseded by a
// newer membership change) are ignored.
func (s *SyncEngine) Apply(record types.Record) {
	if s.shadow == nil {
		return
	}
	switch r := record.(type) {
	case *types.SyncQueueRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		s.phase = SyncQueuePhase
		s.shadow.queues = append(s.shadow.queues, &types.Queue{
			ID:            r.QID,
			Name:          append(types.Name(nil), r.Queue...),
			CreationAttrs: r.Attrs,
			OpenFlags:     r.Flags,
			UnlinkFlag:    r.Unlink,
			CloseTime:     r.CloseAt,
			RefcountSet:   make(types.RefcountSet),
		})
	case *types.SyncQueueRefcountRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		set := make(map[types.NodeID]uint32, len(r.Refcount))
		for n, c := range r.Refcount {
			set[n] = c
		}
		s.shadow.refcounts[r.QID] = set
	case *types.SyncQueueMessageRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		for _, q := range s.shadow.queues {
			if q.ID != r.QID {
				continue
			}
			entry := &types.MessageEntry{SendTime: r.SendTime, SenderID: r.SenderID, Message: r.Message}
			q.MessageList = append(q.MessageList, entry)
			area := &q.Priority[entry.Message.Priority]
			area.Messages = append(area.Messages, entry)
			area.NMessages++
			area.QueueUsed += entry.Message.Size
			break
		}
	case *types.SyncQueuePendingRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		s.shadow.pending[r.QID] = append(s.shadow.pending[r.QID], &types.PendingReceive{
			Source:   r.Source,
			Timeout:  r.Timeout,
			SenderID: r.SenderID,
		})
	case *types.SyncGroupRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		s.phase = SyncGroupPhase
		s.shadow.groups = append(s.shadow.groups, &types.Group{ID: r.GID, Name: append(types.Name(nil), r.Name...), Policy: r.Policy, NextQueue: types.NoQueue})
	case *types.SyncGroupMemberRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		s.shadow.members[r.GID] = append(s.shadow.members[r.GID], r.QID)
	case *types.SyncReplyRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		s.phase = SyncReplyPhase
		s.shadow.replies = append(s.shadow.replies, &types.ReplyEntry{
			SenderID:       r.SenderID,
			Source:         r.Source,
			ReplySizeLimit: r.ReplySizeLimit,
			Timeout:        r.Timeout,
		})
	case *types.SyncCompleteRecord:
		if r.RingID != s.shadow.ringID {
			return
		}
		s.activate(r.RingID, s.ring.Members())
	}
}

// activate swaps the accumulated shadow lists in for the live State
// (spec §4.3's "shadow lists swapped in atomically") and returns the
// engine to NOT_STARTED. Queue refcounts are reconciled against the new
// membership as they swap in, so a departed node's opens are dropped
// without a separate pass.
func (s *SyncEngine) activate(ringID uint64, members []types.NodeID) {
	present := make(map[types.NodeID]bool, len(members))
	for _, m := range members {
		present[m] = true
	}

	// Every timer armed against the pre-sync state is superseded by this
	// round: surviving pending receives and replies are re-armed fresh
	// below, and dropped ones must not fire against a queue/reply that no
	// longer exists.
	for _, q := range s.state.Queues {
		if q.HasRetention {
			s.executive.timers.Delete(q.RetentionTimer)
		}
		for _, pending := range q.PendingList {
			s.executive.timers.Delete(pending.TimerHandle)
		}
	}
	for _, reply := range s.state.Replies {
		s.executive.timers.Delete(reply.TimerHandle)
	}

	queues := make(map[types.QueueID]*types.Queue, len(s.shadow.queues))
	byName := make(map[string]types.QueueID, len(s.shadow.queues))
	for _, q := range s.shadow.queues {
		refcount := s.shadow.refcounts[q.ID]
		set := make(types.RefcountSet, len(refcount))
		for node, c := range refcount {
			if present[node] {
				set[node] = c
			}
		}
		q.RefcountSet = set
		if q.Refcount() == 0 && !q.CreationAttrs.Persistent() && s.ring.LowestID() == s.local {
			s.executive.armRetention(q)
		}
		for _, pending := range s.shadow.pending[q.ID] {
			s.executive.ArmPendingReceive(q, pending)
			q.PendingList = append(q.PendingList, pending)
		}
		queues[q.ID] = q
		byName[string(q.Name)] = q.ID
	}

	groups := make(map[types.GroupID]*types.Group, len(s.shadow.groups))
	groupsByName := make(map[string]types.GroupID, len(s.shadow.groups))
	for _, g := range s.shadow.groups {
		g.QueueHead = s.shadow.members[g.ID]
		if len(g.QueueHead) > 0 {
			g.NextQueue = g.QueueHead[0]
		}
		for _, qid := range g.QueueHead {
			if q, ok := queues[qid]; ok {
				q.Group = g.ID
			}
		}
		groups[g.ID] = g
		groupsByName[string(g.Name)] = g.ID
	}

	replies := make(map[types.SenderID]*types.ReplyEntry, len(s.shadow.replies))
	for _, r := range s.shadow.replies {
		s.executive.ArmReply(r)
		replies[r.SenderID] = r
	}

	s.state.Queues = queues
	s.state.QueuesByName = byName
	s.state.Groups = groups
	s.state.GroupsByName = groupsByName
	s.state.Replies = replies

	s.ring.Update(members, ringID)
	s.phase = SyncNotStarted
	s.shadow = nil
	s.log.Infof("sync round for ring %d activated with %d queues, %d groups, %d replies", ringID, len(queues), len(groups), len(replies))
}
