package core

import (
	"github.com/jabolina/go-mqueue/pkg/mqueue/definition"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// Executive is the single writer to replicated state (spec §4.1): it
// applies, in delivery order, every record the transport hands it,
// mirroring the teacher's Deliverable/StateMachine single-commit-point
// pattern (pkg/mcast/core/deliver.go, pkg/mcast/types/state_machine.go)
// but specialized to the twenty-odd queue operations of this spec
// instead of a generic key/value command.
type Executive struct {
	state       *State
	timers      TimerFacility
	ring        *Ring
	log         definition.Logger
	local       types.NodeID
	connections map[types.Source]*Connection
	broadcastTimeout TimeoutBroadcaster

	// limits overrides the compiled-in defaults (spec §6, LimitGet),
	// threaded through from config.LimitsConfig by SetLimits. It defaults
	// to types.DefaultLimits() so an Executive built without calling
	// SetLimits behaves exactly as before.
	limits types.Limits
}

// NewExecutive builds an Executive bound to one node's local id, ring,
// and timer facility.
func NewExecutive(local types.NodeID, ring *Ring, timers TimerFacility, log definition.Logger) *Executive {
	return &Executive{
		state:       NewState(),
		timers:      timers,
		ring:        ring,
		log:         log,
		local:       local,
		connections: make(map[types.Source]*Connection),
		limits:      types.DefaultLimits(),
	}
}

// SetLimits overrides the cardinality/size limits QueueOpen,
// QueueGroupCreate, and QueueGroupInsert enforce (spec §6's LimitGet
// values, made deployment-tunable via config.LimitsConfig).
func (e *Executive) SetLimits(limits types.Limits) {
	e.limits = limits
}

// State exposes the live replicated state for read-only inspection
// (tests, QueueStatusGet-adjacent helpers).
func (e *Executive) State() *State { return e.state }

// Register records a local connection so Apply can route responses and
// callbacks to it.
func (e *Executive) Register(conn *Connection) {
	e.connections[conn.Source] = conn
}

// Unregister drops a local connection's response routing. Used once its
// QueueClose/cleanup has been fully processed.
func (e *Executive) Unregister(source types.Source) {
	delete(e.connections, source)
}

func (e *Executive) connectionFor(source types.Source) *Connection {
	if source.NodeID != e.local {
		return nil
	}
	return e.connections[source]
}

func (e *Executive) respond(source types.Source, r Response) {
	if c := e.connectionFor(source); c != nil {
		c.Respond(r)
	}
}

func (e *Executive) dispatch(source types.Source, cb Callback) {
	if c := e.connectionFor(source); c != nil {
		c.Dispatch(cb)
	}
}

// Apply mutates replicated state for one delivered record and, iff its
// source originated on this node, emits exactly one IPC response plus
// zero or more dispatch callbacks (spec §4.1).
func (e *Executive) Apply(record types.Record) {
	switch r := record.(type) {
	case *types.QueueOpenRecord:
		e.applyQueueOpen(r)
	case *types.QueueCloseRecord:
		e.applyQueueClose(r)
	case *types.QueueStatusGetRecord:
		e.applyQueueStatusGet(r)
	case *types.QueueRetentionTimeSetRecord:
		e.applyQueueRetentionTimeSet(r)
	case *types.QueueUnlinkRecord:
		e.applyQueueUnlink(r)
	case *types.QueueGroupCreateRecord:
		e.applyQueueGroupCreate(r)
	case *types.QueueGroupInsertRecord:
		e.applyQueueGroupInsert(r)
	case *types.QueueGroupRemoveRecord:
		e.applyQueueGroupRemove(r)
	case *types.QueueGroupDeleteRecord:
		e.applyQueueGroupDelete(r)
	case *types.MessageSendRecord:
		e.applyMessageSend(r)
	case *types.MessageGetRecord:
		e.applyMessageGet(r)
	case *types.MessageCancelRecord:
		e.applyMessageCancel(r)
	case *types.MessageSendReceiveRecord:
		e.applyMessageSendReceive(r)
	case *types.MessageReplyRecord:
		e.applyMessageReply(r)
	case *types.QueueCapacityThresholdsRecord:
		e.applyQueueCapacityThresholds(r)
	case *types.TimeoutRecord:
		e.applyTimeout(r)
	default:
		e.log.Warnf("unhandled record type %T", record)
	}
}

// --- QueueOpen / QueueOpenAsync -------------------------------------------------

func (e *Executive) applyQueueOpen(r *types.QueueOpenRecord) {
	async := r.ID == types.RecordQueueOpenAsync
	q := e.state.QueueByName(r.Name)

	if q == nil {
		if !r.Flags.Has(types.OpenCreate) {
			e.respond(r.Source, Response{Err: types.ErrNotExist})
			return
		}
		if !r.HasCreateAttrs {
			e.respond(r.Source, Response{Err: types.ErrBadFlags})
			return
		}
		if uint32(len(e.state.Queues)) >= e.limits.MaxQueues {
			e.respond(r.Source, Response{Err: types.ErrNoResources})
			return
		}
		for _, sz := range r.CreateAttrs.Size {
			if sz > e.limits.MaxPriorityAreaSize {
				e.respond(r.Source, Response{Err: types.ErrTooBig})
				return
			}
		}
		if r.CreateAttrs.TotalSize() > e.limits.MaxQueueSize {
			e.respond(r.Source, Response{Err: types.ErrTooBig})
			return
		}

		q = &types.Queue{
			ID:            e.state.NewQueueID(),
			Name:          append(types.Name(nil), r.Name...),
			CreationAttrs: r.CreateAttrs,
			RefcountSet:   make(types.RefcountSet),
		}
		for i := range q.Priority {
			q.Priority[i].QueueSize = r.CreateAttrs.Size[i]
		}
		e.state.InsertQueue(q)
	} else {
		if q.Refcount() != 0 {
			e.respond(r.Source, Response{Err: types.ErrBusy})
			return
		}
		if r.Flags.Has(types.OpenCreate) {
			if !r.HasCreateAttrs || !q.CreationAttrs.Equal(r.CreateAttrs) {
				e.respond(r.Source, Response{Err: types.ErrExist})
				return
			}
		}
	}

	if q.HasRetention {
		e.timers.Delete(q.RetentionTimer)
		q.HasRetention = false
	}

	if r.Flags.Has(types.OpenEmpty) {
		e.drainMessages(q)
	}

	if q.RefcountSet == nil {
		q.RefcountSet = make(types.RefcountSet)
	}
	q.RefcountSet[r.Source.NodeID]++
	q.OpenFlags = r.Flags
	q.Source = r.Source
	q.UnlinkFlag = false

	cleanup := e.state.CleanupFor(r.Source)
	cleanup.Queues = append(cleanup.Queues, q.ID)

	e.respond(r.Source, Response{QueueID: q.ID})
	if async {
		e.dispatch(r.Source, Callback{Kind: CallbackQueueOpen, QueueID: q.ID})
	}
}

func (e *Executive) drainMessages(q *types.Queue) {
	q.MessageList = nil
	for i := range q.Priority {
		q.Priority[i].Messages = nil
		q.Priority[i].NMessages = 0
		q.Priority[i].QueueUsed = 0
	}
}

// --- QueueClose ------------------------------------------------------------

func (e *Executive) applyQueueClose(r *types.QueueCloseRecord) {
	q := e.state.Queues[r.ID_]
	if q == nil || !q.Name.Equal(r.Name) {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}

	if q.RefcountSet[r.Source.NodeID] > 0 {
		q.RefcountSet[r.Source.NodeID]--
		if q.RefcountSet[r.Source.NodeID] == 0 {
			delete(q.RefcountSet, r.Source.NodeID)
		}
	}
	if q.Source == r.Source {
		q.Source = types.Source{}
	}
	if cleanup, ok := e.state.Cleanup[r.Source]; ok {
		cleanup.Remove(q.ID)
	}

	if q.Refcount() == 0 {
		q.CloseTime = e.timers.Now()
		if q.UnlinkFlag && q.CreationAttrs.Persistent() {
			e.state.RemoveQueue(q.ID)
		} else if q.UnlinkFlag && !q.CreationAttrs.Persistent() {
			e.state.RemoveQueue(q.ID)
		} else if !q.CreationAttrs.Persistent() && e.ring.LowestID() == e.local {
			e.armRetention(q)
		}
	}

	e.respond(r.Source, Response{})
}

func (e *Executive) armRetention(q *types.Queue) {
	at := q.CloseTime.Add(q.CreationAttrs.RetentionTime)
	qid := q.ID
	qname := append(types.Name(nil), q.Name...)
	q.RetentionTimer = e.timers.AddAbsolute(at, func(types.TimerHandle) {
		e.onLocalTimeout(&types.TimeoutRecord{
			ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueTimeout}, Source: types.Source{NodeID: e.local}},
			QueueName:  qname,
			QueueID:    qid,
		})
	})
	q.HasRetention = true
}

// TimeoutBroadcaster lets a Node intercept locally-fired timers and
// broadcast them cluster-wide, instead of the Executive looping directly
// back to itself. DESIGN NOTES §9: "the timer fires a state-machine
// event that enters the same broadcast path as any other operation" —
// this is that hand-off point.
type TimeoutBroadcaster func(*types.TimeoutRecord)

// onLocalTimeout is the callback every locally-armed timer invokes. The
// Node installs the real broadcaster; with none installed (e.g. in unit
// tests driving Executive directly) the record is applied in-process.
func (e *Executive) onLocalTimeout(r *types.TimeoutRecord) {
	if e.broadcastTimeout != nil {
		e.broadcastTimeout(r)
		return
	}
	e.Apply(r)
}

// SetTimeoutBroadcaster installs the hook Node uses to broadcast locally
// fired timers.
func (e *Executive) SetTimeoutBroadcaster(fn TimeoutBroadcaster) {
	e.broadcastTimeout = fn
}

// --- QueueStatusGet ----------------------------------------------------

func (e *Executive) applyQueueStatusGet(r *types.QueueStatusGetRecord) {
	q := e.state.QueueByName(r.Name)
	if q == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	status := types.QueueStatus{
		CreationFlags: q.CreationAttrs.CreationFlags,
		RetentionTime: q.CreationAttrs.RetentionTime,
		CloseTime:     q.CloseTime,
	}
	for i := range q.Priority {
		status.Usage[i] = types.PriorityUsage{
			QueueSize: q.Priority[i].QueueSize,
			QueueUsed: q.Priority[i].QueueUsed,
			NMessages: q.Priority[i].NMessages,
		}
	}
	e.respond(r.Source, Response{Status: status})
}

// --- QueueRetentionTimeSet -----------------------------------------------

func (e *Executive) applyQueueRetentionTimeSet(r *types.QueueRetentionTimeSetRecord) {
	q := e.state.Queues[r.ID_]
	if q == nil || !q.Name.Equal(r.Name) {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	if q.CreationAttrs.Persistent() {
		e.respond(r.Source, Response{Err: types.ErrBadOperation})
		return
	}
	q.CreationAttrs.RetentionTime = r.RetentionTime
	if q.HasRetention && e.ring.LowestID() == e.local {
		e.timers.Delete(q.RetentionTimer)
		e.armRetention(q)
	}
	e.respond(r.Source, Response{})
}

// --- QueueUnlink ---------------------------------------------------------

func (e *Executive) applyQueueUnlink(r *types.QueueUnlinkRecord) {
	q := e.state.QueueByName(r.Name)
	if q == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	if q.UnlinkFlag {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	q.UnlinkFlag = true
	if q.Refcount() == 0 {
		if q.HasRetention {
			e.timers.Delete(q.RetentionTimer)
			q.HasRetention = false
		}
		e.state.RemoveQueue(q.ID)
	}
	e.respond(r.Source, Response{})
}

// --- QueueGroupCreate ------------------------------------------------------

func (e *Executive) applyQueueGroupCreate(r *types.QueueGroupCreateRecord) {
	if e.state.GroupByName(r.Name) != nil {
		e.respond(r.Source, Response{Err: types.ErrExist})
		return
	}
	if uint32(len(e.state.Groups)) >= e.limits.MaxGroups {
		e.respond(r.Source, Response{Err: types.ErrNoResources})
		return
	}
	g := &types.Group{
		ID:        e.state.NewGroupID(),
		Name:      append(types.Name(nil), r.Name...),
		Policy:    r.Policy,
		NextQueue: types.NoQueue,
	}
	e.state.InsertGroup(g)
	e.respond(r.Source, Response{GroupID: g.ID})
}

// --- QueueGroupInsert ------------------------------------------------------

func (e *Executive) applyQueueGroupInsert(r *types.QueueGroupInsertRecord) {
	g := e.state.GroupByName(r.GroupName)
	if g == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	q := e.state.QueueByName(r.QueueName)
	if q == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	if q.Group != types.NoGroup {
		e.respond(r.Source, Response{Err: types.ErrExist})
		return
	}
	if uint32(len(g.QueueHead)) >= e.limits.MaxQueuesPerGroup {
		e.respond(r.Source, Response{Err: types.ErrNoResources})
		return
	}
	g.QueueHead = append(g.QueueHead, q.ID)
	if g.NextQueue == types.NoQueue {
		g.NextQueue = q.ID
	}
	q.Group = g.ID
	e.notifyTrackers(g, types.ChangeAdded)
	e.respond(r.Source, Response{})
}

// --- QueueGroupRemove --------------------------------------------------

func (e *Executive) applyQueueGroupRemove(r *types.QueueGroupRemoveRecord) {
	g := e.state.GroupByName(r.GroupName)
	if g == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	q := e.state.QueueByName(r.QueueName)
	if q == nil || q.Group != g.ID {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	e.state.detachMember(g, q.ID)
	q.Group = types.NoGroup
	e.notifyTrackers(g, types.ChangeRemoved)
	e.respond(r.Source, Response{})
}

// --- QueueGroupDelete --------------------------------------------------

func (e *Executive) applyQueueGroupDelete(r *types.QueueGroupDeleteRecord) {
	g := e.state.GroupByName(r.GroupName)
	if g == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	e.state.RemoveGroup(g.ID)
	e.respond(r.Source, Response{})
}

// notifyTrackers dispatches a group-track callback to every local
// connection subscribed to g's membership changes (spec §3's
// supplemented QueueGroupTrack feature). Track subscriptions are
// process-local (SPEC_FULL.md), so only entries whose Source is local
// ever receive a callback.
func (e *Executive) notifyTrackers(g *types.Group, change types.ChangeFlag) {
	for _, t := range e.state.Tracks {
		if !t.GroupName.Equal(g.Name) {
			continue
		}
		if t.TrackFlags&types.TrackChanges == 0 && t.TrackFlags&types.TrackChangesOnly == 0 {
			continue
		}
		e.dispatch(t.Source, Callback{Kind: CallbackGroupTrack, GroupID: g.ID, ChangeFlag: change})
	}
}

// --- MessageSend / MessageSendAsync -------------------------------------

func (e *Executive) resolveDestination(dest types.Destination) (*types.Queue, error) {
	if dest.IsGroup {
		g := e.state.GroupByName(dest.Group)
		if g == nil {
			return nil, types.ErrNotExist
		}
		if g.NextQueue == types.NoQueue {
			return nil, types.ErrNotExist
		}
		q := e.state.Queues[g.NextQueue]
		e.state.advanceCursor(g)
		return q, nil
	}
	q := e.state.QueueByName(dest.Queue)
	if q == nil {
		return nil, types.ErrNotExist
	}
	return q, nil
}

func (e *Executive) applyMessageSend(r *types.MessageSendRecord) {
	async := r.ID == types.RecordMessageSendAsync
	q, err := e.resolveDestination(r.Dest)
	if err != nil {
		e.respond(r.Source, Response{Err: err})
		return
	}
	if !r.Message.Priority.Valid() {
		e.respond(r.Source, Response{Err: types.ErrBadFlags})
		return
	}
	area := &q.Priority[r.Message.Priority]
	if !area.Room(r.Message.Size) {
		e.respond(r.Source, Response{Err: types.ErrQueueFull})
		return
	}

	entry := &types.MessageEntry{
		SendTime: e.timers.Now(),
		Message:  r.Message,
	}
	q.MessageList = append(q.MessageList, entry)
	area.Messages = append(area.Messages, entry)
	area.NMessages++
	area.QueueUsed += r.Message.Size

	e.fulfillPending(q)

	e.respond(r.Source, Response{})
	if q.OpenFlags.Has(types.OpenReceiveCallback) {
		e.dispatch(q.Source, Callback{Kind: CallbackMessageReceived, QueueID: q.ID})
	}
	if async && r.AckFlags&types.AckDelivered != 0 {
		e.dispatch(r.Source, Callback{Kind: CallbackMessageDelivered, QueueID: q.ID, Invocation: r.Invocation})
	}
}

// dequeueHighestPriority removes and returns the oldest message in the
// highest-priority non-empty area (priority 0 drained before priority 1,
// etc., at every receive — spec §3), mirroring
// original_source/services/msg.c's msg_queue_find_message, which scans
// SA_MSG_MESSAGE_HIGHEST_PRIORITY..LOWEST rather than a single FIFO list.
// It reports nil if the queue holds no messages at all.
func (e *Executive) dequeueHighestPriority(q *types.Queue) *types.MessageEntry {
	for i := range q.Priority {
		area := &q.Priority[i]
		if len(area.Messages) == 0 {
			continue
		}
		entry := area.Messages[0]
		area.Messages = area.Messages[1:]
		area.NMessages--
		area.QueueUsed -= entry.Message.Size

		for j, m := range q.MessageList {
			if m == entry {
				q.MessageList = append(q.MessageList[:j], q.MessageList[j+1:]...)
				break
			}
		}
		return entry
	}
	return nil
}

// fulfillPending hands the highest-priority queued message to the oldest
// blocked MessageGet caller, if both exist (spec §4.1's pending-receive
// match).
func (e *Executive) fulfillPending(q *types.Queue) {
	for len(q.PendingList) > 0 {
		entry := e.dequeueHighestPriority(q)
		if entry == nil {
			return
		}
		pending := q.PendingList[0]
		q.PendingList = q.PendingList[1:]
		e.timers.Delete(pending.TimerHandle)

		if entry.HasReply {
			e.dispatch(pending.Source, Callback{Kind: CallbackMessageReceived, QueueID: q.ID, Message: entry.Message})
		}
		e.respond(pending.Source, Response{Message: entry.Message, SenderID: entry.SenderID})
	}
}

// --- MessageGet ----------------------------------------------------------

func (e *Executive) applyMessageGet(r *types.MessageGetRecord) {
	q := e.state.Queues[r.ID_]
	if q == nil || !q.Name.Equal(r.Name) {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}

	if entry := e.dequeueHighestPriority(q); entry != nil {
		e.respond(r.Source, Response{Message: entry.Message, SenderID: entry.SenderID})
		return
	}

	if r.Timeout <= 0 {
		e.respond(r.Source, Response{Err: types.ErrTryAgain})
		return
	}

	pending := &types.PendingReceive{Source: r.Source, Timeout: r.Timeout}
	e.ArmPendingReceive(q, pending)
	q.PendingList = append(q.PendingList, pending)
}

// ArmPendingReceive (re-)arms the MessageGetTimeout timer for a pending
// receive against q, using pending.Timeout as the full duration. Used
// both for a fresh MessageGet and, after a synchronization round, to
// re-arm every pending receive the shadow state carried over (spec
// §4.3).
func (e *Executive) ArmPendingReceive(q *types.Queue, pending *types.PendingReceive) {
	qid := q.ID
	qname := append(types.Name(nil), q.Name...)
	source := pending.Source
	pending.TimerHandle = e.timers.AddDuration(pending.Timeout, func(types.TimerHandle) {
		e.onLocalTimeout(&types.TimeoutRecord{
			ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageGetTimeout}, Source: source},
			QueueName:  qname,
			QueueID:    qid,
		})
	})
}

// --- MessageCancel -------------------------------------------------------

func (e *Executive) applyMessageCancel(r *types.MessageCancelRecord) {
	q := e.state.Queues[r.ID_]
	if q == nil || !q.Name.Equal(r.Name) {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	for i, p := range q.PendingList {
		if p.Source == r.Source {
			e.timers.Delete(p.TimerHandle)
			q.PendingList = append(q.PendingList[:i], q.PendingList[i+1:]...)
			e.respond(r.Source, Response{})
			return
		}
	}
	e.respond(r.Source, Response{Err: types.ErrNotExist})
}

// --- MessageSendReceive --------------------------------------------------

func (e *Executive) applyMessageSendReceive(r *types.MessageSendReceiveRecord) {
	q, err := e.resolveDestination(r.Dest)
	if err != nil {
		e.respond(r.Source, Response{Err: err})
		return
	}
	if !r.Message.Priority.Valid() {
		e.respond(r.Source, Response{Err: types.ErrBadFlags})
		return
	}
	if r.ReplySize > types.MaxReplySize {
		e.respond(r.Source, Response{Err: types.ErrTooBig})
		return
	}
	area := &q.Priority[r.Message.Priority]
	if !area.Room(r.Message.Size) {
		e.respond(r.Source, Response{Err: types.ErrQueueFull})
		return
	}

	entry := &types.MessageEntry{
		SendTime: e.timers.Now(),
		SenderID: r.SenderID,
		HasReply: true,
		Message:  r.Message,
	}
	q.MessageList = append(q.MessageList, entry)
	area.Messages = append(area.Messages, entry)
	area.NMessages++
	area.QueueUsed += r.Message.Size

	reply := &types.ReplyEntry{SenderID: r.SenderID, Source: r.Source, ReplySizeLimit: r.ReplySize, Timeout: r.Timeout}
	e.ArmReply(reply)
	e.state.Replies[r.SenderID] = reply

	e.fulfillPending(q)
	e.respond(r.Source, Response{SenderID: r.SenderID})
}

// ArmReply (re-)arms the SendReceiveTimeout timer for reply, using
// reply.Timeout as the full duration. Used both for a fresh
// MessageSendReceive and, after a synchronization round, to re-arm every
// reply correlation the shadow state carried over (spec §4.3).
func (e *Executive) ArmReply(reply *types.ReplyEntry) {
	senderID := reply.SenderID
	source := reply.Source
	reply.TimerHandle = e.timers.AddDuration(reply.Timeout, func(types.TimerHandle) {
		e.onLocalTimeout(&types.TimeoutRecord{
			ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordSendReceiveTimeout}, Source: source},
			SenderID:   senderID,
		})
	})
}

// --- MessageReply / MessageReplyAsync -----------------------------------

func (e *Executive) applyMessageReply(r *types.MessageReplyRecord) {
	async := r.ID == types.RecordMessageReplyAsync
	reply, ok := e.state.Replies[r.SenderID]
	if !ok {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	if r.Message.Size > reply.ReplySizeLimit {
		e.respond(r.Source, Response{Err: types.ErrNoSpace})
		return
	}
	e.timers.Delete(reply.TimerHandle)
	delete(e.state.Replies, r.SenderID)

	e.respond(r.Source, Response{})
	e.dispatch(reply.Source, Callback{Kind: CallbackMessageReceived, Message: r.Message})
	if async {
		e.dispatch(r.Source, Callback{Kind: CallbackMessageDelivered})
	}
}

// --- QueueCapacityThresholdsSet / Get ------------------------------------

func (e *Executive) applyQueueCapacityThresholds(r *types.QueueCapacityThresholdsRecord) {
	q := e.state.QueueByName(r.Name)
	if q == nil {
		e.respond(r.Source, Response{Err: types.ErrNotExist})
		return
	}
	if r.ID == types.RecordQueueCapacityThresholdsGet {
		e.respond(r.Source, Response{Thresholds: q.CapacityThresholds})
		return
	}
	q.CapacityThresholds = r.Thresholds
	for i := range q.Priority {
		q.Priority[i].Thresholds = r.Thresholds[i]
	}
	e.respond(r.Source, Response{})
}

// --- Timeout broadcasts (QueueTimeout/MessageGetTimeout/SendReceiveTimeout) --

func (e *Executive) applyTimeout(r *types.TimeoutRecord) {
	switch r.ID {
	case types.RecordQueueTimeout:
		q := e.state.Queues[r.QueueID]
		if q == nil || !q.HasRetention {
			return
		}
		q.HasRetention = false
		e.state.RemoveQueue(q.ID)
	case types.RecordMessageGetTimeout:
		q := e.state.Queues[r.QueueID]
		if q == nil {
			return
		}
		for i, p := range q.PendingList {
			if p.Source == r.Source {
				q.PendingList = append(q.PendingList[:i], q.PendingList[i+1:]...)
				e.respond(r.Source, Response{Err: types.ErrTimeout})
				return
			}
		}
	case types.RecordSendReceiveTimeout:
		reply, ok := e.state.Replies[r.SenderID]
		if !ok {
			return
		}
		delete(e.state.Replies, r.SenderID)
		e.respond(reply.Source, Response{Err: types.ErrTimeout})
	}
}
