// Package mqueue is the public API of the clustered message-queue
// service: a replicated, totally-ordered set of named queues and queue
// groups, shared by every node of a cluster (spec §1).
package mqueue

import (
	"sync/atomic"
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue/core"
	"github.com/jabolina/go-mqueue/pkg/mqueue/definition"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// Service bootstraps one cluster node: the transport, the single-writer
// executive dispatcher, and the synchronization engine that keeps it
// consistent with every other member (spec §5).
type Service struct {
	node       *core.Node
	log        definition.Logger
	nextHandle uint64
}

// NewService wires a Service around an already-dialed Transport,
// enforcing the compiled-in default limits (spec §6). Use
// NewServiceWithLimits to override them from config.LimitsConfig.
func NewService(transport core.Transport, log definition.Logger) *Service {
	return &Service{
		node: core.NewNode(transport, core.NewStdTimers(), log),
		log:  log,
	}
}

// NewServiceWithLimits is NewService with a deployment-tunable
// types.Limits (config.LimitsConfig.Resolve) enforced in place of the
// compiled-in defaults.
func NewServiceWithLimits(transport core.Transport, log definition.Logger, limits types.Limits) *Service {
	return &Service{
		node: core.NewNodeWithLimits(transport, core.NewStdTimers(), log, limits),
		log:  log,
	}
}

// Close tears down this node's event loop and transport.
func (s *Service) Close() {
	s.node.Close()
}

// Connect opens a new client handle against this service (spec §6's IPC
// connection concept).
func (s *Service) Connect() *Client {
	handle := types.ConnHandle(atomic.AddUint64(&s.nextHandle, 1))
	source := types.Source{NodeID: s.node.LocalID(), ConnHandle: handle}
	conn := core.NewConnection(source, true)
	s.node.Connect(conn)
	return &Client{
		service: s,
		source:  source,
		conn:    conn,
	}
}

// Client is one connection's blocking request surface: every call
// submits a record through the node's Translator and blocks on the
// connection's response channel, mirroring the teacher's Command/
// observer pattern (pkg/mcast/core/peer.go) generalized to this
// service's request/response shape.
type Client struct {
	service *Service
	source  types.Source
	conn    *core.Connection
}

// Close releases this connection, implicitly closing every queue it
// still holds open (spec §3's cleanup-on-disconnect).
func (c *Client) Close() {
	c.service.node.Disconnect(c.source)
}

// Dispatches exposes the asynchronous callback stream a host process
// drains for open-callback, group-track, and message-delivered/received
// notifications (spec §6's dispatch_send).
func (c *Client) Dispatches() <-chan core.Callback {
	return c.conn.Dispatches()
}

func (c *Client) await() core.Response {
	return <-c.conn.Responses()
}

// QueueOpen implements spec §4.1's QueueOpen/QueueOpenAsync.
func (c *Client) QueueOpen(name []byte, flags types.OpenFlags, attrs *types.CreationAttrs, timeout time.Duration, async bool) (types.QueueID, error) {
	if async && !c.conn.HasOpenCallback() {
		return 0, types.ErrInit
	}
	var creation types.CreationAttrs
	has := attrs != nil
	if has {
		creation = *attrs
	}
	if err := c.service.node.Translator().QueueOpen(c.source.ConnHandle, name, flags, creation, has, timeout, async); err != nil {
		return 0, err
	}
	res := c.await()
	return res.QueueID, res.Err
}

// QueueClose implements spec §4.1's QueueClose.
func (c *Client) QueueClose(name []byte, id types.QueueID) error {
	if err := c.service.node.Translator().QueueClose(c.source.ConnHandle, name, id); err != nil {
		return err
	}
	return c.await().Err
}

// QueueStatusGet implements spec §4.1's QueueStatusGet.
func (c *Client) QueueStatusGet(name []byte) (types.QueueStatus, error) {
	if err := c.service.node.Translator().QueueStatusGet(c.source.ConnHandle, name); err != nil {
		return types.QueueStatus{}, err
	}
	res := c.await()
	return res.Status, res.Err
}

// QueueRetentionTimeSet implements spec §4.4's QueueRetentionTimeSet.
func (c *Client) QueueRetentionTimeSet(name []byte, id types.QueueID, retention time.Duration) error {
	if err := c.service.node.Translator().QueueRetentionTimeSet(c.source.ConnHandle, name, id, retention); err != nil {
		return err
	}
	return c.await().Err
}

// QueueUnlink implements spec §4.4's QueueUnlink.
func (c *Client) QueueUnlink(name []byte) error {
	if err := c.service.node.Translator().QueueUnlink(c.source.ConnHandle, name); err != nil {
		return err
	}
	return c.await().Err
}

// QueueGroupCreate implements spec §3's queue group lifecycle.
func (c *Client) QueueGroupCreate(name []byte, policy types.DispatchPolicy) (types.GroupID, error) {
	if err := c.service.node.Translator().QueueGroupCreate(c.source.ConnHandle, name, policy); err != nil {
		return 0, err
	}
	res := c.await()
	return res.GroupID, res.Err
}

// QueueGroupInsert adds a queue to a group.
func (c *Client) QueueGroupInsert(group, queue []byte) error {
	if err := c.service.node.Translator().QueueGroupInsert(c.source.ConnHandle, group, queue); err != nil {
		return err
	}
	return c.await().Err
}

// QueueGroupRemove removes a queue from a group.
func (c *Client) QueueGroupRemove(group, queue []byte) error {
	if err := c.service.node.Translator().QueueGroupRemove(c.source.ConnHandle, group, queue); err != nil {
		return err
	}
	return c.await().Err
}

// QueueGroupDelete deletes a group, leaving its member queues intact.
func (c *Client) QueueGroupDelete(group []byte) error {
	if err := c.service.node.Translator().QueueGroupDelete(c.source.ConnHandle, group); err != nil {
		return err
	}
	return c.await().Err
}

// QueueGroupTrack is a supplemented feature (SPEC_FULL.md): it
// subscribes this connection to a group's membership changes. Track
// subscriptions are process-local — never replicated — so this call
// never crosses the translator/broadcast boundary.
func (c *Client) QueueGroupTrack(group []byte, flags types.TrackFlags) {
	name := append(types.Name(nil), group...)
	source := c.source
	conn := c.conn
	c.service.node.SubmitLocal(func(state *core.State) {
		entry := &types.TrackEntry{GroupName: name, Source: source, TrackFlags: flags}
		state.Tracks = append(state.Tracks, entry)
		if flags&types.TrackCurrent != 0 {
			if g := state.GroupByName(name); g != nil {
				conn.Dispatch(core.Callback{Kind: core.CallbackGroupTrack, GroupID: g.ID, ChangeFlag: types.ChangeNone})
			}
		}
	})
}

// QueueGroupTrackStop cancels a QueueGroupTrack subscription belonging
// to this connection.
func (c *Client) QueueGroupTrackStop(group []byte) {
	name := append(types.Name(nil), group...)
	source := c.source
	c.service.node.SubmitLocal(func(state *core.State) {
		filtered := state.Tracks[:0]
		for _, t := range state.Tracks {
			if t.Source == source && t.GroupName.Equal(name) {
				continue
			}
			filtered = append(filtered, t)
		}
		state.Tracks = filtered
	})
}

// QueueGroupNotificationFree is a supplemented feature (SPEC_FULL.md):
// the original's equivalent call releases resources tied to a
// notification descriptor. Every notification here is a plain Go value
// with no descriptor to release, so this is a documented no-op kept
// only for API-surface completeness.
func (c *Client) QueueGroupNotificationFree(types.GroupID) {}

// MessageSend implements spec §4.2's MessageSend/MessageSendAsync.
func (c *Client) MessageSend(dest types.Destination, msg types.Message, timeout time.Duration, async bool, ackFlags types.AckFlags, invocation uint64) error {
	if err := c.service.node.Translator().MessageSend(c.source.ConnHandle, dest, msg, timeout, async, ackFlags, invocation); err != nil {
		return err
	}
	return c.await().Err
}

// MessageGet implements spec §4.2's MessageGet.
func (c *Client) MessageGet(name []byte, id types.QueueID, timeout time.Duration) (types.Message, error) {
	if err := c.service.node.Translator().MessageGet(c.source.ConnHandle, name, id, timeout); err != nil {
		return types.Message{}, err
	}
	res := c.await()
	return res.Message, res.Err
}

// MessageCancel implements spec §4.2's MessageCancel.
func (c *Client) MessageCancel(name []byte, id types.QueueID) error {
	if err := c.service.node.Translator().MessageCancel(c.source.ConnHandle, name, id); err != nil {
		return err
	}
	return c.await().Err
}

// MessageSendReceive implements spec §4.2's MessageSendReceive.
func (c *Client) MessageSendReceive(dest types.Destination, msg types.Message, timeout time.Duration, replySize uint64) (types.SenderID, error) {
	senderID, err := c.service.node.Translator().MessageSendReceive(c.source.ConnHandle, dest, msg, timeout, replySize)
	if err != nil {
		return 0, err
	}
	res := c.await()
	if res.Err != nil {
		return 0, res.Err
	}
	return senderID, nil
}

// MessageReply implements spec §4.2's MessageReply/MessageReplyAsync.
func (c *Client) MessageReply(senderID types.SenderID, msg types.Message, timeout time.Duration, async bool, ackFlags types.AckFlags) error {
	if err := c.service.node.Translator().MessageReply(c.source.ConnHandle, senderID, msg, timeout, async, ackFlags); err != nil {
		return err
	}
	return c.await().Err
}

// MessageDataFree is a supplemented feature (SPEC_FULL.md): the
// original's call releases a message buffer obtained from MessageGet.
// Message.Data here is an ordinary Go slice collected by the garbage
// collector, so this is a documented no-op kept for API-surface
// completeness.
func (c *Client) MessageDataFree(*types.Message) {}

// QueueCapacityThresholdsSet implements spec §4.4.
func (c *Client) QueueCapacityThresholdsSet(name []byte, thresholds [types.NumPriorities]types.CapacityThresholds) error {
	if err := c.service.node.Translator().QueueCapacityThresholdsSet(c.source.ConnHandle, name, thresholds); err != nil {
		return err
	}
	return c.await().Err
}

// QueueCapacityThresholdsGet implements spec §4.4.
func (c *Client) QueueCapacityThresholdsGet(name []byte) ([types.NumPriorities]types.CapacityThresholds, error) {
	if err := c.service.node.Translator().QueueCapacityThresholdsGet(c.source.ConnHandle, name); err != nil {
		return [types.NumPriorities]types.CapacityThresholds{}, err
	}
	res := c.await()
	return res.Thresholds, res.Err
}

// LimitGet is a supplemented feature (SPEC_FULL.md, grounded on
// original_source/services/msg.c's saMsgLimitGet): it returns the
// compiled-in limit set without any broadcast round-trip, since limits
// are process-wide constants rather than replicated state.
func LimitGet() Limits {
	return DefaultLimits()
}

// MetadataSizeGet is a supplemented feature (SPEC_FULL.md, grounded on
// original_source/services/msg.c's saMsgQueueUsageGet/metadata calls):
// it returns the fixed per-entity metadata sizes this implementation
// uses, again without a broadcast round-trip.
func MetadataSizeGet() MetadataSizes {
	return MetadataSizes{
		Queue:        144,
		QueueGroup:   64,
		MessageEntry: 56,
	}
}

// MetadataSizes is the value returned by MetadataSizeGet.
type MetadataSizes struct {
	Queue        uint64
	QueueGroup   uint64
	MessageEntry uint64
}
