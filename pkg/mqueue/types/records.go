package types

import "time"

// Record is any replicated broadcast record the executive dispatcher can
// apply. Every concrete record embeds ExecHeader and implements Swapper.
type Record interface {
	Swapper
	RecordID() RecordID
}

// QueueOpenRecord is the replicated form of QueueOpen/QueueOpenAsync
// (spec §4.1). Async is distinguished by ExecHeader.ID.
type QueueOpenRecord struct {
	ExecHeader
	Name          Name
	CreateAttrs   CreationAttrs
	HasCreateAttrs bool
	Flags         OpenFlags
	Timeout       time.Duration
}

func (r *QueueOpenRecord) RecordID() RecordID { return r.ID }

// QueueCloseRecord is the replicated form of QueueClose.
type QueueCloseRecord struct {
	ExecHeader
	Name Name
	ID_  QueueID
}

func (r *QueueCloseRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueStatusGetRecord is the replicated form of QueueStatusGet.
type QueueStatusGetRecord struct {
	ExecHeader
	Name Name
}

func (r *QueueStatusGetRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueRetentionTimeSetRecord is the replicated form of
// QueueRetentionTimeSet.
type QueueRetentionTimeSetRecord struct {
	ExecHeader
	Name          Name
	ID_           QueueID
	RetentionTime time.Duration
}

func (r *QueueRetentionTimeSetRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueUnlinkRecord is the replicated form of QueueUnlink.
type QueueUnlinkRecord struct {
	ExecHeader
	Name Name
}

func (r *QueueUnlinkRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueGroupCreateRecord is the replicated form of QueueGroupCreate.
type QueueGroupCreateRecord struct {
	ExecHeader
	Name   Name
	Policy DispatchPolicy
}

func (r *QueueGroupCreateRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueGroupInsertRecord is the replicated form of QueueGroupInsert.
type QueueGroupInsertRecord struct {
	ExecHeader
	GroupName Name
	QueueName Name
}

func (r *QueueGroupInsertRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueGroupRemoveRecord is the replicated form of QueueGroupRemove.
type QueueGroupRemoveRecord struct {
	ExecHeader
	GroupName Name
	QueueName Name
}

func (r *QueueGroupRemoveRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueGroupDeleteRecord is the replicated form of QueueGroupDelete.
type QueueGroupDeleteRecord struct {
	ExecHeader
	GroupName Name
}

func (r *QueueGroupDeleteRecord) RecordID() RecordID { return r.ExecHeader.ID }

// Destination names either a single queue or a group; exactly one of
// the two fields is set (spec §4.1, MessageSend's "If dest names a
// group... else resolve to queue").
type Destination struct {
	Queue Name
	Group Name
	IsGroup bool
}

// MessageSendRecord is the replicated form of MessageSend/
// MessageSendAsync.
type MessageSendRecord struct {
	ExecHeader
	Dest      Destination
	Timeout   time.Duration
	Message   Message
	AckFlags  AckFlags
	Invocation uint64
}

func (r *MessageSendRecord) RecordID() RecordID { return r.ExecHeader.ID }

// AckFlags selects which async acknowledgements MessageSendAsync wants.
type AckFlags uint32

const (
	AckDelivered AckFlags = 1 << iota
)

// MessageGetRecord is the replicated form of MessageGet.
type MessageGetRecord struct {
	ExecHeader
	Name    Name
	ID_     QueueID
	Timeout time.Duration
}

func (r *MessageGetRecord) RecordID() RecordID { return r.ExecHeader.ID }

// MessageCancelRecord is the replicated form of MessageCancel.
type MessageCancelRecord struct {
	ExecHeader
	Name Name
	ID_  QueueID
}

func (r *MessageCancelRecord) RecordID() RecordID { return r.ExecHeader.ID }

// MessageSendReceiveRecord is the replicated form of MessageSendReceive.
// SenderID is allocated by the translator before broadcast (spec §4.2).
type MessageSendReceiveRecord struct {
	ExecHeader
	Dest      Destination
	Timeout   time.Duration
	ReplySize uint64
	Message   Message
	SenderID  SenderID
}

func (r *MessageSendReceiveRecord) RecordID() RecordID { return r.ExecHeader.ID }

// MessageReplyRecord is the replicated form of MessageReply/
// MessageReplyAsync.
type MessageReplyRecord struct {
	ExecHeader
	SenderID SenderID
	Message  Message
	Timeout  time.Duration
	AckFlags AckFlags
}

func (r *MessageReplyRecord) RecordID() RecordID { return r.ExecHeader.ID }

// QueueCapacityThresholdsRecord is the replicated form of
// QueueCapacityThresholdsSet/Get.
type QueueCapacityThresholdsRecord struct {
	ExecHeader
	Name       Name
	Thresholds [numPriorities]CapacityThresholds
}

func (r *QueueCapacityThresholdsRecord) RecordID() RecordID { return r.ExecHeader.ID }

// TimeoutRecord is the replicated form of the three timer-expiry
// broadcasts: QueueTimeout, MessageGetTimeout, SendReceiveTimeout. Which
// entity it targets is disambiguated by ExecHeader.ID.
type TimeoutRecord struct {
	ExecHeader
	QueueName Name
	QueueID   QueueID
	SenderID  SenderID
}

func (r *TimeoutRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncQueueRecord streams one queue's header+attrs during the QUEUE sync
// phase (spec §4.3).
type SyncQueueRecord struct {
	ExecHeader
	RingID  uint64
	Queue   Name
	QID     QueueID
	Attrs   CreationAttrs
	Flags   OpenFlags
	Unlink  bool
	CloseAt time.Time
}

func (r *SyncQueueRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncQueueRefcountRecord streams a queue's per-node refcount vector.
type SyncQueueRefcountRecord struct {
	ExecHeader
	RingID   uint64
	QID      QueueID
	Refcount map[NodeID]uint32
}

func (r *SyncQueueRefcountRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncQueueMessageRecord streams one message of a queue, in send order.
type SyncQueueMessageRecord struct {
	ExecHeader
	RingID   uint64
	QID      QueueID
	SendTime time.Time
	SenderID SenderID
	Message  Message
}

func (r *SyncQueueMessageRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncQueuePendingRecord streams one blocked MessageGet caller still
// waiting on a queue (spec §4.3: "local pending-receive... records whose
// originator survived the configuration change remain valid"). Only
// emitted when Source.NodeID is still a member of the new membership.
type SyncQueuePendingRecord struct {
	ExecHeader
	RingID   uint64
	QID      QueueID
	Source   Source
	Timeout  time.Duration
	SenderID SenderID
}

func (r *SyncQueuePendingRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncGroupRecord streams one group's header during the GROUP sync
// phase.
type SyncGroupRecord struct {
	ExecHeader
	RingID uint64
	GID    GroupID
	Name   Name
	Policy DispatchPolicy
}

func (r *SyncGroupRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncGroupMemberRecord streams one member of a group, in insertion
// order.
type SyncGroupMemberRecord struct {
	ExecHeader
	RingID uint64
	GID    GroupID
	QID    QueueID
}

func (r *SyncGroupMemberRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncReplyRecord streams one open reply during the REPLY sync phase.
// Only emitted when SenderID.Origin() is still a member of the new
// membership (spec §4.3: orphan replies are discarded). Source is the
// caller the eventual MessageReply must be routed back to; without it
// the rebuilt ReplyEntry cannot be delivered to anyone (spec §8,
// testable property 7).
type SyncReplyRecord struct {
	ExecHeader
	RingID         uint64
	SenderID       SenderID
	Source         Source
	ReplySizeLimit uint64
	Timeout        time.Duration
}

func (r *SyncReplyRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SyncCompleteRecord closes one sync round; every member applies the
// shadow lists it accumulated once this record is delivered (spec
// §4.3).
type SyncCompleteRecord struct {
	ExecHeader
	RingID uint64
}

func (r *SyncCompleteRecord) RecordID() RecordID { return r.ExecHeader.ID }

// SwapEndian implementations, per the "declarative swap-in-place" design
// (DESIGN NOTES §9): each record swaps its ExecHeader (size, id, source
// node id and connection handle) only. The multi-byte fields after the
// header (queue/group ids, sizes, sender ids, ring ids, durations, times,
// refcounts) are not swapped.

func (r *QueueOpenRecord) SwapEndian()              { r.ExecHeader.SwapEndian() }
func (r *QueueCloseRecord) SwapEndian()              { r.ExecHeader.SwapEndian() }
func (r *QueueStatusGetRecord) SwapEndian()          { r.ExecHeader.SwapEndian() }
func (r *QueueRetentionTimeSetRecord) SwapEndian()   { r.ExecHeader.SwapEndian() }
func (r *QueueUnlinkRecord) SwapEndian()             { r.ExecHeader.SwapEndian() }
func (r *QueueGroupCreateRecord) SwapEndian()        { r.ExecHeader.SwapEndian() }
func (r *QueueGroupInsertRecord) SwapEndian()        { r.ExecHeader.SwapEndian() }
func (r *QueueGroupRemoveRecord) SwapEndian()        { r.ExecHeader.SwapEndian() }
func (r *QueueGroupDeleteRecord) SwapEndian()        { r.ExecHeader.SwapEndian() }
func (r *MessageSendRecord) SwapEndian()             { r.ExecHeader.SwapEndian() }
func (r *MessageGetRecord) SwapEndian()              { r.ExecHeader.SwapEndian() }
func (r *MessageCancelRecord) SwapEndian()           { r.ExecHeader.SwapEndian() }
func (r *MessageSendReceiveRecord) SwapEndian()      { r.ExecHeader.SwapEndian() }
func (r *MessageReplyRecord) SwapEndian()            { r.ExecHeader.SwapEndian() }
func (r *QueueCapacityThresholdsRecord) SwapEndian() { r.ExecHeader.SwapEndian() }
func (r *TimeoutRecord) SwapEndian()                 { r.ExecHeader.SwapEndian() }
func (r *SyncQueueRecord) SwapEndian()               { r.ExecHeader.SwapEndian() }
func (r *SyncQueueRefcountRecord) SwapEndian()       { r.ExecHeader.SwapEndian() }
func (r *SyncQueueMessageRecord) SwapEndian()        { r.ExecHeader.SwapEndian() }
func (r *SyncQueuePendingRecord) SwapEndian()        { r.ExecHeader.SwapEndian() }
func (r *SyncGroupRecord) SwapEndian()               { r.ExecHeader.SwapEndian() }
func (r *SyncGroupMemberRecord) SwapEndian()         { r.ExecHeader.SwapEndian() }
func (r *SyncReplyRecord) SwapEndian()               { r.ExecHeader.SwapEndian() }
func (r *SyncCompleteRecord) SwapEndian()             { r.ExecHeader.SwapEndian() }

// NewRecord allocates the zero value of the record type named by id, so
// a transport can unmarshal into it without a giant switch living
// outside the types package. This is the "registry keyed by record id"
// the declarative endian-swap design (DESIGN NOTES §9) generalizes to
// marshalling as a whole.
func NewRecord(id RecordID) Record {
	switch id {
	case RecordQueueOpen, RecordQueueOpenAsync:
		return &QueueOpenRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueClose:
		return &QueueCloseRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueStatusGet:
		return &QueueStatusGetRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueRetentionTimeSet:
		return &QueueRetentionTimeSetRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueUnlink:
		return &QueueUnlinkRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueGroupCreate:
		return &QueueGroupCreateRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueGroupInsert:
		return &QueueGroupInsertRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueGroupRemove:
		return &QueueGroupRemoveRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueGroupDelete:
		return &QueueGroupDeleteRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordMessageSend, RecordMessageSendAsync:
		return &MessageSendRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordMessageGet:
		return &MessageGetRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordMessageCancel:
		return &MessageCancelRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordMessageSendReceive:
		return &MessageSendReceiveRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordMessageReply, RecordMessageReplyAsync:
		return &MessageReplyRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueCapacityThresholdsSet, RecordQueueCapacityThresholdsGet:
		return &QueueCapacityThresholdsRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordQueueTimeout, RecordMessageGetTimeout, RecordSendReceiveTimeout:
		return &TimeoutRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncQueue:
		return &SyncQueueRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncQueueRefcount:
		return &SyncQueueRefcountRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncQueueMessage:
		return &SyncQueueMessageRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncQueuePending:
		return &SyncQueuePendingRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncGroup:
		return &SyncGroupRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncGroupMember:
		return &SyncGroupMemberRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncReply:
		return &SyncReplyRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	case RecordSyncComplete:
		return &SyncCompleteRecord{ExecHeader: ExecHeader{Header: Header{ID: id}}}
	default:
		return nil
	}
}
