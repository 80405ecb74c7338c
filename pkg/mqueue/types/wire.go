package types

import "encoding/binary"

// RecordID names a wire record. Every record begins with a
// {size: u32, id: u32} header (spec §6); executive records additionally
// carry an 8-byte-aligned Source tuple immediately after the header.
type RecordID uint32

// Replicated-operation record ids (spec §4.1's operation table).
const (
	RecordQueueOpen RecordID = iota + 1
	RecordQueueOpenAsync
	RecordQueueClose
	RecordQueueStatusGet
	RecordQueueRetentionTimeSet
	RecordQueueUnlink
	RecordQueueGroupCreate
	RecordQueueGroupInsert
	RecordQueueGroupRemove
	RecordQueueGroupDelete
	RecordMessageSend
	RecordMessageSendAsync
	RecordMessageGet
	RecordMessageCancel
	RecordMessageSendReceive
	RecordMessageReply
	RecordMessageReplyAsync
	RecordQueueCapacityThresholdsSet
	RecordQueueCapacityThresholdsGet

	// Timer-expiry broadcasts (spec §4.1).
	RecordQueueTimeout
	RecordMessageGetTimeout
	RecordSendReceiveTimeout

	// Synchronization-engine records (spec §4.3).
	RecordSyncQueue
	RecordSyncQueueRefcount
	RecordSyncQueueMessage
	RecordSyncQueuePending
	RecordSyncGroup
	RecordSyncGroupMember
	RecordSyncReply

	// RecordSyncComplete closes a sync round (spec §4.3's REPLY-phase ->
	// activate transition): once every member has applied it, the
	// accumulated shadow lists replace the live replicated state.
	RecordSyncComplete
)

// Header is the common prefix of every wire record.
type Header struct {
	Size uint32
	ID   RecordID
}

// ExecHeader is the common prefix of every replicated executive record:
// the wire Header plus the originating Source, 8-byte aligned
// immediately after it (spec §6).
type ExecHeader struct {
	Header
	Source Source
}

// Swapper is the declarative "swap-in-place" routine a record type
// provides so the transport can byte-swap it on cross-endian delivery
// (DESIGN NOTES §9). Only the multi-byte integer fields need swapping;
// byte payloads (names, message data) are endian-agnostic.
type Swapper interface {
	// SwapEndian byte-swaps every multi-byte integer field in place.
	SwapEndian()
}

func swap16(v *uint16) { *v = binary.LittleEndian.Uint16(reverse(toBytes16(*v))) }
func swap32(v *uint32) { *v = binary.LittleEndian.Uint32(reverse(toBytes32(*v))) }
func swap64(v *uint64) { *v = binary.LittleEndian.Uint64(reverse(toBytes64(*v))) }

func toBytes16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func toBytes32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
func toBytes64(v uint64) []byte { b := make([]byte, 8); binary.LittleEndian.PutUint64(b, v); return b }

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// SwapEndian implements Swapper for Header.
func (h *Header) SwapEndian() {
	swap32((*uint32)(&h.Size))
	id := uint32(h.ID)
	swap32(&id)
	h.ID = RecordID(id)
}

// SwapEndian implements Swapper for ExecHeader.
func (h *ExecHeader) SwapEndian() {
	h.Header.SwapEndian()
	nodeID := uint32(h.Source.NodeID)
	swap32(&nodeID)
	h.Source.NodeID = NodeID(nodeID)
	connHandle := uint64(h.Source.ConnHandle)
	swap64(&connHandle)
	h.Source.ConnHandle = ConnHandle(connHandle)
}

// wireName is the on-wire {length: u16, value: u8[256]} pair (spec §6).
// Name itself is kept as a plain []byte in memory (name.go); this type
// exists only to document/implement the fixed-layout encoding at the
// transport boundary.
type wireName struct {
	Length uint16
	Value  [MaxNameLength]byte
}

func newWireName(n Name) wireName {
	var w wireName
	w.Length = uint16(len(n))
	copy(w.Value[:], n)
	return w
}

func (w wireName) name() Name {
	return Name(w.Value[:w.Length])
}

// SwapEndian implements Swapper for wireName: only Length is multi-byte.
func (w *wireName) SwapEndian() {
	swap16(&w.Length)
}

// MessageRecord is the fixed header for a Message on the wire; the
// payload itself travels in a second iovec segment following this
// record (spec §6).
type MessageRecord struct {
	Type     uint32
	Version  uint32
	Priority uint8
	_        [3]byte // padding after Priority; the compiler adds 4 more bytes so Size sits at offset 16
	Size     uint64
}

// SwapEndian implements Swapper for MessageRecord.
func (m *MessageRecord) SwapEndian() {
	swap32(&m.Type)
	swap32(&m.Version)
	swap64(&m.Size)
}

func newMessageRecord(msg Message) MessageRecord {
	return MessageRecord{Type: msg.Type, Version: msg.Version, Priority: uint8(msg.Priority), Size: msg.Size}
}

func (m MessageRecord) message(data []byte) Message {
	return Message{Type: m.Type, Version: m.Version, Priority: Priority(m.Priority), Size: m.Size, Data: data}
}
