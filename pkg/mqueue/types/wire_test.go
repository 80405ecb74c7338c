package types

import "testing"

func TestHeaderSwapEndianRoundTrip(t *testing.T) {
	h := Header{Size: 0x01020304, ID: RecordID(0x05060708)}
	original := h
	h.SwapEndian()
	if h == original {
		t.Fatalf("expected SwapEndian to change the header")
	}
	h.SwapEndian()
	if h != original {
		t.Fatalf("expected SwapEndian to be its own inverse, got %#v want %#v", h, original)
	}
}

func TestExecHeaderSwapEndianRoundTrip(t *testing.T) {
	h := ExecHeader{
		Header: Header{Size: 16, ID: RecordQueueOpen},
		Source: Source{NodeID: 7, ConnHandle: 0x1122334455667788},
	}
	original := h
	h.SwapEndian()
	h.SwapEndian()
	if h != original {
		t.Fatalf("expected ExecHeader SwapEndian round trip, got %#v want %#v", h, original)
	}
}

func TestNewRecordFactory(t *testing.T) {
	cases := []RecordID{
		RecordQueueOpen, RecordQueueOpenAsync, RecordQueueClose, RecordQueueStatusGet,
		RecordMessageSend, RecordMessageSendReceive, RecordMessageReply,
		RecordSyncQueue, RecordSyncGroup, RecordSyncReply,
	}
	for _, id := range cases {
		record := NewRecord(id)
		if record == nil {
			t.Fatalf("expected a record for id %d", id)
		}
		if record.RecordID() != id {
			t.Fatalf("expected record id %d, got %d", id, record.RecordID())
		}
	}
}

func TestNewRecordUnknownID(t *testing.T) {
	if r := NewRecord(RecordID(9999)); r != nil {
		t.Fatalf("expected nil for unknown record id, got %#v", r)
	}
}

func TestMessageRecordRoundTrip(t *testing.T) {
	msg := Message{Type: 1, Version: 2, Priority: 3, Size: 4, Data: []byte("data")}
	wire := newMessageRecord(msg)
	back := wire.message(msg.Data)
	if back.Type != msg.Type || back.Version != msg.Version || back.Priority != msg.Priority || back.Size != msg.Size {
		t.Fatalf("expected round-trip message to match, got %#v want %#v", back, msg)
	}
}

func TestWireNameRoundTrip(t *testing.T) {
	n := Name("a-queue-name")
	w := newWireName(n)
	if !w.name().Equal(n) {
		t.Fatalf("expected %q, got %q", n, w.name())
	}
}

func TestSenderIDPacking(t *testing.T) {
	id := NewSenderID(NodeID(42), 7)
	if id.Origin() != 42 {
		t.Fatalf("expected origin 42, got %d", id.Origin())
	}
	if id.Counter() != 7 {
		t.Fatalf("expected counter 7, got %d", id.Counter())
	}
}
