package core

import (
	"testing"
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// drainSync applies every record already sitting on transport's Listen
// channel to engine, stopping once the channel runs dry or the engine
// returns to NOT_STARTED.
func drainSync(t *testing.T, transport Transport, engine *SyncEngine) {
	t.Helper()
	for i := 0; i < 64 && engine.Phase() != SyncNotStarted; i++ {
		select {
		case delivery := <-transport.Listen():
			engine.Apply(delivery.Record)
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}

func TestSyncEngineStreamsAndActivates(t *testing.T) {
	hub := NewLocalHub()
	transportA := hub.Join(1)
	defer transportA.Close()

	execA, timersA, ringA := newTestExecutive(1)
	_ = timersA
	source := types.Source{NodeID: 1, ConnHandle: 1}
	conn := NewConnection(source, true)
	execA.Register(conn)
	openQueue(t, execA, conn, "durable", 0)

	syncA := NewSyncEngine(1, ringA, execA.State(), execA, transportA, noopLogger{})

	transportB := hub.Join(2)
	defer transportB.Close()

	ev := MembershipEvent{Type: MembershipRegular, Members: []types.NodeID{1, 2}, RingID: hub.ringID}
	syncA.OnMembershipChange(ev)
	drainSync(t, transportA, syncA)

	if syncA.Phase() != SyncNotStarted {
		t.Fatalf("expected sync engine to return to NOT_STARTED after activation, got %v", syncA.Phase())
	}
	if execA.State().QueueByName(types.Name("durable")) == nil {
		t.Fatalf("expected the durable queue to survive sync activation")
	}
}

func TestSyncEngineTransitionalResetsRound(t *testing.T) {
	ring := &Ring{}
	ring.Update([]types.NodeID{1}, 1)
	exec, _, _ := newTestExecutive(1)
	hub := NewLocalHub()
	transport := hub.Join(1)
	defer transport.Close()

	engine := NewSyncEngine(1, ring, exec.State(), exec, transport, noopLogger{})
	engine.OnMembershipChange(MembershipEvent{Type: MembershipRegular, Members: []types.NodeID{1}, RingID: 2})
	drainSync(t, transport, engine)
	if engine.Phase() != SyncNotStarted {
		t.Fatalf("expected single-member round to activate, got %v", engine.Phase())
	}

	engine.phase = SyncGroupPhase
	engine.shadow = newShadowState(3)
	engine.OnMembershipChange(MembershipEvent{Type: MembershipTransitional, RingID: 3})
	if engine.Phase() != SyncNotStarted || engine.shadow != nil {
		t.Fatalf("expected transitional event to reset the in-progress round")
	}
}

func TestSyncEngineDropsOrphanReplies(t *testing.T) {
	exec, _, ring := newTestExecutive(1)
	hub := NewLocalHub()
	transport := hub.Join(1)
	defer transport.Close()

	departed := types.NewSenderID(2, 1)
	exec.State().Replies[departed] = &types.ReplyEntry{SenderID: departed, ReplySizeLimit: 8}

	engine := NewSyncEngine(1, ring, exec.State(), exec, transport, noopLogger{})
	engine.OnMembershipChange(MembershipEvent{Type: MembershipRegular, Members: []types.NodeID{1}, RingID: 2})
	drainSync(t, transport, engine)

	if _, ok := exec.State().Replies[departed]; ok {
		t.Fatalf("expected the orphaned reply to be dropped on activation")
	}
}

// TestSyncEngineCarriesOverPendingReceive covers spec §4.3's "local
// pending-receive... records whose originator survived the configuration
// change remain valid": a MessageGet blocked on an empty queue must still
// be satisfiable (and still cancellable/timeoutable) after a membership
// change activates.
func TestSyncEngineCarriesOverPendingReceive(t *testing.T) {
	hub := NewLocalHub()
	transport := hub.Join(1)
	defer transport.Close()

	exec, _, ring := newTestExecutive(1)
	source := types.Source{NodeID: 1, ConnHandle: 1}
	conn := NewConnection(source, true)
	exec.Register(conn)
	qid := openQueue(t, exec, conn, "pending-survivor", 0)

	exec.Apply(&types.MessageGetRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageGet}, Source: source},
		Name:       types.Name("pending-survivor"),
		ID_:        qid,
		Timeout:    time.Second,
	})
	q := exec.State().Queues[qid]
	if len(q.PendingList) != 1 {
		t.Fatalf("expected one pending receive before sync, got %d", len(q.PendingList))
	}

	engine := NewSyncEngine(1, ring, exec.State(), exec, transport, noopLogger{})
	engine.OnMembershipChange(MembershipEvent{Type: MembershipRegular, Members: []types.NodeID{1}, RingID: 2})
	drainSync(t, transport, engine)

	q = exec.State().Queues[qid]
	if q == nil {
		t.Fatalf("expected the queue to survive activation")
	}
	if len(q.PendingList) != 1 {
		t.Fatalf("expected the pending receive to survive activation, got %d", len(q.PendingList))
	}
	if q.PendingList[0].Source != source {
		t.Fatalf("expected the carried-over pending receive to keep its originating source")
	}

	exec.Apply(&types.MessageSendRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageSend}, Source: source},
		Dest:       types.Destination{Queue: types.Name("pending-survivor")},
		Message:    types.Message{Size: 5, Data: []byte("hello")},
	})
	res := mustRespond(t, conn)
	if res.Err != nil {
		t.Fatalf("unexpected error fulfilling the carried-over pending receive: %v", res.Err)
	}
	if string(res.Message.Data) != "hello" {
		t.Fatalf("expected the carried-over pending receiver to get the message, got %q", res.Message.Data)
	}
}

// TestSyncEngineCarriesOverReplyCorrelation covers spec §8 testable
// property 7: a ReplyEntry that survives a membership change must still
// route its eventual MessageReply back to the original caller, not a
// zeroed Source.
func TestSyncEngineCarriesOverReplyCorrelation(t *testing.T) {
	hub := NewLocalHub()
	transport := hub.Join(1)
	defer transport.Close()

	exec, _, ring := newTestExecutive(1)
	source := types.Source{NodeID: 1, ConnHandle: 1}
	conn := NewConnection(source, true)
	exec.Register(conn)
	openQueue(t, exec, conn, "reply-survivor", 0)

	exec.Apply(&types.MessageSendReceiveRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageSendReceive}, Source: source},
		Dest:       types.Destination{Queue: types.Name("reply-survivor")},
		Timeout:    time.Second,
		ReplySize:  32,
		Message:    types.Message{Size: 5, Data: []byte("hello")},
		SenderID:   types.NewSenderID(1, 1),
	})
	sendReceiveRes := mustRespond(t, conn)
	if sendReceiveRes.Err != nil {
		t.Fatalf("unexpected error on MessageSendReceive: %v", sendReceiveRes.Err)
	}
	senderID := sendReceiveRes.SenderID

	engine := NewSyncEngine(1, ring, exec.State(), exec, transport, noopLogger{})
	engine.OnMembershipChange(MembershipEvent{Type: MembershipRegular, Members: []types.NodeID{1}, RingID: 2})
	drainSync(t, transport, engine)

	reply, ok := exec.State().Replies[senderID]
	if !ok {
		t.Fatalf("expected the reply correlation to survive activation")
	}
	if reply.Source != source {
		t.Fatalf("expected the carried-over reply to keep its originating source, got %#v", reply.Source)
	}

	exec.Apply(&types.MessageReplyRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageReply}, Source: source},
		SenderID:   senderID,
		Message:    types.Message{Size: 3, Data: []byte("bye")},
	})
	replyAck := mustRespond(t, conn)
	if replyAck.Err != nil {
		t.Fatalf("unexpected error acking MessageReply: %v", replyAck.Err)
	}

	select {
	case cb := <-conn.Dispatches():
		if cb.Kind != CallbackMessageReceived || string(cb.Message.Data) != "bye" {
			t.Fatalf("expected a MessageReceived callback carrying the reply, got %#v", cb)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the reply to be delivered back to the original caller")
	}
}
