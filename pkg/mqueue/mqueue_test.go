package mqueue_test

import (
	"testing"
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue"
	"github.com/jabolina/go-mqueue/pkg/mqueue/core"
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

type discardLogger struct{}

func (discardLogger) Info(...interface{})            {}
func (discardLogger) Infof(string, ...interface{})   {}
func (discardLogger) Warn(...interface{})            {}
func (discardLogger) Warnf(string, ...interface{})   {}
func (discardLogger) Error(...interface{})           {}
func (discardLogger) Errorf(string, ...interface{})  {}
func (discardLogger) Debug(...interface{})           {}
func (discardLogger) Debugf(string, ...interface{})  {}
func (discardLogger) Fatal(...interface{})           {}
func (discardLogger) Fatalf(string, ...interface{})  {}
func (discardLogger) ToggleDebug(v bool) bool        { return v }

func newService(hub *core.LocalHub, id types.NodeID) *mqueue.Service {
	return mqueue.NewService(hub.Join(id), discardLogger{})
}

func TestServiceQueueOpenSendGet(t *testing.T) {
	hub := core.NewLocalHub()
	svc := newService(hub, 1)
	defer svc.Close()

	client := svc.Connect()
	defer client.Close()

	attrs := &types.CreationAttrs{Size: [types.NumPriorities]uint64{4096, 4096, 4096, 4096}}
	qid, err := client.QueueOpen([]byte("orders"), types.OpenCreate, attrs, time.Second, false)
	if err != nil {
		t.Fatalf("QueueOpen: %v", err)
	}
	if qid == 0 {
		t.Fatalf("expected a non-zero queue id")
	}

	msg := types.Message{Type: 1, Priority: 0, Size: 5, Data: []byte("hello")}
	dest := types.Destination{Queue: types.Name("orders")}
	if err := client.MessageSend(dest, msg, time.Second, false, 0, 0); err != nil {
		t.Fatalf("MessageSend: %v", err)
	}

	got, err := client.MessageGet([]byte("orders"), qid, time.Second)
	if err != nil {
		t.Fatalf("MessageGet: %v", err)
	}
	if string(got.Data) != "hello" {
		t.Fatalf("expected to get back the sent message, got %q", got.Data)
	}
}

func TestServiceMessageSendReceiveReply(t *testing.T) {
	hub := core.NewLocalHub()
	svc := newService(hub, 1)
	defer svc.Close()

	requester := svc.Connect()
	defer requester.Close()
	replier := svc.Connect()
	defer replier.Close()

	attrs := &types.CreationAttrs{Size: [types.NumPriorities]uint64{4096, 4096, 4096, 4096}}
	qid, err := replier.QueueOpen([]byte("rpc"), types.OpenCreate, attrs, time.Second, false)
	if err != nil {
		t.Fatalf("QueueOpen: %v", err)
	}

	dest := types.Destination{Queue: types.Name("rpc")}
	request := types.Message{Type: 7, Size: 4, Data: []byte("ping")}

	senderID, err := requester.MessageSendReceive(dest, request, time.Second, 32)
	if err != nil {
		t.Fatalf("MessageSendReceive: %v", err)
	}

	received, err := replier.MessageGet([]byte("rpc"), qid, time.Second)
	if err != nil {
		t.Fatalf("MessageGet: %v", err)
	}
	if string(received.Data) != "ping" {
		t.Fatalf("expected the replier to see the request, got %q", received.Data)
	}

	reply := types.Message{Type: 7, Size: 4, Data: []byte("pong")}
	if err := replier.MessageReply(senderID, reply, time.Second, false, 0); err != nil {
		t.Fatalf("MessageReply: %v", err)
	}
}

func TestServiceQueueGroupDispatchRoundRobin(t *testing.T) {
	hub := core.NewLocalHub()
	svc := newService(hub, 1)
	defer svc.Close()

	owner := svc.Connect()
	defer owner.Close()

	attrs := &types.CreationAttrs{Size: [types.NumPriorities]uint64{4096, 4096, 4096, 4096}}
	q1, err := owner.QueueOpen([]byte("worker-1"), types.OpenCreate, attrs, time.Second, false)
	if err != nil {
		t.Fatalf("QueueOpen worker-1: %v", err)
	}
	q2, err := owner.QueueOpen([]byte("worker-2"), types.OpenCreate, attrs, time.Second, false)
	if err != nil {
		t.Fatalf("QueueOpen worker-2: %v", err)
	}

	if _, err := owner.QueueGroupCreate([]byte("workers"), types.RoundRobin); err != nil {
		t.Fatalf("QueueGroupCreate: %v", err)
	}
	if err := owner.QueueGroupInsert([]byte("workers"), []byte("worker-1")); err != nil {
		t.Fatalf("QueueGroupInsert worker-1: %v", err)
	}
	if err := owner.QueueGroupInsert([]byte("workers"), []byte("worker-2")); err != nil {
		t.Fatalf("QueueGroupInsert worker-2: %v", err)
	}

	dest := types.Destination{Group: types.Name("workers"), IsGroup: true}
	for i := 0; i < 2; i++ {
		msg := types.Message{Type: 1, Size: 1, Data: []byte{byte(i)}}
		if err := owner.MessageSend(dest, msg, time.Second, false, 0, 0); err != nil {
			t.Fatalf("MessageSend %d: %v", i, err)
		}
	}

	first, err := owner.MessageGet([]byte("worker-1"), q1, time.Millisecond)
	if err != nil {
		t.Fatalf("expected worker-1 to receive the first dispatch: %v", err)
	}
	if first.Data[0] != 0 {
		t.Fatalf("expected worker-1 to get message 0, got %v", first.Data)
	}

	second, err := owner.MessageGet([]byte("worker-2"), q2, time.Millisecond)
	if err != nil {
		t.Fatalf("expected worker-2 to receive the second dispatch: %v", err)
	}
	if second.Data[0] != 1 {
		t.Fatalf("expected worker-2 to get message 1, got %v", second.Data)
	}
}

func TestServiceQueueCapacityThresholds(t *testing.T) {
	hub := core.NewLocalHub()
	svc := newService(hub, 1)
	defer svc.Close()

	client := svc.Connect()
	defer client.Close()

	attrs := &types.CreationAttrs{Size: [types.NumPriorities]uint64{4096, 4096, 4096, 4096}}
	if _, err := client.QueueOpen([]byte("metered"), types.OpenCreate, attrs, time.Second, false); err != nil {
		t.Fatalf("QueueOpen: %v", err)
	}

	var want [types.NumPriorities]types.CapacityThresholds
	want[0] = types.CapacityThresholds{High: 3072, Low: 1024}

	if err := client.QueueCapacityThresholdsSet([]byte("metered"), want); err != nil {
		t.Fatalf("QueueCapacityThresholdsSet: %v", err)
	}

	got, err := client.QueueCapacityThresholdsGet([]byte("metered"))
	if err != nil {
		t.Fatalf("QueueCapacityThresholdsGet: %v", err)
	}
	if got != want {
		t.Fatalf("expected thresholds to round-trip, got %+v want %+v", got, want)
	}
}

func TestServiceQueueGroupTrackCurrent(t *testing.T) {
	hub := core.NewLocalHub()
	svc := newService(hub, 1)
	defer svc.Close()

	owner := svc.Connect()
	defer owner.Close()
	tracker := svc.Connect()
	defer tracker.Close()

	if _, err := owner.QueueGroupCreate([]byte("topic"), types.RoundRobin); err != nil {
		t.Fatalf("QueueGroupCreate: %v", err)
	}

	tracker.QueueGroupTrack([]byte("topic"), types.TrackCurrent)

	select {
	case cb := <-tracker.Dispatches():
		if cb.Kind != core.CallbackGroupTrack {
			t.Fatalf("expected a group-track callback, got %v", cb.Kind)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the TrackCurrent callback")
	}

	tracker.QueueGroupTrackStop([]byte("topic"))
}

func TestLimitAndMetadataSizeGet(t *testing.T) {
	limits := mqueue.LimitGet()
	if limits.MaxQueues == 0 {
		t.Fatalf("expected a non-zero MaxQueues in the default limits")
	}
	sizes := mqueue.MetadataSizeGet()
	if sizes.Queue == 0 || sizes.QueueGroup == 0 || sizes.MessageEntry == 0 {
		t.Fatalf("expected every metadata size to be populated, got %+v", sizes)
	}
}
