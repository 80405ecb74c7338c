package core

import (
	"time"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
	"github.com/sony/gobreaker"
)

// Translator is the client-facing half of a node: it validates requests
// that can be rejected without consulting replicated state (BadFlags,
// oversize payloads), allocates SenderIDs for send-receive calls, and
// hands the resulting record to the Transport — mirroring the teacher's
// split between its Peer (client surface) and Unity (replicated core).
// Every call here runs on the caller's own goroutine; only Broadcast
// crosses into the transport.
type Translator struct {
	transport Transport
	state     *State
	local     types.NodeID
	breaker   *gobreaker.CircuitBreaker
}

// NewTranslator builds a Translator wrapping transport. The circuit
// breaker trips on repeated Broadcast failures (spec §5's back-pressure
// requirement) and, once open, turns every call into an immediate
// ErrTryAgain instead of blocking on a transport that is not accepting
// sends.
func NewTranslator(transport Transport, state *State) *Translator {
	settings := gobreaker.Settings{
		Name:        "mqueue-translator",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &Translator{
		transport: transport,
		state:     state,
		local:     transport.LocalID(),
		breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

// broadcast runs record through the send-ok gate (spec §5: TryAgain is
// the sole flow-control signal) and, if the gate is open, submits it.
func (t *Translator) broadcast(record types.Record) error {
	if !t.transport.SendOK() {
		return types.ErrTryAgain
	}
	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.transport.Broadcast(record)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return types.ErrTryAgain
	}
	return err
}

func (t *Translator) source(conn types.ConnHandle) types.Source {
	return types.Source{NodeID: t.local, ConnHandle: conn}
}

// QueueOpen submits a QueueOpen/QueueOpenAsync record (spec §4.1).
func (t *Translator) QueueOpen(conn types.ConnHandle, name types.Name, flags types.OpenFlags, attrs types.CreationAttrs, hasAttrs bool, timeout time.Duration, async bool) error {
	if len(name) == 0 || len(name) > types.MaxNameLength {
		return types.ErrBadFlags
	}
	if flags.Has(types.OpenCreate) && !hasAttrs {
		return types.ErrBadFlags
	}
	id := types.RecordQueueOpen
	if async {
		id = types.RecordQueueOpenAsync
	}
	return t.broadcast(&types.QueueOpenRecord{
		ExecHeader:     types.ExecHeader{Header: types.Header{ID: id}, Source: t.source(conn)},
		Name:           name,
		CreateAttrs:    attrs,
		HasCreateAttrs: hasAttrs,
		Flags:          flags,
		Timeout:        timeout,
	})
}

// QueueClose submits a QueueClose record.
func (t *Translator) QueueClose(conn types.ConnHandle, name types.Name, id types.QueueID) error {
	return t.broadcast(&types.QueueCloseRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueClose}, Source: t.source(conn)},
		Name:       name,
		ID_:        id,
	})
}

// QueueStatusGet submits a QueueStatusGet record.
func (t *Translator) QueueStatusGet(conn types.ConnHandle, name types.Name) error {
	return t.broadcast(&types.QueueStatusGetRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueStatusGet}, Source: t.source(conn)},
		Name:       name,
	})
}

// QueueRetentionTimeSet submits a QueueRetentionTimeSet record.
func (t *Translator) QueueRetentionTimeSet(conn types.ConnHandle, name types.Name, id types.QueueID, retention time.Duration) error {
	if retention < 0 {
		return types.ErrBadFlags
	}
	return t.broadcast(&types.QueueRetentionTimeSetRecord{
		ExecHeader:    types.ExecHeader{Header: types.Header{ID: types.RecordQueueRetentionTimeSet}, Source: t.source(conn)},
		Name:          name,
		ID_:           id,
		RetentionTime: retention,
	})
}

// QueueUnlink submits a QueueUnlink record.
func (t *Translator) QueueUnlink(conn types.ConnHandle, name types.Name) error {
	return t.broadcast(&types.QueueUnlinkRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueUnlink}, Source: t.source(conn)},
		Name:       name,
	})
}

// QueueGroupCreate submits a QueueGroupCreate record.
func (t *Translator) QueueGroupCreate(conn types.ConnHandle, name types.Name, policy types.DispatchPolicy) error {
	if len(name) == 0 || len(name) > types.MaxNameLength {
		return types.ErrBadFlags
	}
	return t.broadcast(&types.QueueGroupCreateRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueGroupCreate}, Source: t.source(conn)},
		Name:       name,
		Policy:     policy,
	})
}

// QueueGroupInsert submits a QueueGroupInsert record.
func (t *Translator) QueueGroupInsert(conn types.ConnHandle, group, queue types.Name) error {
	return t.broadcast(&types.QueueGroupInsertRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueGroupInsert}, Source: t.source(conn)},
		GroupName:  group,
		QueueName:  queue,
	})
}

// QueueGroupRemove submits a QueueGroupRemove record.
func (t *Translator) QueueGroupRemove(conn types.ConnHandle, group, queue types.Name) error {
	return t.broadcast(&types.QueueGroupRemoveRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueGroupRemove}, Source: t.source(conn)},
		GroupName:  group,
		QueueName:  queue,
	})
}

// QueueGroupDelete submits a QueueGroupDelete record.
func (t *Translator) QueueGroupDelete(conn types.ConnHandle, group types.Name) error {
	return t.broadcast(&types.QueueGroupDeleteRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueGroupDelete}, Source: t.source(conn)},
		GroupName:  group,
	})
}

// MessageSend submits a MessageSend/MessageSendAsync record.
func (t *Translator) MessageSend(conn types.ConnHandle, dest types.Destination, msg types.Message, timeout time.Duration, async bool, ackFlags types.AckFlags, invocation uint64) error {
	if msg.Size > types.MaxMessageSize || uint64(len(msg.Data)) != msg.Size {
		return types.ErrTooBig
	}
	if !msg.Priority.Valid() {
		return types.ErrBadFlags
	}
	id := types.RecordMessageSend
	if async {
		id = types.RecordMessageSendAsync
	}
	return t.broadcast(&types.MessageSendRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: id}, Source: t.source(conn)},
		Dest:       dest,
		Timeout:    timeout,
		Message:    msg,
		AckFlags:   ackFlags,
		Invocation: invocation,
	})
}

// MessageGet submits a MessageGet record.
func (t *Translator) MessageGet(conn types.ConnHandle, name types.Name, id types.QueueID, timeout time.Duration) error {
	return t.broadcast(&types.MessageGetRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageGet}, Source: t.source(conn)},
		Name:       name,
		ID_:        id,
		Timeout:    timeout,
	})
}

// MessageCancel submits a MessageCancel record.
func (t *Translator) MessageCancel(conn types.ConnHandle, name types.Name, id types.QueueID) error {
	return t.broadcast(&types.MessageCancelRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageCancel}, Source: t.source(conn)},
		Name:       name,
		ID_:        id,
	})
}

// MessageSendReceive allocates a SenderID and submits a
// MessageSendReceive record (spec §4.2, GLOSSARY).
func (t *Translator) MessageSendReceive(conn types.ConnHandle, dest types.Destination, msg types.Message, timeout time.Duration, replySize uint64) (types.SenderID, error) {
	if msg.Size > types.MaxMessageSize || uint64(len(msg.Data)) != msg.Size {
		return 0, types.ErrTooBig
	}
	if replySize > types.MaxReplySize {
		return 0, types.ErrTooBig
	}
	counter, ok := t.state.NextSenderCounter(t.local)
	if !ok {
		return 0, types.ErrNoResources
	}
	senderID := types.NewSenderID(t.local, counter)
	err := t.broadcast(&types.MessageSendReceiveRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordMessageSendReceive}, Source: t.source(conn)},
		Dest:       dest,
		Timeout:    timeout,
		ReplySize:  replySize,
		Message:    msg,
		SenderID:   senderID,
	})
	if err != nil {
		return 0, err
	}
	return senderID, nil
}

// MessageReply submits a MessageReply/MessageReplyAsync record.
func (t *Translator) MessageReply(conn types.ConnHandle, senderID types.SenderID, msg types.Message, timeout time.Duration, async bool, ackFlags types.AckFlags) error {
	id := types.RecordMessageReply
	if async {
		id = types.RecordMessageReplyAsync
	}
	return t.broadcast(&types.MessageReplyRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: id}, Source: t.source(conn)},
		SenderID:   senderID,
		Message:    msg,
		Timeout:    timeout,
		AckFlags:   ackFlags,
	})
}

// QueueCapacityThresholdsSet submits a threshold-set record.
func (t *Translator) QueueCapacityThresholdsSet(conn types.ConnHandle, name types.Name, thresholds [types.NumPriorities]types.CapacityThresholds) error {
	return t.broadcast(&types.QueueCapacityThresholdsRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueCapacityThresholdsSet}, Source: t.source(conn)},
		Name:       name,
		Thresholds: thresholds,
	})
}

// QueueCapacityThresholdsGet submits a threshold-get record.
func (t *Translator) QueueCapacityThresholdsGet(conn types.ConnHandle, name types.Name) error {
	return t.broadcast(&types.QueueCapacityThresholdsRecord{
		ExecHeader: types.ExecHeader{Header: types.Header{ID: types.RecordQueueCapacityThresholdsGet}, Source: t.source(conn)},
		Name:       name,
	})
}
