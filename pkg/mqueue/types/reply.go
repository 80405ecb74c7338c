package types

import "time"

// ReplyEntry is an open send-receive correlation (spec §3, GLOSSARY). It
// is created when a MessageSendReceive is delivered and destroyed on a
// matching MessageReply/MessageReplyAsync or on SendReceiveTimeout.
// Timeout is the full duration the entry was armed with, kept so a
// synchronization round can re-arm a fresh timer for any entry that
// survives a membership change (spec §4.3).
type ReplyEntry struct {
	SenderID       SenderID
	Source         Source
	ReplySizeLimit uint64
	Timeout        time.Duration
	TimerHandle    TimerHandle
}

// CleanupEntry records every queue one IPC connection has opened, so an
// implicit QueueClose can be emitted for each on disconnect (spec §3).
type CleanupEntry struct {
	Source Source
	Queues []QueueID
}

// Remove drops id from the cleanup entry's queue list, if present.
func (c *CleanupEntry) Remove(id QueueID) {
	for i, q := range c.Queues {
		if q == id {
			c.Queues = append(c.Queues[:i], c.Queues[i+1:]...)
			return
		}
	}
}
