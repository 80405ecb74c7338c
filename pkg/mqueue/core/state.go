package core

import (
	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

// State is the single value holding every process-wide replicated list
// plus the counters that mint new ids — DESIGN NOTES §9's "encapsulate
// in a single ServiceState value threaded through every handler". The
// single-threaded cooperative event loop (spec §5) means none of this
// needs locking; encapsulation exists purely for testability, exactly as
// the design notes say.
type State struct {
	Queues      map[types.QueueID]*types.Queue
	QueuesByName map[string]types.QueueID
	Groups      map[types.GroupID]*types.Group
	GroupsByName map[string]types.GroupID
	Replies     map[types.SenderID]*types.ReplyEntry
	Cleanup     map[types.Source]*types.CleanupEntry
	Tracks      []*types.TrackEntry

	nextQueueID    types.QueueID
	nextGroupID    types.GroupID
	senderCounters map[types.NodeID]uint32
}

// NewState builds an empty replicated state image.
func NewState() *State {
	return &State{
		Queues:         make(map[types.QueueID]*types.Queue),
		QueuesByName:   make(map[string]types.QueueID),
		Groups:         make(map[types.GroupID]*types.Group),
		GroupsByName:   make(map[string]types.GroupID),
		Replies:        make(map[types.SenderID]*types.ReplyEntry),
		Cleanup:        make(map[types.Source]*types.CleanupEntry),
		senderCounters: make(map[types.NodeID]uint32),
	}
}

// QueueByName looks up a live queue by name; returns nil if none exists.
func (s *State) QueueByName(name types.Name) *types.Queue {
	id, ok := s.QueuesByName[string(name)]
	if !ok {
		return nil
	}
	return s.Queues[id]
}

// GroupByName looks up a live group by name; returns nil if none exists.
func (s *State) GroupByName(name types.Name) *types.Group {
	id, ok := s.GroupsByName[string(name)]
	if !ok {
		return nil
	}
	return s.Groups[id]
}

// NewQueueID mints the next process-global queue id. This counter is
// never reused, even across unlink/recreate of the same name (spec §3:
// "queue_id ... survives across opens of the same name").
func (s *State) NewQueueID() types.QueueID {
	s.nextQueueID++
	return s.nextQueueID
}

// NewGroupID mints the next process-global group id.
func (s *State) NewGroupID() types.GroupID {
	s.nextGroupID++
	return s.nextGroupID
}

// InsertQueue adds a newly created queue to both arenas.
func (s *State) InsertQueue(q *types.Queue) {
	s.Queues[q.ID] = q
	s.QueuesByName[string(q.Name)] = q.ID
}

// RemoveQueue destroys a queue: it is removed from both arenas and, if
// it belonged to a group, detached from it too (spec §3 lifecycle).
func (s *State) RemoveQueue(id types.QueueID) {
	q, ok := s.Queues[id]
	if !ok {
		return
	}
	if q.Group != types.NoGroup {
		if g, ok := s.Groups[q.Group]; ok {
			s.detachMember(g, id)
		}
	}
	delete(s.Queues, id)
	delete(s.QueuesByName, string(q.Name))
}

func (s *State) detachMember(g *types.Group, id types.QueueID) {
	idx := g.IndexOf(id)
	if idx < 0 {
		return
	}
	if g.NextQueue == id {
		s.advanceCursor(g)
	}
	g.QueueHead = append(g.QueueHead[:idx], g.QueueHead[idx+1:]...)
	if len(g.QueueHead) == 0 {
		g.NextQueue = types.NoQueue
	}
}

// advanceCursor moves a group's round-robin cursor to the member after
// the current one, wrapping around (spec §4.1's round-robin cursor
// discipline). Called before the pointed-to member is actually removed.
func (s *State) advanceCursor(g *types.Group) {
	idx := g.IndexOf(g.NextQueue)
	if idx < 0 || len(g.QueueHead) == 0 {
		g.NextQueue = types.NoQueue
		return
	}
	next :=(idx + 1) % len(g.QueueHead)
	if next == idx {
		next = (next + 1) % len(g.QueueHead)
	}
	g.NextQueue = g.QueueHead[next]
}

// InsertGroup adds a newly created group.
func (s *State) InsertGroup(g *types.Group) {
	s.Groups[g.ID] = g
	s.GroupsByName[string(g.Name)] = g.ID
}

// RemoveGroup destroys a group, detaching every member's back-reference
// but leaving the member queues alive (spec §3 lifecycle).
func (s *State) RemoveGroup(id types.GroupID) {
	g, ok := s.Groups[id]
	if !ok {
		return
	}
	for _, qid := range g.QueueHead {
		if q, ok := s.Queues[qid]; ok {
			q.Group = types.NoGroup
		}
	}
	delete(s.Groups, id)
	delete(s.GroupsByName, string(g.Name))
}

// NextSenderCounter mints the next per-node counter for a SenderID
// issued by origin (spec GLOSSARY). DESIGN NOTES §9 flags counter
// saturation as an open question this repository resolves by erroring
// rather than silently wrapping — see DESIGN.md.
func (s *State) NextSenderCounter(origin types.NodeID) (uint32, bool) {
	c := s.senderCounters[origin]
	if c == ^uint32(0) {
		return 0, false
	}
	c++
	s.senderCounters[origin] = c
	return c, true
}

// CleanupFor returns (creating if necessary) the CleanupEntry tracking
// every queue a connection has opened (spec §3).
func (s *State) CleanupFor(source types.Source) *types.CleanupEntry {
	c, ok := s.Cleanup[source]
	if !ok {
		c = &types.CleanupEntry{Source: source}
		s.Cleanup[source] = c
	}
	return c
}
