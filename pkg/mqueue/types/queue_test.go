package types

import "testing"

func TestCreationAttrsEqual(t *testing.T) {
	a := CreationAttrs{CreationFlags: CreationPersistent, Size: [numPriorities]uint64{1, 2, 3, 4}}
	b := CreationAttrs{CreationFlags: CreationPersistent, Size: [numPriorities]uint64{1, 2, 3, 4}}
	if !a.Equal(b) {
		t.Fatalf("expected %#v to equal %#v", a, b)
	}
	b.Size[0] = 99
	if a.Equal(b) {
		t.Fatalf("did not expect %#v to equal %#v", a, b)
	}
}

func TestCreationAttrsTotalSize(t *testing.T) {
	a := CreationAttrs{Size: [numPriorities]uint64{10, 20, 30, 40}}
	if got := a.TotalSize(); got != 100 {
		t.Fatalf("expected total size 100, got %d", got)
	}
}

func TestRefcountSetTotal(t *testing.T) {
	set := RefcountSet{1: 2, 2: 3}
	if got := set.Total(); got != 5 {
		t.Fatalf("expected total 5, got %d", got)
	}
}

func TestQueueRefcount(t *testing.T) {
	q := &Queue{RefcountSet: RefcountSet{1: 1, 2: 2}}
	if got := q.Refcount(); got != 3 {
		t.Fatalf("expected refcount 3, got %d", got)
	}
}

func TestPriorityAreaRoom(t *testing.T) {
	area := PriorityArea{QueueSize: 100, QueueUsed: 90}
	if !area.Room(10) {
		t.Fatalf("expected room for 10 bytes")
	}
	if area.Room(11) {
		t.Fatalf("did not expect room for 11 bytes")
	}
}

func TestNameCompareAndEqual(t *testing.T) {
	a := Name("queue-a")
	b := Name("queue-a")
	c := Name("queue-longer-name")
	if !a.Equal(b) {
		t.Fatalf("expected equal names")
	}
	if a.Equal(c) {
		t.Fatalf("did not expect equal names")
	}
	if a.Compare(c) >= 0 {
		t.Fatalf("expected shorter name to compare less than longer name")
	}
}

func TestGroupIndexOfAndMemberCount(t *testing.T) {
	g := &Group{QueueHead: []QueueID{1, 2, 3}}
	if g.MemberCount() != 3 {
		t.Fatalf("expected 3 members, got %d", g.MemberCount())
	}
	if g.IndexOf(2) != 1 {
		t.Fatalf("expected index 1 for queue 2, got %d", g.IndexOf(2))
	}
	if g.IndexOf(99) != -1 {
		t.Fatalf("expected -1 for missing member")
	}
}
