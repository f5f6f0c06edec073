package engine

import (
	"testing"

	"github.com/law-makers/rostercrawl/pkg/models"
)

func TestRecordStore_OrderAndDuplicates(t *testing.T) {
	s := NewRecordStore()
	a := models.Record{ProfileURL: "/a", FullName: "A"}
	b := models.Record{ProfileURL: "/b", FullName: "B"}

	s.Append(a)
	s.Append(b, a)

	if s.Len() != 3 {
		t.Fatalf("expected 3 records (duplicates kept), got %d", s.Len())
	}
	got := s.Snapshot()
	if got[0] != a || got[1] != b || got[2] != a {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestRecordStore_SnapshotIsCopy(t *testing.T) {
	s := NewRecordStore()
	s.Append(models.Record{FullName: "A"})

	snap := s.Snapshot()
	snap[0].FullName = "mutated"

	if s.Snapshot()[0].FullName != "A" {
		t.Error("mutating a snapshot must not change the store")
	}
}

func TestRecordStore_Drain(t *testing.T) {
	s := NewRecordStore()
	if got := s.Drain(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice from empty store, got %#v", got)
	}

	s.Append(models.Record{FullName: "A"}, models.Record{FullName: "B"})
	out := s.Drain()
	if len(out) != 2 {
		t.Fatalf("expected 2 drained records, got %d", len(out))
	}
	if s.Len() != 0 {
		t.Errorf("expected store to be empty after drain, got %d", s.Len())
	}
}
