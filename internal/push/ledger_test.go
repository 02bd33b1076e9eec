package push

import (
	"testing"
	"time"
)

func TestLedgerRecordIsIdempotentOncePushed(t *testing.T) {
	l := NewLedger()
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	entry, recorded := l.Record("i-1", now)
	if !recorded || entry.IsPushed {
		t.Fatalf("first record = %+v recorded=%v", entry, recorded)
	}
	l.MarkPushed([]string{"i-1"})

	entry, recorded = l.Record("i-1", now.Add(time.Hour))
	if recorded {
		t.Fatal("re-record of a pushed id must not be recorded")
	}
	if !entry.IsPushed || !entry.DateAdded.Equal(now) {
		t.Fatalf("re-record returned %+v, want original pushed entry", entry)
	}
}

func TestLedgerRemoveOlderThan(t *testing.T) {
	l := NewLedger()
	old := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	l.Record("old", old)
	l.Record("recent", recent)

	removed := l.RemoveOlderThan(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := l.Get("old"); ok {
		t.Fatal("old entry should be gone")
	}
	if _, ok := l.Get("recent"); !ok {
		t.Fatal("recent entry should remain")
	}
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
}
