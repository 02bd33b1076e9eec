package retention

import (
	"sync"
	"testing"
	"time"

	"github.com/dialview/icws-monitor/internal/push"
	"github.com/dialview/icws-monitor/internal/storage"
	"github.com/rs/zerolog"
)

type sweepStore struct {
	storage.NoopStore
	mu      sync.Mutex
	cutoffs []time.Time
}

func (s *sweepStore) DeleteInteractionsBefore(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	return 1, nil
}

type cleanupSpy struct {
	mu    sync.Mutex
	calls int
}

func (c *cleanupSpy) RequestCleanup() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func TestSweepUsesSevenDayCutoff(t *testing.T) {
	st := &sweepStore{}
	ledger := push.NewLedger()
	spy := &cleanupSpy{}

	job := NewJob(st, ledger, spy, zerolog.Nop())
	now := time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC)
	job.SetClock(func() time.Time { return now })

	ledger.Record("old", now.AddDate(0, 0, -10))
	ledger.Record("recent", now.AddDate(0, 0, -2))

	job.Sweep()

	want := now.AddDate(0, 0, -Days)
	if len(st.cutoffs) != 1 || !st.cutoffs[0].Equal(want) {
		t.Fatalf("cutoffs = %v, want [%v]", st.cutoffs, want)
	}
	if _, ok := ledger.Get("old"); ok {
		t.Fatal("old ledger entry should be removed")
	}
	if _, ok := ledger.Get("recent"); !ok {
		t.Fatal("recent ledger entry should remain")
	}
	if spy.calls != 1 {
		t.Fatalf("cleanup requests = %d, want 1", spy.calls)
	}
}
