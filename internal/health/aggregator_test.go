package health

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jangulo01/webhookd/internal/domain"
)

type fakeHealthStore struct {
	mu    sync.Mutex
	saved map[string]domain.WebhookHealthStats
}

func newFakeHealthStore() *fakeHealthStore {
	return &fakeHealthStore{saved: make(map[string]domain.WebhookHealthStats)}
}

func (f *fakeHealthStore) Upsert(ctx context.Context, stats *domain.WebhookHealthStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[stats.WebhookConfigID] = *stats
	return nil
}

func (f *fakeHealthStore) GetByConfigID(ctx context.Context, configID string) (*domain.WebhookHealthStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.saved[configID]
	if !ok {
		return nil, errors.New("not found")
	}
	return &s, nil
}

func TestAggregator_RecordSuccess_UpdatesTotals(t *testing.T) {
	a := New(newFakeHealthStore())
	a.RecordSuccess("cfg-1", 100)
	a.RecordSuccess("cfg-1", 200)

	snap := a.Snapshot("cfg-1")
	if snap.TotalSent != 2 || snap.TotalDelivered != 2 {
		t.Errorf("snapshot = %+v, expected TotalSent=2 TotalDelivered=2", snap)
	}
	if snap.LastSuccessTime == nil {
		t.Error("expected LastSuccessTime to be set")
	}
}

func TestAggregator_RecordSuccess_FirstSampleSetsAvgDirectly(t *testing.T) {
	a := New(newFakeHealthStore())
	a.RecordSuccess("cfg-1", 150)

	snap := a.Snapshot("cfg-1")
	if snap.AvgResponseTimeMs != 150 {
		t.Errorf("AvgResponseTimeMs = %v, expected 150 for the first sample", snap.AvgResponseTimeMs)
	}
}

func TestAggregator_RecordSuccess_EWMASmoothing(t *testing.T) {
	a := New(newFakeHealthStore())
	a.RecordSuccess("cfg-1", 100)
	a.RecordSuccess("cfg-1", 200)

	// second sample: 0.3*200 + 0.7*100 = 130
	snap := a.Snapshot("cfg-1")
	want := 130.0
	if snap.AvgResponseTimeMs != want {
		t.Errorf("AvgResponseTimeMs = %v, expected %v", snap.AvgResponseTimeMs, want)
	}
}

func TestAggregator_RecordFailure_UpdatesTotalsAndLastError(t *testing.T) {
	a := New(newFakeHealthStore())
	a.RecordFailure("cfg-1", errors.New("connection refused"))

	snap := a.Snapshot("cfg-1")
	if snap.TotalSent != 1 || snap.TotalFailed != 1 {
		t.Errorf("snapshot = %+v, expected TotalSent=1 TotalFailed=1", snap)
	}
	if snap.LastError != "connection refused" {
		t.Errorf("LastError = %q, expected %q", snap.LastError, "connection refused")
	}
	if snap.LastErrorTime == nil {
		t.Error("expected LastErrorTime to be set")
	}
}

func TestAggregator_Snapshot_UnknownConfigIsZeroValue(t *testing.T) {
	a := New(newFakeHealthStore())
	snap := a.Snapshot("never-seen")
	if snap.Status() != domain.HealthUnknown {
		t.Errorf("Status() for untracked config = %v, expected UNKNOWN", snap.Status())
	}
}

func TestAggregator_Flush_PersistsAllTrackedConfigs(t *testing.T) {
	store := newFakeHealthStore()
	a := New(store)
	a.RecordSuccess("cfg-1", 100)
	a.RecordFailure("cfg-2", errors.New("boom"))

	a.Flush(context.Background())

	if _, err := store.GetByConfigID(context.Background(), "cfg-1"); err != nil {
		t.Errorf("expected cfg-1 to be flushed: %v", err)
	}
	if _, err := store.GetByConfigID(context.Background(), "cfg-2"); err != nil {
		t.Errorf("expected cfg-2 to be flushed: %v", err)
	}
}

func TestAggregator_EntriesAreIndependentPerConfig(t *testing.T) {
	a := New(newFakeHealthStore())
	a.RecordSuccess("cfg-1", 100)
	a.RecordFailure("cfg-2", errors.New("boom"))

	s1 := a.Snapshot("cfg-1")
	s2 := a.Snapshot("cfg-2")
	if s1.TotalDelivered != 1 || s1.TotalFailed != 0 {
		t.Errorf("cfg-1 snapshot = %+v, expected unaffected by cfg-2 failure", s1)
	}
	if s2.TotalDelivered != 0 || s2.TotalFailed != 1 {
		t.Errorf("cfg-2 snapshot = %+v, expected unaffected by cfg-1 success", s2)
	}
}
