// Package health tracks per-config delivery health in memory and flushes it
// to the HealthStore periodically: flat sent/delivered/failed counters plus
// an EWMA-smoothed average response time and a derived status enum.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

// ewmaAlpha weights the most recent response time at 30%.
const ewmaAlpha = 0.3

type entry struct {
	mu    sync.Mutex
	stats domain.WebhookHealthStats
}

// Aggregator holds one entry per webhook config, guarded independently so
// RecordSuccess/RecordFailure for different configs never contend.
type Aggregator struct {
	store interfaces.HealthStore
	log   *logger.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

func New(store interfaces.HealthStore) *Aggregator {
	return &Aggregator{
		store:   store,
		log:     logger.New("health"),
		entries: make(map[string]*entry),
	}
}

func (a *Aggregator) entryFor(configID string) *entry {
	a.mu.RLock()
	e, ok := a.entries[configID]
	a.mu.RUnlock()
	if ok {
		return e
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[configID]; ok {
		return e
	}
	e = &entry{stats: domain.WebhookHealthStats{WebhookConfigID: configID}}
	a.entries[configID] = e
	return e
}

// RecordSuccess updates the running totals and the EWMA-smoothed average
// response time for configID after a successful delivery.
func (a *Aggregator) RecordSuccess(configID string, durationMs int) {
	e := a.entryFor(configID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.TotalSent++
	e.stats.TotalDelivered++
	now := time.Now()
	e.stats.LastSuccessTime = &now

	if e.stats.TotalDelivered == 1 {
		e.stats.AvgResponseTimeMs = float64(durationMs)
	} else {
		e.stats.AvgResponseTimeMs = ewmaAlpha*float64(durationMs) + (1-ewmaAlpha)*e.stats.AvgResponseTimeMs
	}
}

// RecordFailure updates the running totals after a delivery attempt that
// did not succeed, whether terminal or retryable.
func (a *Aggregator) RecordFailure(configID string, deliveryErr error) {
	e := a.entryFor(configID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.TotalSent++
	e.stats.TotalFailed++
	now := time.Now()
	e.stats.LastErrorTime = &now
	if deliveryErr != nil {
		e.stats.LastError = deliveryErr.Error()
	}
}

// Snapshot returns a copy of the current stats for configID, or the zero
// value (status UNKNOWN) if nothing has been recorded yet.
func (a *Aggregator) Snapshot(configID string) domain.WebhookHealthStats {
	e := a.entryFor(configID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Flush persists every tracked config's current snapshot to the store. It
// is meant to be called on a ticker from cmd/server's wiring, not inline
// with the hot delivery path.
func (a *Aggregator) Flush(ctx context.Context) {
	a.mu.RLock()
	ids := make([]string, 0, len(a.entries))
	for id := range a.entries {
		ids = append(ids, id)
	}
	a.mu.RUnlock()

	for _, id := range ids {
		snap := a.Snapshot(id)
		if err := a.store.Upsert(ctx, &snap); err != nil {
			a.log.Error("health: failed to flush stats for " + id + ": " + err.Error())
		}
	}
}

// Run periodically flushes until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.Flush(context.Background())
			return
		case <-ticker.C:
			a.Flush(ctx)
		}
	}
}
