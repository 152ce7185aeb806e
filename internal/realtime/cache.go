package realtime

import (
	"context"
	"sync"
	"time"

	"bus-tracker/internal/models"
	"bus-tracker/pkg/logger"
)

type cacheEntry struct {
	record   *models.PositionRecord
	storedAt time.Time
}

// PositionCache holds the most recent reported position per vehicle.
// An update fully replaces the prior record for its vehicle; there is
// no field-level merge.
type PositionCache struct {
	mu      sync.RWMutex
	entries map[int]cacheEntry
}

func NewPositionCache() *PositionCache {
	return &PositionCache{
		entries: make(map[int]cacheEntry),
	}
}

// Upsert stores the record and returns the one it replaced, if any,
// so callers can notice a route reassignment.
func (c *PositionCache) Upsert(record *models.PositionRecord) *models.PositionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prev *models.PositionRecord
	if entry, ok := c.entries[record.VehicleID]; ok {
		prev = entry.record
	}
	c.entries[record.VehicleID] = cacheEntry{record: record, storedAt: time.Now()}
	return prev
}

// Snapshot returns every cached record currently serving the route.
func (c *PositionCache) Snapshot(routeID int) []*models.PositionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var records []*models.PositionRecord
	for _, entry := range c.entries {
		if entry.record.RouteID == routeID {
			records = append(records, entry.record)
		}
	}
	return records
}

func (c *PositionCache) Get(vehicleID int) (*models.PositionRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[vehicleID]
	if !ok {
		return nil, false
	}
	return entry.record, true
}

func (c *PositionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictStale removes entries for vehicles that have not reported
// within ttl and returns how many were dropped.
func (c *PositionCache) EvictStale(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for vehicleID, entry := range c.entries {
		if entry.storedAt.Before(cutoff) {
			delete(c.entries, vehicleID)
			evicted++
		}
	}
	return evicted
}

// StartEviction sweeps the cache until the context is cancelled. A
// non-positive ttl disables eviction entirely; entries then persist
// until process restart.
func (c *PositionCache) StartEviction(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.EvictStale(ttl); n > 0 {
					logger.Debug("Evicted %d stale position entries", n)
				}
			}
		}
	}()
}
