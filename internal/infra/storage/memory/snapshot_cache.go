package memory

import (
	"context"
	"sync"
	"time"

	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

type snapshot struct {
	intervals []domainavailability.BookedInterval
	expires   time.Time
}

// SnapshotCache memoizes booked intervals per property and horizon for a
// short TTL. Entries are dropped early when the booking service announces a
// change for the property.
type SnapshotCache struct {
	next domainavailability.Source
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[domainavailability.PropertyID]map[string]snapshot

	// generations is bumped by Invalidate; a fetch that started under an
	// older generation is returned but not cached.
	generations map[domainavailability.PropertyID]uint64
}

func NewSnapshotCache(next domainavailability.Source, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		next:        next,
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[domainavailability.PropertyID]map[string]snapshot),
		generations: make(map[domainavailability.PropertyID]uint64),
	}
}

func (c *SnapshotCache) BookedIntervals(ctx context.Context, q domainavailability.Query) ([]domainavailability.BookedInterval, error) {
	if c.ttl <= 0 {
		return c.next.BookedIntervals(ctx, q)
	}
	key := daterange.Key(q.Horizon.CheckIn) + "/" + daterange.Key(q.Horizon.CheckOut)
	now := c.now()

	c.mu.Lock()
	if snap, ok := c.entries[q.PropertyID][key]; ok && now.Before(snap.expires) {
		c.mu.Unlock()
		return snap.intervals, nil
	}
	gen := c.generations[q.PropertyID]
	c.mu.Unlock()

	intervals, err := c.next.BookedIntervals(ctx, q)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[q.PropertyID] != gen {
		return intervals, nil
	}
	byHorizon, ok := c.entries[q.PropertyID]
	if !ok {
		byHorizon = make(map[string]snapshot)
		c.entries[q.PropertyID] = byHorizon
	}
	byHorizon[key] = snapshot{intervals: intervals, expires: now.Add(c.ttl)}
	return intervals, nil
}

// Invalidate drops every cached horizon of property.
func (c *SnapshotCache) Invalidate(_ context.Context, property domainavailability.PropertyID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, property)
	c.generations[property]++
	return nil
}
