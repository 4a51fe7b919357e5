// Package regcount caches how many bookings each event has.
//
// The cache is advisory. Refresh is the only write path and always stores the
// count it just fetched, so when two refreshes of the same event race the one
// that completes last wins, whatever it started with. A refresh that started
// before Clear never writes after it. Nothing here enforces capacity.
package regcount

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
)

// DefaultParallelism bounds concurrent fetches in RefreshAll.
const DefaultParallelism = 8

// Cache maps event ID to its last fetched registration count.
type Cache struct {
	docs       gateway.Documents
	collection string
	limit      int
	log        zerolog.Logger

	mu     sync.RWMutex
	counts map[string]int
	// gen is bumped by Clear; refreshes started under an older gen are dropped.
	gen uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithParallelism sets the RefreshAll concurrency bound.
func WithParallelism(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New returns an empty cache counting documents of the bookings collection.
func New(docs gateway.Documents, bookings string, opts ...Option) *Cache {
	c := &Cache{
		docs:       docs,
		collection: bookings,
		limit:      DefaultParallelism,
		log:        zerolog.Nop(),
		counts:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches the bookings of eventID and stores their count. On failure
// the previous entry is kept and the error returned.
func (c *Cache) Refresh(ctx context.Context, eventID string) (int, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	docs, err := c.docs.List(ctx, c.collection, gateway.Equal(gateway.FieldEventID, eventID))
	if err != nil {
		c.log.Error().Err(err).Str("event_id", eventID).Msg("refresh registration count")
		return 0, fmt.Errorf("refresh count for %s: %w", eventID, err)
	}
	n := len(docs)

	c.mu.Lock()
	stale := c.gen != gen
	if !stale {
		c.counts[eventID] = n
	}
	c.mu.Unlock()

	if stale {
		c.log.Debug().Str("event_id", eventID).Msg("registration count dropped after clear")
		return n, nil
	}
	c.log.Debug().Str("event_id", eventID).Int("count", n).Msg("registration count refreshed")
	return n, nil
}

// RefreshAll refreshes every distinct ID concurrently and waits for all of
// them. IDs whose refresh failed are missing from the result.
func (c *Cache) RefreshAll(ctx context.Context, eventIDs []string) map[string]int {
	out := make(map[string]int, len(eventIDs))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.limit)
	seen := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		id := id
		g.Go(func() error {
			n, err := c.Refresh(ctx, id)
			if err != nil {
				return nil
			}
			mu.Lock()
			out[id] = n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Count returns the cached count for eventID, or 0 if it was never fetched.
// It never fetches.
func (c *Cache) Count(eventID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[eventID]
}

// Known reports whether eventID has been fetched successfully at least once.
func (c *Cache) Known(eventID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.counts[eventID]
	return ok
}

// Snapshot returns a copy of every cached count.
func (c *Cache) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Clear forgets every count.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.counts = make(map[string]int)
	c.gen++
	c.mu.Unlock()
}
