package practiceapi

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-cockpit/components/cockpit"
)

// DefaultStatsTTL is how long a practice stats snapshot is reused.
const DefaultStatsTTL = 60 * time.Second

type cachedStats struct {
	stats   *cockpit.DashboardStats
	expires time.Time
}

// CachedStats memoizes a StatsProvider per practice for a fixed TTL. Errors
// are not cached.
type CachedStats struct {
	next cockpit.StatsProvider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cachedStats
}

var _ cockpit.StatsProvider = (*CachedStats)(nil)

// NewCachedStats wraps next. A non-positive ttl uses DefaultStatsTTL.
func NewCachedStats(next cockpit.StatsProvider, ttl time.Duration) *CachedStats {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &CachedStats{next: next, ttl: ttl, now: time.Now, entries: map[string]cachedStats{}}
}

// DashboardStats returns the cached snapshot or loads a fresh one.
func (c *CachedStats) DashboardStats(ctx context.Context, practiceID string) (*cockpit.DashboardStats, error) {
	key := cockpit.SanitizePracticeID(practiceID)
	now := c.now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := c.next.DashboardStats(ctx, practiceID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = cachedStats{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return stats, nil
}

// Invalidate drops the snapshot of practiceID.
func (c *CachedStats) Invalidate(practiceID string) {
	c.mu.Lock()
	delete(c.entries, cockpit.SanitizePracticeID(practiceID))
	c.mu.Unlock()
}
