package postgres

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// writeLimiter throttles Append calls per author, adapted from the
// teacher's internal/middleware/rate_limit.go RateLimiter: same
// token-bucket-per-key and idle-entry-sweep shape, keyed by tx/author
// instead of an API-token id, and with no HTTP framing — a write that
// exceeds its author's budget is simply refused by the store.
type writeLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*limiterEntry
	rateLimit float64
	burstSize int
	stopCh    chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	defaultWritesPerMinute = 600
	defaultBurstSize       = 20
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 10 * time.Minute
)

func newWriteLimiter(writesPerMinute, burstSize int) *writeLimiter {
	l := &writeLimiter{
		buckets:   make(map[string]*limiterEntry),
		rateLimit: float64(writesPerMinute) / 60.0,
		burstSize: burstSize,
		stopCh:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *writeLimiter) allow(author string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.buckets[author]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(l.rateLimit), l.burstSize)}
		l.buckets[author] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (l *writeLimiter) cleanup() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for author, entry := range l.buckets {
				if time.Since(entry.lastSeen) > limiterTTL {
					delete(l.buckets, author)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

func (l *writeLimiter) Close() {
	close(l.stopCh)
}
