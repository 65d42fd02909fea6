// Package ratelimit implements per-client admission over a trailing time
// window. Each client keeps the timestamps of its admitted requests; stale
// timestamps are pruned lazily whenever the client is seen again.
package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

const emergencyCleanupThreshold = 50000

type clientWindow struct {
	timestamps []time.Time
}

// Limiter is safe for concurrent use. The prune-check-append sequence of
// Admit runs under a single mutex.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	now     func() time.Time
}

func New() *Limiter {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		clients: make(map[string]*clientWindow),
		now:     now,
	}
}

// Admit reports whether clientID may make another request. The window is the
// half-open interval (now-window, now]: a timestamp exactly window old has
// expired. Rejected attempts are not recorded.
func (l *Limiter) Admit(clientID string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cw, ok := l.clients[clientID]
	if !ok {
		if clientID == "" || clientID == "::1" {
			util.LogDebug("Rate limiter key is empty or loopback: %q", clientID)
		}
		cw = &clientWindow{}
		l.clients[clientID] = cw
	}

	cw.timestamps = lo.DropWhile(cw.timestamps, func(ts time.Time) bool {
		return now.Sub(ts) >= window
	})

	if len(cw.timestamps) >= limit {
		return false
	}
	cw.timestamps = append(cw.timestamps, now)
	return true
}

// Count returns how many timestamps clientID currently holds inside window.
func (l *Limiter) Count(clientID string, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cw, ok := l.clients[clientID]
	if !ok {
		return 0
	}
	now := l.now()
	return lo.CountBy(cw.timestamps, func(ts time.Time) bool {
		return now.Sub(ts) < window
	})
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Cleanup drops clients whose newest timestamp is at least maxIdle old. With
// maxIdle >= the admission window those records would be empty on their next
// access anyway. It returns the number of records removed.
func (l *Limiter) Cleanup(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, cw := range l.clients {
		last := lo.LastOrEmpty(cw.timestamps)
		if last.IsZero() || now.Sub(last) >= maxIdle {
			delete(l.clients, key)
			removed++
		}
	}

	if len(l.clients) > emergencyCleanupThreshold {
		util.LogInfo("Rate limiter map too large (%d entries), performing emergency cleanup", len(l.clients))
		removed += l.evictOldestHalf()
	}

	if removed > 0 {
		util.LogInfo("Cleaned up %d stale rate limiter entries", removed)
	}
	return removed
}

func (l *Limiter) evictOldestHalf() int {
	type clientInfo struct {
		key  string
		last time.Time
	}

	infos := make([]clientInfo, 0, len(l.clients))
	for key, cw := range l.clients {
		infos = append(infos, clientInfo{key: key, last: lo.LastOrEmpty(cw.timestamps)})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].last.Before(infos[j].last)
	})

	n := len(infos) / 2
	for i := 0; i < n; i++ {
		delete(l.clients, infos[i].key)
	}
	return n
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (l *Limiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup(maxIdle)
			}
		}
	}()
	util.LogInfo("Started rate limiter cleanup routine (interval %v)", interval)
}
