package signal

import (
	"sync"
	"time"
)

// RoomRateLimiter is a sliding-window limiter for room joins, keyed by device.
type RoomRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

// NewRoomRateLimiter returns nil when limit or interval is not positive,
// which disables limiting.
func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	if limit <= 0 || interval <= 0 {
		return nil
	}
	return &RoomRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RoomRateLimiter) Allow(key string) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[key]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[key] = fresh
		return false
	}

	rl.history[key] = append(fresh, now)
	return true
}

// Prune drops keys with no join inside the current window. Keys still
// counting are kept, so other connections of the same device keep their limit.
func (rl *RoomRateLimiter) Prune() {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	windowStart := rl.now().Add(-rl.interval)
	for key, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, key)
		}
	}
}

func (ctl *SignalWSController) limiterKey(c *WsSignalConn) string {
	if c.device != "" {
		return c.device
	}
	return string(c.id)
}

func (ctl *SignalWSController) allowJoin(c *WsSignalConn, event string) bool {
	if ctl.Limiter.Allow(ctl.limiterKey(c)) {
		return true
	}
	ctl.sendError(c, event, "rate_limited")
	return false
}
