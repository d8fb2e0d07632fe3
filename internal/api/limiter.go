package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter hands out one token bucket per client key. Buckets that have been
// idle for a full window are dropped on the next sweep.
type limiter struct {
	mtx     sync.Mutex
	every   rate.Limit
	burst   int
	window  time.Duration
	clients map[string]*client
	swept   time.Time
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newLimiter(requests int, window time.Duration) *limiter {
	if requests <= 0 || window <= 0 {
		return nil
	}

	return &limiter{
		every:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
		clients: map[string]*client{},
	}
}

func (l *limiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if now.Sub(l.swept) > l.window {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.window {
				delete(l.clients, k)
			}
		}
		l.swept = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	return c.bucket.AllowN(now, 1)
}
