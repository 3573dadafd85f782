package middleware

import (
	"sync"
	"time"
)

type fixedWindow struct {
	start time.Time
	count int64
}

// localLimiter is the in-process fixed window used when Redis is not
// configured. Limits are per instance.
type localLimiter struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
	sweep   time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{windows: make(map[string]*fixedWindow), sweep: time.Now()}
}

func (l *localLimiter) incr(key string, size time.Duration) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.sweep) > size {
		for k, w := range l.windows {
			if now.Sub(w.start) > size {
				delete(l.windows, k)
			}
		}
		l.sweep = now
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > size {
		w = &fixedWindow{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count
}
