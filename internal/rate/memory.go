package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: misma semántica de ventana fija que RedisLimiter pero sobre
// go-cache. Para dev y despliegues de un solo nodo.
type MemoryLimiter struct {
	cache  *gocache.Cache
	max    int64
	window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.window)
	cacheKey := fmt.Sprintf("%s:%d", key, winStart.Unix())

	hits, err := l.cache.IncrementInt64(cacheKey, 1)
	if err != nil {
		// primera vez en la ventana
		hits = 1
		l.cache.Set(cacheKey, int64(1), l.window)
	}

	allowed := hits <= l.max
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !allowed {
		res.RetryAfter = l.window - time.Since(winStart)
		if res.RetryAfter < 0 {
			res.RetryAfter = l.window
		}
	}
	return res, nil
}
