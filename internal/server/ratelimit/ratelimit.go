// Package ratelimit limits report server clients per route with token
// buckets from golang.org/x/time/rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the bucket a request was charged to.
type Info struct {
	Allowed    bool
	Route      string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	capacity int
	lastSeen time.Time
}

// Limiter keeps one bucket per client and route (or route group).
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	ticker *time.Ticker
	done   chan struct{}
}

// NewLimiter starts a limiter. A nil config uses the defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = defaultConfig()
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.ticker = time.NewTicker(config.CleanupInterval)
		l.done = make(chan struct{})
		go l.sweepLoop()
	}
	return l
}

// route resolves the rule for a request, falling back to the default limit.
func (l *Limiter) route(method, path string) *Route {
	if r := Match(l.config.Routes, method, path); r != nil {
		return r
	}
	return &Route{
		Method:  method,
		Pattern: "*",
		Limit:   l.config.DefaultLimit,
		Window:  l.config.DefaultWindow,
		Burst:   l.config.DefaultLimit,
	}
}

// Allow charges one request from clientID to the route matching method and
// path.
func (l *Limiter) Allow(clientID, method, path string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	rt := l.route(method, path)
	if rt.Exempt() {
		return true, Info{Allowed: true, Route: rt.bucketName()}
	}

	now := l.now()
	l.mu.Lock()
	b := l.bucketFor(clientID+"|"+rt.bucketName(), rt)
	b.lastSeen = now
	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)
	l.mu.Unlock()

	info := Info{
		Allowed:   allowed,
		Route:     rt.bucketName(),
		Limit:     rt.Limit,
		Remaining: max(int(tokens), 0),
		ResetTime: now,
	}
	perSecond := float64(b.lim.Limit())
	if missing := float64(b.capacity) - tokens; missing > 0 {
		info.ResetTime = now.Add(time.Duration(missing / perSecond * float64(time.Second)))
	}
	if !allowed {
		info.RetryAfter = max(time.Duration((1-tokens)/perSecond*float64(time.Second)), 0)
	}
	return allowed, info
}

// bucketFor must be called with l.mu held.
func (l *Limiter) bucketFor(key string, rt *Route) *bucket {
	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := rt.Burst
	if capacity <= 0 {
		capacity = rt.Limit
	}
	b := &bucket{
		lim:      rate.NewLimiter(rate.Limit(float64(rt.Limit)/rt.Window.Seconds()), capacity),
		capacity: capacity,
	}
	l.buckets[key] = b
	return b
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep drops idle buckets.
func (l *Limiter) sweep() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the sweep goroutine.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.done != nil {
		close(l.done)
	}
}
