// Package store holds the TTL caches backing the daily and weekly weather
// lookups.
package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/i474232898/weather-board/internal/weather"
)

// Clock returns the current time; tests replace it to simulate expiry.
type Clock func() time.Time

// TTLCache maps a city id to its last committed value and a freshness token.
// Expiry is checked at read time only: entries are never swept, and the
// cache shrinks only through Flush.
type TTLCache[V any] struct {
	items *gocache.Cache
	ttl   time.Duration
	now   Clock
}

// Option configures a TTLCache.
type Option func(*options)

type options struct {
	now Clock
}

// WithClock overrides the time source used for stamping and freshness checks.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.now = c
	}
}

// NewTTLCache creates a cache whose entries stay fresh for ttl after each Put.
func NewTTLCache[V any](ttl time.Duration, opts ...Option) *TTLCache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// No default expiration and no janitor: the freshness token is ours.
	return &TTLCache[V]{
		items: gocache.New(gocache.NoExpiration, 0),
		ttl:   ttl,
		now:   o.now,
	}
}

// Get returns the entry for id regardless of its freshness.
func (c *TTLCache[V]) Get(id string) (weather.Entry[V], bool) {
	raw, ok := c.items.Get(id)
	if !ok {
		return weather.Entry[V]{}, false
	}
	e, ok := raw.(weather.Entry[V])
	return e, ok
}

// Put replaces the entry for id and stamps a new freshness token.
func (c *TTLCache[V]) Put(id string, v V) {
	c.items.Set(id, weather.Entry[V]{
		Value:     v,
		ExpiresAt: c.now().Add(c.ttl),
	}, gocache.NoExpiration)
}

// IsFresh reports whether id is cached and its token has not passed.
func (c *TTLCache[V]) IsFresh(id string) bool {
	e, ok := c.Get(id)
	if !ok {
		return false
	}
	return !c.now().After(e.ExpiresAt)
}

// Flush drops every entry.
func (c *TTLCache[V]) Flush() {
	c.items.Flush()
}

// Items returns a copy of all entries, expired ones included.
func (c *TTLCache[V]) Items() map[string]weather.Entry[V] {
	raw := c.items.Items()
	out := make(map[string]weather.Entry[V], len(raw))
	for id, item := range raw {
		if e, ok := item.Object.(weather.Entry[V]); ok {
			out[id] = e
		}
	}
	return out
}

// Restore loads entries verbatim, keeping their original tokens.
func (c *TTLCache[V]) Restore(items map[string]weather.Entry[V]) {
	for id, e := range items {
		c.items.Set(id, e, gocache.NoExpiration)
	}
}

// Len returns the number of entries, expired ones included.
func (c *TTLCache[V]) Len() int {
	return c.items.ItemCount()
}
