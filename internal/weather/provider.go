package weather

import (
	"context"
	"time"
)

// Gateway abstracts a remote forecast source (e.g. Open-Meteo, WeatherAPI).
// Implementations may retry internally; the dashboard never retries them.
type Gateway interface {
	Name() string
	FetchDaily(ctx context.Context, lat, lon float64) (DailyForecast, error)
	FetchWeekly(ctx context.Context, lat, lon float64) (WeeklyForecast, error)
}

// Directory is the read-only reference dataset the Service resolves ids and
// country codes against.
type Directory interface {
	Lookup(id string) (City, bool)
	Cities(countryCode string) []City
}

// Entry is a cached value plus its freshness token.
type Entry[V any] struct {
	Value     V         `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Cache is the contract the TTL cache store must satisfy.
type Cache[V any] interface {
	Get(id string) (Entry[V], bool)
	Put(id string, v V)
	IsFresh(id string) bool
	Flush()
	Items() map[string]Entry[V]
	Restore(items map[string]Entry[V])
}

// Recorder receives orchestration events; the metrics package implements it.
type Recorder interface {
	CacheLookup(kind string, hit bool)
	Fetch(kind string, err error)
	BatchDone(d time.Duration, committed bool)
}
