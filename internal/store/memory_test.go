package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-board/internal/weather"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T, ttl time.Duration) (*TTLCache[weather.City], *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewTTLCache[weather.City](ttl, WithClock(clk.Now)), clk
}

func TestTTLCache_FreshnessExpires(t *testing.T) {
	c, clk := newTestCache(t, 10*time.Minute)
	city := weather.City{ID: "2643743", Name: "London"}.WithWeather(weather.Summary{DailyMax: 20})

	assert.False(t, c.IsFresh(city.ID), "absent entry must not be fresh")

	c.Put(city.ID, city)
	assert.True(t, c.IsFresh(city.ID))

	clk.Advance(10 * time.Minute)
	assert.True(t, c.IsFresh(city.ID), "token boundary is still fresh")

	clk.Advance(time.Second)
	assert.False(t, c.IsFresh(city.ID))

	// Expired entries remain readable.
	e, ok := c.Get(city.ID)
	require.True(t, ok)
	assert.Equal(t, "London", e.Value.Name)
}

func TestTTLCache_PutReplacesWholesale(t *testing.T) {
	c, clk := newTestCache(t, time.Minute)
	base := weather.City{ID: "1"}

	c.Put("1", base.WithWeather(weather.Summary{DailyMax: 10, DailyMin: 1, AverageWind: 90}))
	first, _ := c.Get("1")

	clk.Advance(2 * time.Minute)
	c.Put("1", base.WithWeather(weather.Summary{DailyMax: 12}))

	second, ok := c.Get("1")
	require.True(t, ok)
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
	assert.Equal(t, weather.Summary{DailyMax: 12}, *second.Value.Weather)
	assert.True(t, c.IsFresh("1"))
}

func TestTTLCache_FlushAndRestore(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	c.Put("a", weather.City{ID: "a"})
	c.Put("b", weather.City{ID: "b"})
	require.Equal(t, 2, c.Len())

	items := c.Items()
	c.Flush()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.IsFresh("a"))

	c.Restore(items)
	assert.Equal(t, 2, c.Len())
	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, items["b"].ExpiresAt, got.ExpiresAt)
}
