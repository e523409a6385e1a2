package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize(DailyForecast{
		Highs:          []float64{18.5, 21.25, 20},
		Lows:           []float64{9, 7.5, 8},
		WindDirections: []float64{10, 20, 31},
		Units:          Units{Max: "°C", Min: "°C"},
	})

	require.NoError(t, err)
	assert.Equal(t, 21.25, s.DailyMax)
	assert.Equal(t, 7.5, s.DailyMin)
	assert.Equal(t, 21.0, s.AverageWind, "ceil(61/3)")
	assert.Equal(t, "°C", s.Units.Max)
}

func TestSummarize_EmptyForecast(t *testing.T) {
	_, err := Summarize(DailyForecast{Lows: []float64{1}})
	assert.ErrorIs(t, err, ErrEmptyForecast)

	s, err := Summarize(DailyForecast{Highs: []float64{3}, Lows: []float64{1}})
	require.NoError(t, err)
	assert.Zero(t, s.AverageWind, "no hourly samples means no wind aggregate")
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		hi, lo float64
		want   float64
	}{
		{10.0, 4.0, 7.0},
		{10.0, 4.1, 7.1},
		{10.0, 4.3, 7.2},
		{-1.0, -4.0, -2.5},
		{-1.0, -4.1, -2.5},
		{0.1, 0.0, 0.1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Midpoint(tt.hi, tt.lo), "Midpoint(%v, %v)", tt.hi, tt.lo)
	}
}

func TestBuildWeeklySeries(t *testing.T) {
	start := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	var f WeeklyForecast
	for i := 0; i < 9; i++ {
		f.Dates = append(f.Dates, start.AddDate(0, 0, i))
		f.Highs = append(f.Highs, 10)
		f.Lows = append(f.Lows, 4)
	}

	series, err := BuildWeeklySeries(f)

	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, WeeklyPoint{Day: 30, Month: 12, Year: 2024, Value: 7}, series[0])
	assert.Equal(t, WeeklyPoint{Day: 5, Month: 1, Year: 2025, Value: 7}, series[6])

	_, err = BuildWeeklySeries(WeeklyForecast{})
	assert.ErrorIs(t, err, ErrEmptyForecast)
}

func TestCityWeatherCopies(t *testing.T) {
	c := City{ID: "1", Name: "Oslo"}
	enriched := c.WithWeather(Summary{DailyMax: 4})

	assert.Nil(t, c.Weather)
	require.NotNil(t, enriched.Weather)
	assert.Nil(t, enriched.WithoutWeather().Weather)
}
