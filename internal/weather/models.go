package weather

import (
	"time"
)

// Units holds the unit labels reported by the gateway for daily max/min.
type Units struct {
	Max string `json:"max" yaml:"max"`
	Min string `json:"min" yaml:"min"`
}

// Summary is the one-day weather aggregate attached to a city.
// It is recomputed in full on every successful fetch.
type Summary struct {
	DailyMax    float64 `json:"dailyMax" yaml:"dailyMax"`
	DailyMin    float64 `json:"dailyMin" yaml:"dailyMin"`
	AverageWind float64 `json:"averageWind" yaml:"averageWind"`
	Units       Units   `json:"units" yaml:"units"`
}

// City represents a selectable location from the reference dataset.
// Identity fields never change after load; only Weather is attached or detached.
type City struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	CountryCode string   `json:"countryCode" yaml:"countryCode"`
	Population  int64    `json:"population" yaml:"population"`
	Latitude    float64  `json:"latitude" yaml:"latitude"`
	Longitude   float64  `json:"longitude" yaml:"longitude"`
	Weather     *Summary `json:"weather,omitempty" yaml:"weather,omitempty"`
}

// WithWeather returns a copy of c carrying s.
func (c City) WithWeather(s Summary) City {
	c.Weather = &s
	return c
}

// WithoutWeather returns a copy of c with no weather attached.
func (c City) WithoutWeather() City {
	c.Weather = nil
	return c
}

// WeeklyPoint is one forecast day of a weekly series.
type WeeklyPoint struct {
	Day   int     `json:"day"`
	Month int     `json:"month"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// WeeklySeries is ordered by date ascending and holds at most seven points.
type WeeklySeries []WeeklyPoint

// DailyForecast is the raw single-day gateway response.
type DailyForecast struct {
	Highs          []float64
	Lows           []float64
	WindDirections []float64
	Units          Units
}

// WeeklyForecast is the raw multi-day gateway response.
// Dates, Highs and Lows are index-aligned.
type WeeklyForecast struct {
	Dates []time.Time
	Highs []float64
	Lows  []float64
}

// ErrorRecord is the per-city outcome of a failed fetch in a batch cycle.
type ErrorRecord struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Status is the externally observable progress signal of an orchestrator.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
)
