package weather

import (
	"errors"
	"math"
)

// ErrEmptyForecast is returned when a gateway response carries no daily values.
var ErrEmptyForecast = errors.New("forecast contains no daily values")

// maxWeeklyPoints caps the weekly series length.
const maxWeeklyPoints = 7

// Summarize reduces a single-day forecast into a Summary.
// DailyMax is the max of the highs, DailyMin the min of the lows and
// AverageWind the ceiling of the mean hourly wind direction.
func Summarize(f DailyForecast) (Summary, error) {
	if len(f.Highs) == 0 || len(f.Lows) == 0 {
		return Summary{}, ErrEmptyForecast
	}

	dailyMax := f.Highs[0]
	for _, v := range f.Highs[1:] {
		dailyMax = math.Max(dailyMax, v)
	}

	dailyMin := f.Lows[0]
	for _, v := range f.Lows[1:] {
		dailyMin = math.Min(dailyMin, v)
	}

	var avgWind float64
	if n := len(f.WindDirections); n > 0 {
		var sum float64
		for _, v := range f.WindDirections {
			sum += v
		}
		avgWind = math.Ceil(sum / float64(n))
	}

	return Summary{
		DailyMax:    dailyMax,
		DailyMin:    dailyMin,
		AverageWind: avgWind,
		Units:       f.Units,
	}, nil
}

// BuildWeeklySeries maps each forecast day to a point whose value is the
// midpoint of that day's high and low.
func BuildWeeklySeries(f WeeklyForecast) (WeeklySeries, error) {
	n := min(len(f.Dates), len(f.Highs), len(f.Lows))
	if n == 0 {
		return nil, ErrEmptyForecast
	}
	n = min(n, maxWeeklyPoints)

	series := make(WeeklySeries, 0, n)
	for i := 0; i < n; i++ {
		d := f.Dates[i]
		series = append(series, WeeklyPoint{
			Day:   d.Day(),
			Month: int(d.Month()),
			Year:  d.Year(),
			Value: Midpoint(f.Highs[i], f.Lows[i]),
		})
	}
	return series, nil
}

// Midpoint returns the mean of hi and lo rounded up to one decimal place.
func Midpoint(hi, lo float64) float64 {
	scaled := (hi + lo) / 2 * 10
	// Absorb float noise such as 71.00000000001 before taking the ceiling.
	if r := math.Round(scaled); math.Abs(scaled-r) < 1e-9 {
		scaled = r
	}
	return math.Ceil(scaled) / 10
}
