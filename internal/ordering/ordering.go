// Package ordering implements the toggleable, stable sort over displayed cities.
package ordering

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-board/internal/weather"
)

// Key names a sortable column.
type Key string

const (
	ByName       Key = "name"
	ByPopulation Key = "population"
	ByDailyMax   Key = "dailyMax"
	ByDailyMin   Key = "dailyMin"
)

// Keys lists every valid sort key.
var Keys = []Key{ByName, ByPopulation, ByDailyMax, ByDailyMin}

// ParseKey validates a sort key coming from the outside.
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if slices.Contains(Keys, k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// State is the current sort column and direction.
type State struct {
	SortBy    Key  `json:"sortBy"`
	Ascending bool `json:"ascending"`
}

// DefaultState orders by population ascending.
func DefaultState() State {
	return State{SortBy: ByPopulation, Ascending: true}
}

// Next applies a sort request: the same key flips the direction, a new key
// resets to ascending and a nil key keeps the state as is.
func (s State) Next(key *Key) State {
	if key == nil {
		return s
	}
	if *key == s.SortBy {
		s.Ascending = !s.Ascending
		return s
	}
	return State{SortBy: *key, Ascending: true}
}

// Apply returns a new slice holding cities stably sorted according to s.
// Cities without weather compare as the lowest value for dailyMax/dailyMin.
func Apply(cities []weather.City, s State) []weather.City {
	out := slices.Clone(cities)

	var compare func(a, b weather.City) int
	switch s.SortBy {
	case ByName:
		col := collate.New(language.Und)
		compare = func(a, b weather.City) int { return col.CompareString(a.Name, b.Name) }
	case ByDailyMax:
		compare = func(a, b weather.City) int { return cmp.Compare(dailyMax(a), dailyMax(b)) }
	case ByDailyMin:
		compare = func(a, b weather.City) int { return cmp.Compare(dailyMin(a), dailyMin(b)) }
	default:
		compare = func(a, b weather.City) int { return cmp.Compare(a.Population, b.Population) }
	}

	if !s.Ascending {
		asc := compare
		compare = func(a, b weather.City) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

func dailyMax(c weather.City) float64 {
	if c.Weather == nil {
		return math.Inf(-1)
	}
	return c.Weather.DailyMax
}

func dailyMin(c weather.City) float64 {
	if c.Weather == nil {
		return math.Inf(-1)
	}
	return c.Weather.DailyMin
}
