package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-board/internal/weather"
)

func names(list []weather.City) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func withMax(name string, hi, lo float64) weather.City {
	return weather.City{ID: name, Name: name}.WithWeather(weather.Summary{DailyMax: hi, DailyMin: lo})
}

func keyPtr(k Key) *Key { return &k }

func TestStateNext_Toggles(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, State{SortBy: ByPopulation, Ascending: true}, s)

	s = s.Next(keyPtr(ByPopulation))
	assert.Equal(t, State{SortBy: ByPopulation, Ascending: false}, s)

	s = s.Next(nil)
	assert.Equal(t, State{SortBy: ByPopulation, Ascending: false}, s)

	s = s.Next(keyPtr(ByName))
	assert.Equal(t, State{SortBy: ByName, Ascending: true}, s)
}

func TestApply_PopulationTwice(t *testing.T) {
	cities := []weather.City{
		{ID: "1", Name: "Mid", Population: 2_000_000},
		{ID: "2", Name: "Big", Population: 5_000_000},
		{ID: "3", Name: "Small", Population: 150_000},
	}

	s := State{SortBy: ByName, Ascending: true}.Next(keyPtr(ByPopulation))
	assert.Equal(t, []string{"Small", "Mid", "Big"}, names(Apply(cities, s)))

	s = s.Next(keyPtr(ByPopulation))
	assert.Equal(t, []string{"Big", "Mid", "Small"}, names(Apply(cities, s)))
}

func TestApply_DailyMaxScenario(t *testing.T) {
	a := withMax("A", 20, 10)
	a.Population = 5_000_000
	b := withMax("B", 15, 5)
	b.Population = 2_000_000

	got := Apply([]weather.City{a, b}, State{SortBy: ByDailyMax, Ascending: true})
	assert.Equal(t, []string{"B", "A"}, names(got))
}

func TestApply_MissingWeatherSortsLowest(t *testing.T) {
	cities := []weather.City{
		withMax("warm", 25, 12),
		{ID: "n1", Name: "none-1"},
		withMax("cold", -3, -10),
		{ID: "n2", Name: "none-2"},
	}

	asc := Apply(cities, State{SortBy: ByDailyMin, Ascending: true})
	assert.Equal(t, []string{"none-1", "none-2", "cold", "warm"}, names(asc))

	desc := Apply(cities, State{SortBy: ByDailyMin, Ascending: false})
	assert.Equal(t, []string{"warm", "cold", "none-1", "none-2"}, names(desc))
}

func TestApply_StableOnTies(t *testing.T) {
	cities := []weather.City{
		{ID: "1", Name: "first", Population: 10},
		{ID: "2", Name: "second", Population: 10},
		{ID: "3", Name: "third", Population: 5},
	}

	got := Apply(cities, State{SortBy: ByPopulation, Ascending: false})
	assert.Equal(t, []string{"first", "second", "third"}, names(got))
}

func TestApply_ByNameDoesNotMutateInput(t *testing.T) {
	cities := []weather.City{{Name: "Zagreb"}, {Name: "Ålesund"}, {Name: "Berlin"}}

	got := Apply(cities, State{SortBy: ByName, Ascending: true})

	assert.Equal(t, []string{"Ålesund", "Berlin", "Zagreb"}, names(got))
	assert.Equal(t, "Zagreb", cities[0].Name)
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("dailyMax")
	require.NoError(t, err)
	assert.Equal(t, ByDailyMax, k)

	_, err = ParseKey("humidity")
	assert.Error(t, err)
}
