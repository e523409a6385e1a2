package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-board/internal/weather"
)

func geonamesLine(id, name, cc, pop string, lat, lon string) string {
	cols := make([]string, 19)
	cols[colID] = id
	cols[colName] = name
	cols[colLatitude] = lat
	cols[colLongitude] = lon
	cols[colCountry] = cc
	cols[colPopulation] = pop
	return strings.Join(cols, "\t")
}

const countryInfo = "#ISO\tISO3\tISO-Numeric\tfips\tCountry\n" +
	"FR\tFRA\t250\tFR\tFrance\n" +
	"DE\tDEU\t276\tGM\tGermany\n"

func TestImportGeonames(t *testing.T) {
	dump := strings.Join([]string{
		geonamesLine("1", "Lyon", "FR", "500000", "45.75", "4.85"),
		geonamesLine("2", "Paris", "FR", "2100000", "48.85", "2.35"),
		geonamesLine("3", "Village", "FR", "100000", "45.0", "4.0"),
		geonamesLine("4", "Berlin", "DE", "3600000", "52.52", "13.41"),
		geonamesLine("5", "Kabul", "AF", "4000000", "34.5", "69.2"),
	}, "\n")

	names, err := ParseCountryNames(strings.NewReader(countryInfo))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"FR": "France", "DE": "Germany"}, names)

	d, err := ImportGeonames(strings.NewReader(dump), names, DefaultMinPopulation)
	require.NoError(t, err)

	fr := d.Cities("FR")
	require.Len(t, fr, 2, "population must exceed the threshold")
	assert.Equal(t, "Paris", fr[0].Name)
	assert.Equal(t, "Lyon", fr[1].Name)
	assert.Equal(t, 48.85, fr[0].Latitude)

	assert.Equal(t, []Option{
		{Value: "AF", Label: "country AF not found"},
		{Value: "FR", Label: "France"},
		{Value: "DE", Label: "Germany"},
	}, d.Options())

	c, ok := d.Lookup("4")
	require.True(t, ok)
	assert.Equal(t, "DE", c.CountryCode)
}

func TestImportGeonames_MalformedLine(t *testing.T) {
	_, err := ImportGeonames(strings.NewReader("1\tParis\n"), nil, DefaultMinPopulation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestDecode_JSONAndYAML(t *testing.T) {
	jsonDoc := `{"data":{"FR":[{"id":"2","name":"Paris","population":2100000,"latitude":48.85,"longitude":2.35}]},
	"keys":[{"value":"FR","label":"France"}]}`
	yamlDoc := `
data:
  FR:
    - id: "2"
      name: Paris
      population: 2100000
      latitude: 48.85
      longitude: 2.35
keys:
  - value: FR
    label: France
`
	for ext, doc := range map[string]string{".json": jsonDoc, ".yaml": yamlDoc} {
		t.Run(ext, func(t *testing.T) {
			f, err := Decode(strings.NewReader(doc), ext)
			require.NoError(t, err)

			d := New(f)
			c, ok := d.Lookup("2")
			require.True(t, ok)
			assert.Equal(t, "FR", c.CountryCode, "country code defaults to the group key")
			assert.Equal(t, int64(2100000), c.Population)
		})
	}

	_, err := Decode(strings.NewReader(""), ".csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_RoundTripsWriteJSON(t *testing.T) {
	src := New(File{
		Data: map[string][]weather.City{
			"NO": {{ID: "10", Name: "Oslo", CountryCode: "NO", Population: 700000}},
		},
		Keys: []Option{{Value: "NO", Label: "Norway"}},
	})

	var buf bytes.Buffer
	require.NoError(t, src.WriteJSON(&buf))

	path := filepath.Join(t.TempDir(), "cities.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src.Cities("NO"), d.Cities("NO"))
	assert.Equal(t, 1, d.Len())
}

func TestCities_UnknownCountry(t *testing.T) {
	d := New(File{Data: map[string][]weather.City{"NO": {}}})

	assert.Nil(t, d.Cities("XX"))
	assert.NotNil(t, d.Cities("NO"), "known country returns an empty list")
}

func TestCities_ReturnsCopy(t *testing.T) {
	d := New(File{Data: map[string][]weather.City{"NO": {{ID: "10", Name: "Oslo"}}}})

	list := d.Cities("NO")
	list[0].Name = "changed"

	assert.Equal(t, "Oslo", d.Cities("NO")[0].Name)
}

type stubGeocoder struct {
	calls []string
}

func (s *stubGeocoder) Geocode(_ context.Context, city, country string) (float64, float64, error) {
	s.calls = append(s.calls, city+"/"+country)
	if city == "Nowhere" {
		return 0, 0, errors.New("zero results")
	}
	return 59.91, 10.75, nil
}

func TestBackfill(t *testing.T) {
	d := New(File{
		Data: map[string][]weather.City{
			"NO": {
				{ID: "10", Name: "Oslo"},
				{ID: "11", Name: "Bergen", Latitude: 60.39, Longitude: 5.32},
				{ID: "12", Name: "Nowhere"},
			},
		},
		Keys: []Option{{Value: "NO", Label: "Norway"}},
	})
	g := &stubGeocoder{}

	out, filled, err := Backfill(context.Background(), d, g, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 1, filled)
	assert.ElementsMatch(t, []string{"Oslo/Norway", "Nowhere/Norway"}, g.calls)

	oslo, _ := out.Lookup("10")
	assert.Equal(t, 59.91, oslo.Latitude)
	nowhere, _ := out.Lookup("12")
	assert.Zero(t, nowhere.Latitude)

	orig, _ := d.Lookup("10")
	assert.Zero(t, orig.Latitude, "source dataset is untouched")
}

func TestNewGoogleGeocoder_RequiresKey(t *testing.T) {
	_, err := NewGoogleGeocoder("")
	assert.Error(t, err)
}
