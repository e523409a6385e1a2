package dataset

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-board/internal/weather"
)

// DefaultMinPopulation is the population a city must exceed to be imported.
const DefaultMinPopulation = 100000

// Column positions in a geonames cities dump.
const (
	colID         = 0
	colName       = 1
	colLatitude   = 4
	colLongitude  = 5
	colCountry    = 8
	colPopulation = 14
	minColumns    = 15
)

// Column positions in a geonames countryInfo.txt file.
const (
	colISO         = 0
	colCountryName = 4
)

const maxLineSize = 1 << 20

// ParseCountryNames reads a geonames countryInfo.txt file into code -> name.
func ParseCountryNames(r io.Reader) (map[string]string, error) {
	names := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) <= colCountryName {
			continue
		}
		names[cols[colISO]] = cols[colCountryName]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading country names: %w", err)
	}
	return names, nil
}

// ImportGeonames builds a dataset from a tab-separated geonames cities dump.
// Cities with population above minPopulation are grouped by country and
// ordered by population descending; countries are ordered by label.
// names supplies the labels; a missing name gets a placeholder label.
func ImportGeonames(r io.Reader, names map[string]string, minPopulation int64) (*Dataset, error) {
	data := make(map[string][]weather.City)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		c, err := parseCityLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if c.Population <= minPopulation {
			continue
		}
		data[c.CountryCode] = append(data[c.CountryCode], c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading cities: %w", err)
	}

	keys := make([]Option, 0, len(data))
	for code, list := range data {
		slices.SortStableFunc(list, func(a, b weather.City) int {
			return cmp.Compare(b.Population, a.Population)
		})

		label, ok := names[code]
		if !ok {
			label = fmt.Sprintf("country %s not found", code)
		}
		keys = append(keys, Option{Value: code, Label: label})
	}
	coll := collate.New(language.Und)
	slices.SortFunc(keys, func(a, b Option) int {
		return cmp.Or(coll.CompareString(a.Label, b.Label), cmp.Compare(a.Value, b.Value))
	})

	return New(File{Data: data, Keys: keys}), nil
}

func parseCityLine(text string) (weather.City, error) {
	cols := strings.Split(text, "\t")
	if len(cols) < minColumns {
		return weather.City{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(cols))
	}

	lat, err := strconv.ParseFloat(cols[colLatitude], 64)
	if err != nil {
		return weather.City{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(cols[colLongitude], 64)
	if err != nil {
		return weather.City{}, fmt.Errorf("longitude: %w", err)
	}

	var pop int64
	if s := cols[colPopulation]; s != "" {
		pop, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return weather.City{}, fmt.Errorf("population: %w", err)
		}
	}

	return weather.City{
		ID:          cols[colID],
		Name:        cols[colName],
		CountryCode: cols[colCountry],
		Population:  pop,
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}
