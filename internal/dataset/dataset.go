// Package dataset holds the immutable reference data: cities grouped by
// country code and the list of selectable countries.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-board/internal/weather"
)

// ErrUnsupportedFormat is returned for dataset files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Option is a selectable country.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// File is the on-disk layout of a dataset.
type File struct {
	Data map[string][]weather.City `json:"data" yaml:"data"`
	Keys []Option                  `json:"keys" yaml:"keys"`
}

// Dataset is safe for concurrent reads; it is never mutated after Load.
type Dataset struct {
	byCountry map[string][]weather.City
	byID      map[string]weather.City
	options   []Option
}

// New indexes f. Weather attached in the file is ignored.
func New(f File) *Dataset {
	d := &Dataset{
		byCountry: make(map[string][]weather.City, len(f.Data)),
		byID:      make(map[string]weather.City),
		options:   slices.Clone(f.Keys),
	}
	for code, cities := range f.Data {
		list := make([]weather.City, 0, len(cities))
		for _, c := range cities {
			c = c.WithoutWeather()
			if c.CountryCode == "" {
				c.CountryCode = code
			}
			list = append(list, c)
			d.byID[c.ID] = c
		}
		d.byCountry[code] = list
	}
	return d
}

// Load reads a dataset from a .json, .yaml or .yml file.
func Load(path string) (*Dataset, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return New(f), nil
}

// Decode parses a dataset in the format named by ext.
func Decode(r io.Reader, ext string) (File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return File{}, err
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&f); err != nil {
			return File{}, err
		}
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// Cities returns the cities of code in dataset order, or nil for an unknown code.
func (d *Dataset) Cities(code string) []weather.City {
	list, ok := d.byCountry[code]
	if !ok {
		return nil
	}
	return append(make([]weather.City, 0, len(list)), list...)
}

// Lookup returns the city with id.
func (d *Dataset) Lookup(id string) (weather.City, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// Options returns the selectable countries.
func (d *Dataset) Options() []Option {
	return slices.Clone(d.options)
}

// Len returns the number of cities.
func (d *Dataset) Len() int {
	return len(d.byID)
}

// File returns the dataset in its on-disk layout.
func (d *Dataset) File() File {
	f := File{
		Data: make(map[string][]weather.City, len(d.byCountry)),
		Keys: d.Options(),
	}
	for code := range d.byCountry {
		f.Data[code] = d.Cities(code)
	}
	return f
}

// WriteJSON encodes the dataset in its on-disk layout.
func (d *Dataset) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.File())
}
