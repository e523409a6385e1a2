package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-board/internal/weather"
)

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (lat, lon float64, err error)
}

// GoogleGeocoder resolves names through the Google Geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoding client with apiKey.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("geocoder api key is required")
	}
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, city, country string) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %s, %s: %w", city, country, err)
	}
	return loc.Latitude, loc.Longitude, nil
}

// Backfill returns a copy of d where cities without coordinates are
// resolved through g. Failures are logged and leave the city unchanged.
func Backfill(ctx context.Context, d *Dataset, g Geocoder, log zerolog.Logger) (*Dataset, int, error) {
	f := d.File()
	filled := 0
	for code, cities := range f.Data {
		for i, c := range cities {
			if c.Latitude != 0 || c.Longitude != 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, filled, err
			}
			lat, lon, err := g.Geocode(ctx, c.Name, countryLabel(f.Keys, code))
			if err != nil {
				log.Warn().Err(err).Str("city_id", c.ID).Msg("Geocoding failed")
				continue
			}
			cities[i] = withCoordinates(c, lat, lon)
			filled++
		}
	}
	return New(f), filled, nil
}

func withCoordinates(c weather.City, lat, lon float64) weather.City {
	c.Latitude = lat
	c.Longitude = lon
	return c
}

func countryLabel(keys []Option, code string) string {
	for _, k := range keys {
		if k.Value == code {
			return k.Label
		}
	}
	return code
}
