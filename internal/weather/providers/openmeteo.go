package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-board/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOpenMeteoURL is the public Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoProvider implements the weather.Gateway interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// openMeteoResponse covers the subset of /v1/forecast used here.
// Samples may be null when the model has no value for a slot.
type openMeteoResponse struct {
	DailyUnits struct {
		Max string `json:"temperature_2m_max"`
		Min string `json:"temperature_2m_min"`
	} `json:"daily_units"`
	Daily struct {
		Time []string   `json:"time"`
		Max  []*float64 `json:"temperature_2m_max"`
		Min  []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
	Hourly struct {
		WindDirection []*float64 `json:"winddirection_10m"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) FetchDaily(ctx context.Context, lat, lon float64) (weather.DailyForecast, error) {
	payload, err := p.fetch(ctx, lat, lon, dailyForecastDays)
	if err != nil {
		return weather.DailyForecast{}, err
	}

	return weather.DailyForecast{
		Highs:          compact(payload.Daily.Max),
		Lows:           compact(payload.Daily.Min),
		WindDirections: compact(payload.Hourly.WindDirection),
		Units: weather.Units{
			Max: payload.DailyUnits.Max,
			Min: payload.DailyUnits.Min,
		},
	}, nil
}

func (p *OpenMeteoProvider) FetchWeekly(ctx context.Context, lat, lon float64) (weather.WeeklyForecast, error) {
	payload, err := p.fetch(ctx, lat, lon, weeklyForecastDays)
	if err != nil {
		return weather.WeeklyForecast{}, err
	}

	var wf weather.WeeklyForecast
	n := min(len(payload.Daily.Time), len(payload.Daily.Max), len(payload.Daily.Min))
	for i := 0; i < n; i++ {
		if payload.Daily.Max[i] == nil || payload.Daily.Min[i] == nil {
			continue
		}
		day, err := time.Parse(time.DateOnly, payload.Daily.Time[i])
		if err != nil {
			return weather.WeeklyForecast{}, fmt.Errorf("openmeteo: invalid date %q: %w", payload.Daily.Time[i], err)
		}
		wf.Dates = append(wf.Dates, day)
		wf.Highs = append(wf.Highs, *payload.Daily.Max[i])
		wf.Lows = append(wf.Lows, *payload.Daily.Min[i])
	}
	return wf, nil
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, lat, lon float64, days int) (openMeteoResponse, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("hourly", "winddirection_10m")
	values.Set("daily", "temperature_2m_max,temperature_2m_min")
	values.Set("timezone", "auto")
	values.Set("forecast_days", strconv.Itoa(days))

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())

	var payload openMeteoResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return openMeteoResponse{}, fmt.Errorf("openmeteo: %w", err)
	}
	return payload, nil
}
