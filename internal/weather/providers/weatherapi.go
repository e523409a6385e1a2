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

// DefaultWeatherAPIURL is the WeatherAPI.com forecast endpoint.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1/forecast.json"

// WeatherAPIProvider implements the weather.Gateway interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: DefaultWeatherAPIURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC float64 `json:"maxtemp_c"`
				MinTempC float64 `json:"mintemp_c"`
			} `json:"day"`
			Hour []struct {
				WindDegree float64 `json:"wind_degree"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// WeatherAPI always reports Celsius under the *_c fields.
var weatherAPIUnits = weather.Units{Max: "°C", Min: "°C"}

func (p *WeatherAPIProvider) FetchDaily(ctx context.Context, lat, lon float64) (weather.DailyForecast, error) {
	payload, err := p.fetch(ctx, lat, lon, dailyForecastDays)
	if err != nil {
		return weather.DailyForecast{}, err
	}

	df := weather.DailyForecast{Units: weatherAPIUnits}
	for _, fd := range payload.Forecast.ForecastDay {
		df.Highs = append(df.Highs, fd.Day.MaxTempC)
		df.Lows = append(df.Lows, fd.Day.MinTempC)
		for _, h := range fd.Hour {
			df.WindDirections = append(df.WindDirections, h.WindDegree)
		}
	}
	return df, nil
}

func (p *WeatherAPIProvider) FetchWeekly(ctx context.Context, lat, lon float64) (weather.WeeklyForecast, error) {
	payload, err := p.fetch(ctx, lat, lon, weeklyForecastDays)
	if err != nil {
		return weather.WeeklyForecast{}, err
	}

	var wf weather.WeeklyForecast
	for _, fd := range payload.Forecast.ForecastDay {
		day, err := time.Parse(time.DateOnly, fd.Date)
		if err != nil {
			return weather.WeeklyForecast{}, fmt.Errorf("weatherapi: invalid date %q: %w", fd.Date, err)
		}
		wf.Dates = append(wf.Dates, day)
		wf.Highs = append(wf.Highs, fd.Day.MaxTempC)
		wf.Lows = append(wf.Lows, fd.Day.MinTempC)
	}
	return wf, nil
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, lat, lon float64, days int) (weatherAPIResponse, error) {
	if p.apiKey == "" {
		return weatherAPIResponse{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	values.Set("q", fmt.Sprintf("%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64)))
	values.Set("days", strconv.Itoa(days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())

	var payload weatherAPIResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weatherAPIResponse{}, fmt.Errorf("weatherapi: %w", err)
	}
	return payload, nil
}
