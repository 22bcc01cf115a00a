// internal/services/weather_provider.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agrilink/agrilink-backend/internal/config"
)

// OpenWeatherProvider fetches current conditions from the OpenWeather current
// weather endpoint.
type OpenWeatherProvider struct {
	cfg    config.WeatherConfig
	client *http.Client
}

func NewOpenWeatherProvider(cfg config.WeatherConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s with metric units
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, location string) (*WeatherReport, error) {
	endpoint := fmt.Sprintf("%s/weather?q=%s&units=metric&appid=%s",
		p.cfg.BaseURL, url.QueryEscape(location), p.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	report := &WeatherReport{
		Location: body.Name,
		TempC:    body.Main.Temp,
		Humidity: body.Main.Humidity,
		WindKph:  body.Wind.Speed * 3.6,
	}
	if report.Location == "" {
		report.Location = location
	}
	if len(body.Weather) > 0 {
		report.Condition = body.Weather[0].Description
	}

	return report, nil
}
