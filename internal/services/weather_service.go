// internal/services/weather_service.go
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/config"
)

// WeatherReport is the normalized shape returned to clients regardless of the
// upstream provider.
type WeatherReport struct {
	Location    string    `json:"location"`
	TempC       float64   `json:"temp_c"`
	Humidity    float64   `json:"humidity"`
	WindKph     float64   `json:"wind_kph"`
	Condition   string    `json:"condition"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// WeatherProvider is the external collaborator that actually fetches weather
// data. Retrieval itself lives outside this service.
type WeatherProvider interface {
	Fetch(ctx context.Context, location string) (*WeatherReport, error)
}

// WeatherService caches provider responses in redis. Cache failures fall
// through to the provider.
type WeatherService struct {
	provider WeatherProvider
	cache    *redis.Client
	ttl      time.Duration
}

func NewWeatherService(provider WeatherProvider, cache *redis.Client, cfg config.WeatherConfig) *WeatherService {
	return &WeatherService{
		provider: provider,
		cache:    cache,
		ttl:      time.Duration(cfg.CacheTTL) * time.Second,
	}
}

func (s *WeatherService) GetWeather(ctx context.Context, location string) (*WeatherReport, error) {
	if location == "" {
		return nil, apperrors.InvalidRequest("location is required")
	}

	key := "weather:" + location

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var report WeatherReport
			if err := json.Unmarshal([]byte(cached), &report); err == nil {
				return &report, nil
			}
		} else if err != redis.Nil {
			logrus.WithError(err).Warn("Weather cache read failed")
		}
	}

	if s.provider == nil {
		return nil, apperrors.Internal("weather provider not configured", nil)
	}

	report, err := s.provider.Fetch(ctx, location)
	if err != nil {
		return nil, apperrors.Internal("weather lookup failed", err)
	}
	report.RetrievedAt = time.Now()

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
				logrus.WithError(err).Warn("Weather cache write failed")
			}
		}
	}

	return report, nil
}
