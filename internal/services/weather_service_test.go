// internal/services/weather_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/config"
)

type stubWeatherProvider struct {
	calls  int
	report *WeatherReport
	err    error
}

func (p *stubWeatherProvider) Fetch(ctx context.Context, location string) (*WeatherReport, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	r := *p.report
	r.Location = location
	return &r, nil
}

func TestWeatherServiceWithoutCache(t *testing.T) {
	provider := &stubWeatherProvider{report: &WeatherReport{TempC: 21.5, Condition: "clear sky"}}
	svc := NewWeatherService(provider, nil, config.WeatherConfig{CacheTTL: 600})

	report, err := svc.GetWeather(context.Background(), "Nairobi")
	assert.NoError(t, err)
	assert.Equal(t, "Nairobi", report.Location)
	assert.Equal(t, 21.5, report.TempC)
	assert.False(t, report.RetrievedAt.IsZero())

	// With no cache every lookup hits the provider.
	_, err = svc.GetWeather(context.Background(), "Nairobi")
	assert.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestWeatherServiceRequiresLocation(t *testing.T) {
	svc := NewWeatherService(&stubWeatherProvider{report: &WeatherReport{}}, nil, config.WeatherConfig{})

	_, err := svc.GetWeather(context.Background(), "")
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func TestWeatherServiceProviderFailure(t *testing.T) {
	provider := &stubWeatherProvider{err: assert.AnError}
	svc := NewWeatherService(provider, nil, config.WeatherConfig{})

	_, err := svc.GetWeather(context.Background(), "Nairobi")
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}
