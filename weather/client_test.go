package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		w.Write([]byte(`{"current": {"temperature_2m": 31.5, "wind_speed_10m": 12.2, "precipitation": 0.4, "weather_code": 61}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	obs, err := c.Current(context.Background(), 23.8103, 90.4125)
	assert.NoError(t, err)
	assert.Equal(t, 31.5, obs.TemperatureC)
	assert.Equal(t, 12.2, obs.WindSpeedKmh)
	assert.Equal(t, 0.4, obs.Precipitation)
	assert.Equal(t, 61, obs.WeatherCode)
}

func TestCurrentUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Current(context.Background(), 23.8103, 90.4125)
	assert.Error(t, err)
}
