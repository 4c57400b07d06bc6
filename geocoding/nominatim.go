// Package geocoding wraps the Nominatim reverse-geocoding API used to turn
// report coordinates into a human-readable place name.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client is a reverse-geocoding client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a geocoding client. An empty baseURL falls back to the public
// Nominatim instance.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode resolves coordinates to a display name. Failures return an
// UpstreamGeocodingError; callers are expected to degrade to FallbackName
// rather than fail their operation.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", &models.UpstreamGeocodingError{Err: err}
	}
	req.Header.Set("User-Agent", "durjog-prohori-api")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.UpstreamGeocodingError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &models.UpstreamGeocodingError{Err: fmt.Errorf("nominatim returned status %d", resp.StatusCode)}
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &models.UpstreamGeocodingError{Err: err}
	}
	if body.DisplayName == "" {
		return "", &models.UpstreamGeocodingError{Err: fmt.Errorf("nominatim returned no display name")}
	}
	return body.DisplayName, nil
}

// FallbackName synthesizes a display name from raw coordinates when the
// upstream is unavailable.
func FallbackName(lat, lng float64) string {
	return fmt.Sprintf("Location at %v, %v", lat, lng)
}
