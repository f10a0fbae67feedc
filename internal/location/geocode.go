package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erazemk/findit/internal/geo"
)

// DefaultGeocodeURL is the public Nominatim instance.
const DefaultGeocodeURL = "https://nominatim.openstreetmap.org"

// Geocoder turns coordinates into a human-readable address using a
// Nominatim-compatible reverse geocoding endpoint.
type Geocoder struct {
	baseURL string
	client  *http.Client
}

// NewGeocoder creates a geocoder against the given endpoint. An empty URL
// selects DefaultGeocodeURL.
func NewGeocoder(baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodeURL
	}
	return &Geocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns the address for the given coordinates. Callers should fall
// back to FormatPoint when it fails; a missing address is never fatal.
func (g *Geocoder) Reverse(ctx context.Context, p geo.Point) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Longitude, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building reverse geocode request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "findit/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoding: unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding reverse geocode response: %w", err)
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("reverse geocoding: no address for %s", FormatPoint(p))
	}

	return body.DisplayName, nil
}

// FormatPoint renders coordinates as a fallback address string.
func FormatPoint(p geo.Point) string {
	return fmt.Sprintf("%.5f, %.5f", p.Latitude, p.Longitude)
}
