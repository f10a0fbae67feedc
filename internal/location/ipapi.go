package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/findit/internal/geo"
)

// DefaultIPAPIURL is the public ip-api.com JSON endpoint.
const DefaultIPAPIURL = "http://ip-api.com/json"

// IPLocator resolves the current position by geolocating the caller's public
// IP address. Accuracy is city-level at best, which is enough to gate the
// claim radius on hosts without a real positioning capability.
type IPLocator struct {
	baseURL string
	client  *http.Client
}

// NewIPLocator creates a locator against the given endpoint. An empty URL
// selects DefaultIPAPIURL.
func NewIPLocator(baseURL string) *IPLocator {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	return &IPLocator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Current queries the endpoint and returns the resolved coordinates.
func (l *IPLocator) Current(ctx context.Context) (geo.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL, nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Point{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if body.Status != "success" {
		return geo.Point{}, fmt.Errorf("%w: %s", ErrUnavailable, body.Message)
	}

	return geo.Point{Latitude: body.Lat, Longitude: body.Lon}, nil
}
