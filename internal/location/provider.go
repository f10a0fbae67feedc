// Package location resolves the user's current position. The concrete source
// is host-dependent (fixed coordinates, IP geolocation), so everything is
// behind the Provider interface and failure collapses into ErrUnavailable,
// which callers treat as non-fatal.
package location

import (
	"context"
	"errors"

	"github.com/erazemk/findit/internal/geo"
)

// ErrUnavailable is returned when the current position cannot be determined
// (denied, offline, timeout). Check for it with errors.Is.
var ErrUnavailable = errors.New("location unavailable")

// Provider asynchronously resolves the current position. Implementations
// must honor ctx cancellation and wrap failures in ErrUnavailable.
type Provider interface {
	Current(ctx context.Context) (geo.Point, error)
}

// Static is a Provider that always returns a fixed position, for hosts
// without a location capability (coordinates supplied by the user).
type Static struct {
	Point geo.Point
}

// NewStatic creates a provider pinned to the given coordinates.
func NewStatic(latitude, longitude float64) *Static {
	return &Static{Point: geo.Point{Latitude: latitude, Longitude: longitude}}
}

// Current returns the fixed position.
func (s *Static) Current(_ context.Context) (geo.Point, error) {
	return s.Point, nil
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context) (geo.Point, error)

// Current calls the wrapped function.
func (f Func) Current(ctx context.Context) (geo.Point, error) {
	return f(ctx)
}
