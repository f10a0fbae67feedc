package geo

import (
	"math"
	"testing"
)

func TestDistanceSamePoint(t *testing.T) {
	p := Point{Latitude: 46.0569, Longitude: 14.5058}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected zero distance for identical points, got %f", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Point{Latitude: 46.0569, Longitude: 14.5058}  // Ljubljana
	b := Point{Latitude: 45.8150, Longitude: 15.9819}  // Zagreb
	if da, db := Distance(a, b), Distance(b, a); math.Abs(da-db) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", da, db)
	}
}

func TestDistanceKnownFixtures(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64 // km
	}{
		{"one degree longitude at equator", Point{0, 0}, Point{0, 1}, 111.2},
		{"one degree latitude", Point{0, 0}, Point{1, 0}, 111.2},
		{"ljubljana to maribor", Point{46.0569, 14.5058}, Point{46.5547, 15.6459}, 103.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			// Spherical approximation, allow 1% deviation.
			if math.Abs(got-tt.want) > tt.want*0.01 {
				t.Errorf("Distance() = %f km, want %f km (±1%%)", got, tt.want)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	center := Point{Latitude: 0, Longitude: 0}

	// ~1.11 km east of center.
	near := Point{Latitude: 0, Longitude: 0.01}
	if !WithinRadius(center, near, 2) {
		t.Error("expected point ~1.1 km away to be within a 2 km radius")
	}

	// ~11.1 km east of center.
	far := Point{Latitude: 0, Longitude: 0.1}
	if WithinRadius(center, far, 2) {
		t.Error("expected point ~11 km away to be outside a 2 km radius")
	}

	// The radius boundary is inclusive.
	if !WithinRadius(center, center, 0) {
		t.Error("expected zero distance to be within a zero radius")
	}
}
