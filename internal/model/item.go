package model

import (
	"strings"
	"time"

	"github.com/erazemk/findit/internal/geo"
)

// Item is one lost-item report. All fields except Claimed and ClaimerInfo are
// fixed at report time. JSON field names match the serialized slot format.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Images is always visible; HiddenImages and Video are revealed only
	// after a successful claim verification.
	Images       []string `json:"images"`
	HiddenImages []string `json:"hiddenImages"`
	Video        string   `json:"video,omitempty"`

	Location Location `json:"location"`

	SecurityQuestion string `json:"securityQuestion"`
	// SecurityAnswer is stored normalized (see NormalizeAnswer), so
	// comparison is case- and whitespace-insensitive.
	SecurityAnswer string `json:"securityAnswer"`

	DateReported time.Time `json:"dateReported"`

	// Claimed never transitions back to false; once true, ClaimerInfo is set.
	Claimed     bool         `json:"claimed"`
	ClaimerInfo *ClaimerInfo `json:"claimerInfo,omitempty"`
}

// Location is a geographic position with a human-readable address,
// fixed at report time.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Point returns the coordinate part of the location.
func (l Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}

// ClaimerInfo records a successful claim: when it happened and where the
// claimer was at the time. Set exactly once.
type ClaimerInfo struct {
	ClaimedAt time.Time `json:"claimedAt"`
	Location  geo.Point `json:"location"`
}

// NormalizeAnswer lower-cases and trims a security answer so that stored
// answers and submitted answers compare case- and whitespace-insensitively.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AnswerMatches reports whether the submitted text matches the item's stored
// (already normalized) security answer.
func (i *Item) AnswerMatches(submitted string) bool {
	return NormalizeAnswer(submitted) == i.SecurityAnswer
}
