// Package claim implements the verification flow a finder walks through to
// claim an item: a location-proximity gate, then a security-question gate,
// then progressive disclosure of the item's hidden media.
package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/findit/internal/geo"
	"github.com/erazemk/findit/internal/location"
	"github.com/erazemk/findit/internal/model"
)

// RadiusKm is the proximity threshold: a finder must be within this distance
// of the reported location to claim an item. The boundary is inclusive.
const RadiusKm = 2.0

// State is a verifier's position in the claim flow.
type State string

const (
	// StateCheckingLocation is the initial state; the finder's position has
	// not been resolved yet (or resolving it failed and may be retried).
	StateCheckingLocation State = "checking_location"

	// StateOutOfRange means the finder's position was resolved but lies
	// outside RadiusKm. Only cancellation leaves this state.
	StateOutOfRange State = "out_of_range"

	// StateAwaitingAnswer means the finder is within range and may answer
	// the security question, with unbounded retries.
	StateAwaitingAnswer State = "awaiting_answer"

	// StateVerified means the answer matched; the hidden media is revealed
	// and the claim may be confirmed.
	StateVerified State = "verified"

	// StateCancelled is reached by explicit user cancellation, from any state.
	StateCancelled State = "cancelled"
)

var (
	// ErrAnswerMismatch is returned for a wrong security answer. The flow
	// stays in StateAwaitingAnswer, so the finder may retry.
	ErrAnswerMismatch = errors.New("incorrect answer")

	// ErrNotVerified guards the operations that require StateVerified.
	ErrNotVerified = errors.New("claim not verified")
)

// OutOfRangeError reports a finder outside the claim radius. It is a gating
// state, not a hard failure; the distance is carried for the user message.
type OutOfRangeError struct {
	DistanceKm float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("you are %.1f km away; you must be within %.0f km to claim this item",
		e.DistanceKm, RadiusKm)
}

// Verifier walks one claim attempt through the flow. It holds no persistent
// state; recording the claim is the caller's job once ClaimerInfo succeeds.
// A Verifier is not safe for concurrent use.
type Verifier struct {
	item     model.Item
	provider location.Provider

	state    State
	position geo.Point
	distance float64
}

// NewVerifier starts a claim attempt for the given item.
func NewVerifier(item model.Item, provider location.Provider) *Verifier {
	return &Verifier{
		item:     item,
		provider: provider,
		state:    StateCheckingLocation,
	}
}

// State returns the current state.
func (v *Verifier) State() State { return v.state }

// Item returns the item under claim.
func (v *Verifier) Item() model.Item { return v.item }

// DistanceKm returns the computed distance to the item. Valid once the
// location check has run.
func (v *Verifier) DistanceKm() float64 { return v.distance }

// CheckLocation resolves the finder's position and gates on the claim radius.
// On provider failure the state is unchanged and the location.ErrUnavailable
// error is returned, so the user may retry explicitly. Out of range yields an
// *OutOfRangeError and moves to StateOutOfRange; within range (inclusive)
// moves to StateAwaitingAnswer.
func (v *Verifier) CheckLocation(ctx context.Context) error {
	if v.state != StateCheckingLocation {
		return fmt.Errorf("cannot check location in state %q", v.state)
	}

	position, err := v.provider.Current(ctx)
	if err != nil {
		return fmt.Errorf("verifying claim location: %w", err)
	}

	v.position = position
	v.distance = geo.Distance(position, v.item.Location.Point())

	if v.distance > RadiusKm {
		v.state = StateOutOfRange
		return &OutOfRangeError{DistanceKm: v.distance}
	}

	v.state = StateAwaitingAnswer
	return nil
}

// SubmitAnswer compares the submitted text (case-folded, trimmed) against the
// item's stored answer. A mismatch returns ErrAnswerMismatch and keeps the
// state, allowing unbounded retries. A match moves to StateVerified.
func (v *Verifier) SubmitAnswer(text string) error {
	if v.state != StateAwaitingAnswer {
		return fmt.Errorf("cannot submit answer in state %q", v.state)
	}

	if !v.item.AnswerMatches(text) {
		return ErrAnswerMismatch
	}

	v.state = StateVerified
	return nil
}

// RevealedMedia returns the full media set once verified: the visible images
// followed by the hidden ones, plus the video reference if present.
func (v *Verifier) RevealedMedia() (images []string, video string, err error) {
	if v.state != StateVerified {
		return nil, "", ErrNotVerified
	}

	images = make([]string, 0, len(v.item.Images)+len(v.item.HiddenImages))
	images = append(images, v.item.Images...)
	images = append(images, v.item.HiddenImages...)
	return images, v.item.Video, nil
}

// ClaimerInfo returns the claim record to persist: the current time and the
// position that passed the proximity check.
func (v *Verifier) ClaimerInfo() (model.ClaimerInfo, error) {
	if v.state != StateVerified {
		return model.ClaimerInfo{}, ErrNotVerified
	}
	return model.ClaimerInfo{
		ClaimedAt: time.Now().UTC(),
		Location:  v.position,
	}, nil
}

// Cancel abandons the attempt, from any state. Nothing is persisted.
func (v *Verifier) Cancel() {
	v.state = StateCancelled
}
