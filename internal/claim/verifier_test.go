package claim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/erazemk/findit/internal/geo"
	"github.com/erazemk/findit/internal/location"
	"github.com/erazemk/findit/internal/model"
)

// lostItem is reported at the equator/prime meridian so test distances are
// easy to reason about: 0.01 degrees of longitude is ~1.11 km.
func lostItem() model.Item {
	return model.Item{
		ID:               "item-1",
		Name:             "Wallet",
		Images:           []string{"img-1", "img-2"},
		HiddenImages:     []string{"hidden-1", "hidden-2"},
		Video:            "video-1",
		Location:         model.Location{Latitude: 0, Longitude: 0, Address: "Null Island"},
		SecurityQuestion: "What color is it?",
		SecurityAnswer:   "blue",
	}
}

func TestCheckLocationWithinRange(t *testing.T) {
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.01)) // ~1.11 km

	if err := v.CheckLocation(context.Background()); err != nil {
		t.Fatalf("CheckLocation: %v", err)
	}
	if v.State() != StateAwaitingAnswer {
		t.Errorf("expected StateAwaitingAnswer, got %q", v.State())
	}
}

func TestCheckLocationBoundaryIsInclusive(t *testing.T) {
	// ~1.99 km away: just inside the radius.
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.0179))
	if err := v.CheckLocation(context.Background()); err != nil {
		t.Fatalf("expected ~1.99 km to pass the 2 km gate, got %v", err)
	}

	// ~2.01 km away: just outside.
	v = NewVerifier(lostItem(), location.NewStatic(0, 0.0181))
	err := v.CheckLocation(context.Background())
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected OutOfRangeError for ~2.01 km, got %v", err)
	}
}

func TestCheckLocationOutOfRange(t *testing.T) {
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.1)) // ~11.1 km

	err := v.CheckLocation(context.Background())
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected OutOfRangeError, got %v", err)
	}
	if v.State() != StateOutOfRange {
		t.Errorf("expected StateOutOfRange, got %q", v.State())
	}

	// The user message reports the distance rounded to one decimal place.
	if !strings.Contains(oor.Error(), "11.1 km away") {
		t.Errorf("unexpected out-of-range message: %q", oor.Error())
	}

	// Out of range is a dead end for this attempt.
	if err := v.SubmitAnswer("blue"); err == nil {
		t.Error("expected answers to be rejected while out of range")
	}
}

func TestCheckLocationProviderFailure(t *testing.T) {
	calls := 0
	flaky := location.Func(func(ctx context.Context) (geo.Point, error) {
		calls++
		if calls == 1 {
			return geo.Point{}, fmt.Errorf("%w: permission denied", location.ErrUnavailable)
		}
		return geo.Point{Latitude: 0, Longitude: 0.01}, nil
	})

	v := NewVerifier(lostItem(), flaky)

	err := v.CheckLocation(context.Background())
	if !errors.Is(err, location.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if v.State() != StateCheckingLocation {
		t.Errorf("expected state unchanged after provider failure, got %q", v.State())
	}

	// An explicit retry may still succeed.
	if err := v.CheckLocation(context.Background()); err != nil {
		t.Fatalf("retry after provider failure: %v", err)
	}
	if v.State() != StateAwaitingAnswer {
		t.Errorf("expected StateAwaitingAnswer after retry, got %q", v.State())
	}
}

func TestSubmitAnswerRequiresLocationCheck(t *testing.T) {
	v := NewVerifier(lostItem(), location.NewStatic(0, 0))
	if err := v.SubmitAnswer("blue"); err == nil {
		t.Error("expected answers to be rejected before the location check")
	}
}

func TestSubmitAnswerRetries(t *testing.T) {
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.01))
	if err := v.CheckLocation(context.Background()); err != nil {
		t.Fatalf("CheckLocation: %v", err)
	}

	// Wrong answers keep the state and allow unbounded retries.
	for _, wrong := range []string{"red", "Blue2", ""} {
		if err := v.SubmitAnswer(wrong); !errors.Is(err, ErrAnswerMismatch) {
			t.Errorf("SubmitAnswer(%q): expected ErrAnswerMismatch, got %v", wrong, err)
		}
		if v.State() != StateAwaitingAnswer {
			t.Fatalf("expected state to survive a wrong answer, got %q", v.State())
		}
	}

	// Matching is case- and whitespace-insensitive.
	if err := v.SubmitAnswer(" Blue "); err != nil {
		t.Fatalf("SubmitAnswer(\" Blue \"): %v", err)
	}
	if v.State() != StateVerified {
		t.Errorf("expected StateVerified, got %q", v.State())
	}
}

func TestRevealedMediaGatedOnVerification(t *testing.T) {
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.01))

	if _, _, err := v.RevealedMedia(); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified before verification, got %v", err)
	}

	v.CheckLocation(context.Background())
	v.SubmitAnswer("blue")

	images, video, err := v.RevealedMedia()
	if err != nil {
		t.Fatalf("RevealedMedia: %v", err)
	}

	want := []string{"img-1", "img-2", "hidden-1", "hidden-2"}
	if len(images) != len(want) {
		t.Fatalf("expected %d images, got %d", len(want), len(images))
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("image %d: got %q, want %q (visible first, then hidden)", i, images[i], want[i])
		}
	}
	if video != "video-1" {
		t.Errorf("expected video to be revealed, got %q", video)
	}
}

func TestClaimerInfo(t *testing.T) {
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.01))

	if _, err := v.ClaimerInfo(); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified before verification, got %v", err)
	}

	v.CheckLocation(context.Background())
	v.SubmitAnswer("blue")

	info, err := v.ClaimerInfo()
	if err != nil {
		t.Fatalf("ClaimerInfo: %v", err)
	}
	if info.ClaimedAt.IsZero() {
		t.Error("expected claimedAt to be set")
	}
	if info.Location != (geo.Point{Latitude: 0, Longitude: 0.01}) {
		t.Errorf("expected the verified position to be recorded, got %+v", info.Location)
	}
}

func TestCancelFromAnyState(t *testing.T) {
	// Fresh verifier.
	v := NewVerifier(lostItem(), location.NewStatic(0, 0.01))
	v.Cancel()
	if v.State() != StateCancelled {
		t.Errorf("expected StateCancelled, got %q", v.State())
	}
	if err := v.CheckLocation(context.Background()); err == nil {
		t.Error("expected location checks to fail after cancellation")
	}

	// Mid-flow.
	v = NewVerifier(lostItem(), location.NewStatic(0, 0.01))
	v.CheckLocation(context.Background())
	v.Cancel()
	if err := v.SubmitAnswer("blue"); err == nil {
		t.Error("expected answers to fail after cancellation")
	}

	// Even after verification the user may walk away.
	v = NewVerifier(lostItem(), location.NewStatic(0, 0.01))
	v.CheckLocation(context.Background())
	v.SubmitAnswer("blue")
	v.Cancel()
	if _, err := v.ClaimerInfo(); !errors.Is(err, ErrNotVerified) {
		t.Errorf("expected ErrNotVerified after cancellation, got %v", err)
	}
}
