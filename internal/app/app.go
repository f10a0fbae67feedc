// Package app wires the stores, the location provider and the claim flow
// into one explicit application state object. Its methods are the action
// surface a presentation layer (CLI, web UI) calls into.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/findit/internal/claim"
	"github.com/erazemk/findit/internal/location"
	"github.com/erazemk/findit/internal/media"
	"github.com/erazemk/findit/internal/model"
	"github.com/erazemk/findit/internal/notify"
	"github.com/erazemk/findit/internal/store"
)

// App holds the whole application state: the database the item collection is
// mirrored to, the location provider, the media store and the notification
// center. Passed explicitly to presentation code, never ambient.
type App struct {
	db            *sql.DB
	locator       location.Provider
	geocoder      *location.Geocoder
	media         media.Store
	notifications *notify.Center
}

// Options configures an App. Zero values pick the local defaults: inline
// media references and a standard notification center. Locator is required.
type Options struct {
	Locator       location.Provider
	Geocoder      *location.Geocoder // optional; addresses fall back to coordinates
	Media         media.Store
	Notifications *notify.Center
}

// New creates the application state object.
func New(db *sql.DB, opts Options) *App {
	if opts.Media == nil {
		opts.Media = media.Inline{}
	}
	if opts.Notifications == nil {
		opts.Notifications = notify.NewCenter(0)
	}
	return &App{
		db:            db,
		locator:       opts.Locator,
		geocoder:      opts.Geocoder,
		media:         opts.Media,
		notifications: opts.Notifications,
	}
}

// Notifications exposes the notification center for the presentation layer.
func (a *App) Notifications() *notify.Center { return a.notifications }

// Upload is one raw media file handed in by the reporter.
type Upload struct {
	Name string
	Data []byte
}

// ReportDraft carries everything a reporter submits about a lost item.
type ReportDraft struct {
	Name             string
	Description      string
	SecurityQuestion string
	SecurityAnswer   string
	Photos           []Upload
	Video            *Upload
	// Location overrides the provider-resolved position when set.
	Location *model.Location
}

// ReportItem validates a draft, processes its media, splits the photos into
// visible and hidden halves, resolves the report location and appends the new
// item to the store.
func (a *App) ReportItem(ctx context.Context, draft ReportDraft) (*model.Item, error) {
	if draft.Name == "" || draft.Description == "" {
		return nil, errors.New("name and description are required")
	}
	if draft.SecurityQuestion == "" || draft.SecurityAnswer == "" {
		return nil, errors.New("security question and answer are required")
	}
	if len(draft.Photos) == 0 {
		a.notifications.Error("Please upload at least one photo.")
		return nil, errors.New("at least one photo is required")
	}

	refs := make([]string, 0, len(draft.Photos))
	for _, photo := range draft.Photos {
		res, err := media.ProcessImage(photo.Data)
		if err != nil {
			return nil, fmt.Errorf("photo %q: %w", photo.Name, err)
		}
		ref, err := a.media.Put(ctx, photo.Name, res.Data, res.MIME)
		if err != nil {
			return nil, fmt.Errorf("storing photo %q: %w", photo.Name, err)
		}
		refs = append(refs, ref)
	}

	var video string
	if draft.Video != nil {
		res, err := media.ProcessVideo(draft.Video.Data)
		if err != nil {
			return nil, fmt.Errorf("video %q: %w", draft.Video.Name, err)
		}
		video, err = a.media.Put(ctx, draft.Video.Name, res.Data, res.MIME)
		if err != nil {
			return nil, fmt.Errorf("storing video %q: %w", draft.Video.Name, err)
		}
	}

	loc, err := a.resolveLocation(ctx, draft.Location)
	if err != nil {
		a.notifications.Error("Failed to get location. Please enable location services.")
		return nil, err
	}

	visible, hidden := media.Split(refs)
	item := model.Item{
		ID:               uuid.NewString(),
		Name:             draft.Name,
		Description:      draft.Description,
		Images:           visible,
		HiddenImages:     hidden,
		Video:            video,
		Location:         loc,
		SecurityQuestion: draft.SecurityQuestion,
		SecurityAnswer:   model.NormalizeAnswer(draft.SecurityAnswer),
		DateReported:     time.Now().UTC(),
	}

	store.AppendItem(ctx, a.db, item)
	a.notifications.Success("Lost item reported successfully! Others can now help you find it.")
	return &item, nil
}

// resolveLocation uses the draft's fixed location when present and the
// provider otherwise. The address comes from reverse geocoding, falling back
// to formatted coordinates when the geocoder is absent or fails.
func (a *App) resolveLocation(ctx context.Context, fixed *model.Location) (model.Location, error) {
	if fixed != nil {
		loc := *fixed
		if loc.Address == "" {
			loc.Address = a.lookupAddress(ctx, loc)
		}
		return loc, nil
	}

	point, err := a.locator.Current(ctx)
	if err != nil {
		return model.Location{}, err
	}

	loc := model.Location{Latitude: point.Latitude, Longitude: point.Longitude}
	loc.Address = a.lookupAddress(ctx, loc)
	return loc, nil
}

func (a *App) lookupAddress(ctx context.Context, loc model.Location) string {
	if a.geocoder != nil {
		if addr, err := a.geocoder.Reverse(ctx, loc.Point()); err == nil {
			return addr
		}
	}
	return location.FormatPoint(loc.Point())
}

// ListItems returns the whole collection, oldest first.
func (a *App) ListItems(ctx context.Context) []model.Item {
	return store.LoadItems(ctx, a.db)
}

// ListUnclaimedItems returns the items still waiting to be claimed.
func (a *App) ListUnclaimedItems(ctx context.Context) []model.Item {
	var out []model.Item
	for _, item := range store.LoadItems(ctx, a.db) {
		if !item.Claimed {
			out = append(out, item)
		}
	}
	return out
}

// GetItem returns one item by ID.
func (a *App) GetItem(ctx context.Context, id string) (*model.Item, error) {
	item := store.GetItem(ctx, a.db, id)
	if item == nil {
		return nil, store.ErrItemNotFound
	}
	return item, nil
}

// BeginClaim starts a claim attempt on an item and runs the location check.
// The verifier handle is returned even when the check fails, so the user can
// retry after fixing their location services. Already-claimed items are
// rejected up front.
func (a *App) BeginClaim(ctx context.Context, id string) (*claim.Verifier, error) {
	item, err := a.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Claimed {
		a.notifications.Error("This item has already been claimed.")
		return nil, store.ErrAlreadyClaimed
	}

	v := claim.NewVerifier(*item, a.locator)
	if err := v.CheckLocation(ctx); err != nil {
		var oor *claim.OutOfRangeError
		switch {
		case errors.As(err, &oor):
			a.notifications.Error(fmt.Sprintf(
				"You are %.1f km away. You must be within %.0f km to claim this item.",
				oor.DistanceKm, claim.RadiusKm))
		case errors.Is(err, location.ErrUnavailable):
			a.notifications.Error("Unable to verify your location. Please enable location services.")
		}
		return v, err
	}

	return v, nil
}

// SubmitAnswer forwards a security answer to the verifier and publishes the
// outcome. A mismatch keeps the attempt open for retries.
func (a *App) SubmitAnswer(v *claim.Verifier, text string) error {
	if err := v.SubmitAnswer(text); err != nil {
		if errors.Is(err, claim.ErrAnswerMismatch) {
			a.notifications.Error("Incorrect answer. Please try again.")
		}
		return err
	}
	a.notifications.Success("Correct answer! You can now see all details.")
	return nil
}

// ConfirmClaim records a verified claim: marks the item claimed with the
// claimer's record. At most one claim wins; a lost race surfaces as
// store.ErrAlreadyClaimed.
func (a *App) ConfirmClaim(ctx context.Context, v *claim.Verifier) (model.ClaimerInfo, error) {
	info, err := v.ClaimerInfo()
	if err != nil {
		return model.ClaimerInfo{}, err
	}

	if err := store.MarkClaimed(ctx, a.db, v.Item().ID, info); err != nil {
		if errors.Is(err, store.ErrAlreadyClaimed) {
			a.notifications.Error("This item has already been claimed.")
		}
		return model.ClaimerInfo{}, err
	}

	a.notifications.Success("Item claimed successfully! You now have access to full details.")
	return info, nil
}

// CancelClaim abandons a claim attempt without persisting anything.
func (a *App) CancelClaim(v *claim.Verifier) {
	v.Cancel()
}
