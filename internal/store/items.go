// Package store persists the item collection as a single serialized slot,
// read fully on load and rewritten fully on every mutation. Single-writer,
// single-process use is assumed; there is no indexing and no versioning of
// the serialized shape.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/erazemk/findit/internal/model"
)

// itemsKey is the slot that holds the whole item collection.
const itemsKey = "findit_lost_items"

const upsertSlot = `INSERT INTO slots (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

var (
	// ErrItemNotFound is returned when no item with the given ID exists.
	ErrItemNotFound = errors.New("item not found")

	// ErrAlreadyClaimed is returned when marking an item that has already
	// been claimed. A claim is recorded at most once.
	ErrAlreadyClaimed = errors.New("item already claimed")
)

// LoadItems reads the whole item collection from the slot. A missing or
// unparsable slot yields an empty collection; read and parse failures are
// logged, never surfaced.
func LoadItems(ctx context.Context, db *sql.DB) []model.Item {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, itemsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		slog.Error("loading items slot", "error", err)
		return nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		slog.Error("parsing items slot, falling back to empty collection", "error", err)
		return nil
	}
	return items
}

// SaveItems serializes the collection and overwrites the slot. Failures are
// logged, never surfaced.
func SaveItems(ctx context.Context, db *sql.DB, items []model.Item) {
	raw, err := json.Marshal(items)
	if err != nil {
		slog.Error("serializing items", "error", err)
		return
	}
	if _, err := db.ExecContext(ctx, upsertSlot, itemsKey, string(raw)); err != nil {
		slog.Error("saving items slot", "error", err)
	}
}

// AppendItem adds one item to the collection and rewrites the slot.
func AppendItem(ctx context.Context, db *sql.DB, item model.Item) {
	items := LoadItems(ctx, db)
	SaveItems(ctx, db, append(items, item))
}

// GetItem returns the item with the given ID, or nil if it doesn't exist.
func GetItem(ctx context.Context, db *sql.DB, id string) *model.Item {
	for _, item := range LoadItems(ctx, db) {
		if item.ID == id {
			return &item
		}
	}
	return nil
}

// MarkClaimed records a claim on an item: sets claimed and claimerInfo and
// rewrites the slot, all inside one transaction so that at most one claim
// wins. Returns ErrAlreadyClaimed if the item was claimed before, and
// ErrItemNotFound if the ID is unknown. Infrastructure failures are logged
// and swallowed like every other persistence failure.
func MarkClaimed(ctx context.Context, db *sql.DB, id string, info model.ClaimerInfo) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("starting claim transaction", "error", err)
		return nil
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, itemsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return ErrItemNotFound
	}
	if err != nil {
		slog.Error("loading items slot", "error", err)
		return nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		// Same fallback as LoadItems: a corrupted slot reads as empty.
		slog.Error("parsing items slot", "error", err)
		return ErrItemNotFound
	}

	idx := -1
	for n := range items {
		if items[n].ID == id {
			idx = n
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}
	if items[idx].Claimed {
		return ErrAlreadyClaimed
	}

	claimer := info
	items[idx].Claimed = true
	items[idx].ClaimerInfo = &claimer

	out, err := json.Marshal(items)
	if err != nil {
		slog.Error("serializing items", "error", err)
		return nil
	}
	if _, err := tx.ExecContext(ctx, upsertSlot, itemsKey, string(out)); err != nil {
		slog.Error("saving items slot", "error", err)
		return nil
	}
	if err := tx.Commit(); err != nil {
		slog.Error("committing claim", "error", err)
	}
	return nil
}

func decodeItems(raw string) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}
