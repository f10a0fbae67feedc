package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The application persists its whole
// state as serialized text under named keys in the slots table, so there is
// nothing relational here and no schema versioning of the slot contents.
const schema = `
CREATE TABLE IF NOT EXISTS slots (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
