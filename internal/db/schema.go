package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    staff_code    TEXT NOT NULL UNIQUE,
    first_name    TEXT NOT NULL DEFAULT '',
    last_name     TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
    disabled      BOOLEAN NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
    id     TEXT PRIMARY KEY,
    name   TEXT NOT NULL UNIQUE,
    prefix TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS sequences (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
    id             TEXT PRIMARY KEY,
    code           TEXT NOT NULL UNIQUE,
    category_id    TEXT NOT NULL REFERENCES categories(id),
    name           TEXT NOT NULL,
    specification  TEXT,
    installed_date DATETIME NOT NULL,
    location       TEXT NOT NULL,
    state          TEXT NOT NULL DEFAULT 'available' CHECK (state IN ('available', 'not_available', 'assigned', 'waiting_for_recycling', 'recycled')),
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    version        INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_assets_location ON assets(location);

CREATE TABLE IF NOT EXISTS assignments (
    id             TEXT PRIMARY KEY,
    asset_id       TEXT NOT NULL REFERENCES assets(id),
    assigned_by_id TEXT NOT NULL REFERENCES users(id),
    assigned_to_id TEXT NOT NULL REFERENCES users(id),
    assigned_date  DATETIME NOT NULL,
    note           TEXT,
    state          TEXT NOT NULL CHECK (state IN ('waiting_for_acceptance', 'accepted', 'declined', 'waiting_for_returning', 'completed')),
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    version        INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_assignments_asset ON assignments(asset_id);
CREATE INDEX IF NOT EXISTS idx_assignments_assigned_to ON assignments(assigned_to_id);

CREATE TABLE IF NOT EXISTS returning_requests (
    id              TEXT PRIMARY KEY,
    assignment_id   TEXT NOT NULL REFERENCES assignments(id),
    requested_by_id TEXT NOT NULL REFERENCES users(id),
    accepted_by_id  TEXT REFERENCES users(id),
    returned_date   DATETIME,
    state           TEXT NOT NULL CHECK (state IN ('waiting_for_returning', 'completed', 'rejected')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    version         INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_returning_requests_assignment ON returning_requests(assignment_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
