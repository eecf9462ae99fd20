// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS groups (
	id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	title TEXT NOT NULL,
	visible INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	UNIQUE(account, title)
);

CREATE INDEX IF NOT EXISTS idx_groups_account ON groups(account);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	source_id TEXT NOT NULL,
	group_id TEXT,
	name TEXT,
	email TEXT,
	phone_mobile TEXT,
	phone_fixed TEXT,
	photo BLOB,
	photo_last_modified TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(account, source_id),
	FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE INDEX IF NOT EXISTS idx_contacts_account ON contacts(account);
CREATE INDEX IF NOT EXISTS idx_contacts_group_id ON contacts(group_id);

CREATE TABLE IF NOT EXISTS sync_state (
	account TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	status TEXT NOT NULL DEFAULT 'idle',
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates all tables if they don't exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
