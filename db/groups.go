// ABOUTME: Group database operations
// ABOUTME: Idempotent ensure-group-by-title lookup and creation
package db

import (
	"database/sql"
	"fmt"
	"time"

	"dirsync/models"

	"github.com/google/uuid"
)

// EnsureGroup returns the group ID for (account, title), creating the group
// on first use. Groups are created visible but not self-syncing from the
// user's point of view; the engine never deletes them.
func EnsureGroup(db *sql.DB, account, title string) (uuid.UUID, error) {
	id, err := getGroupID(db, account, title)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("failed to look up group: %w", err)
	}

	// Use INSERT OR IGNORE to handle the race where concurrent workers
	// process contacts from the same region in the same pass. If creation
	// lost the race, the re-lookup below finds the winner's row.
	_, err = db.Exec(`
		INSERT OR IGNORE INTO groups (id, account, title, visible, created_at)
		VALUES (?, ?, ?, 1, ?)
	`, uuid.New().String(), account, title, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create group: %w", err)
	}

	id, err = getGroupID(db, account, title)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up group after create: %w", err)
	}
	return id, nil
}

func getGroupID(db *sql.DB, account, title string) (uuid.UUID, error) {
	var id string
	err := db.QueryRow(`
		SELECT id FROM groups WHERE account = ? AND title = ?
	`, account, title).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(id)
}

// ListGroups returns all groups for an account.
func ListGroups(db *sql.DB, account string) ([]models.Group, error) {
	rows, err := db.Query(`
		SELECT id, account, title, visible, created_at
		FROM groups
		WHERE account = ?
		ORDER BY title
	`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		var id string
		if err := rows.Scan(&id, &g.Account, &g.Title, &g.Visible, &g.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid group id %q: %w", id, err)
		}
		g.ID = parsed
		groups = append(groups, g)
	}

	return groups, rows.Err()
}
