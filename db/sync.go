// ABOUTME: Database operations for the sync_state table
// ABOUTME: Tracks per-account sync status, last run time, and last error
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SyncState represents the sync bookkeeping for one account.
type SyncState struct {
	Account      string
	LastSyncTime *time.Time
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetSyncState retrieves the sync state for an account, or nil if the
// account has never synced.
func GetSyncState(db *sql.DB, account string) (*SyncState, error) {
	var state SyncState
	var lastSyncTime sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT account, last_sync_time, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE account = ?
	`, account).Scan(
		&state.Account,
		&lastSyncTime,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}

	return &state, nil
}

// UpdateSyncStatus updates the sync status for an account.
func UpdateSyncStatus(db *sql.DB, account, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (account, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(account) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, account, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// UpdateSyncTime records the completion time of a successful pass.
func UpdateSyncTime(db *sql.DB, account string, at time.Time) error {
	_, err := db.Exec(`
		UPDATE sync_state SET last_sync_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE account = ?
	`, at, account)
	if err != nil {
		return fmt.Errorf("failed to update sync time: %w", err)
	}
	return nil
}
