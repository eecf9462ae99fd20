// ABOUTME: Data models for directory sync entities
// ABOUTME: Defines RemoteContact, LocalContact, Group, Scope, and pass statistics
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RemoteContact is one directory entry as fetched for a single pass.
// It is never mutated; a fresh snapshot is fetched each pass.
type RemoteContact struct {
	SourceID    string `json:"source_id"`
	Name        string `json:"name,omitempty"`
	CountryCode string `json:"country_code"`
	Email       string `json:"email"`
	PhoneMobile string `json:"phone_mobile,omitempty"`
	PhoneFixed  string `json:"phone_fixed,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// LocalContact mirrors one previously-synced directory entry.
// SourceID is set once at creation and never changed; at most one
// LocalContact exists per (account, SourceID).
type LocalContact struct {
	ID          uuid.UUID  `json:"id"`
	Account     string     `json:"account"`
	SourceID    string     `json:"source_id"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Email       string     `json:"email,omitempty"`
	PhoneMobile string     `json:"phone_mobile,omitempty"`
	PhoneFixed  string     `json:"phone_fixed,omitempty"`
	// PhotoLastModified is the opaque change token from the last successful
	// photo download. Empty means never fetched or confirmed absent.
	PhotoLastModified string    `json:"photo_last_modified,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Group is a local grouping construct keyed by (account, title).
// Groups are created lazily and never deleted by the sync engine.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Account   string    `json:"account"`
	Title     string    `json:"title"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}

// Scope defines which remote records a pass considers: the local account
// they belong to and the set of enabled region codes. It is resolved by the
// caller before a pass starts, never consulted from mutable settings mid-pass.
type Scope struct {
	Account string
	Regions []string
}

// Includes reports whether a record with the given country code is in scope.
// Comparison is case-insensitive. An empty region list syncs nothing.
func (s Scope) Includes(countryCode string) bool {
	for _, r := range s.Regions {
		if strings.EqualFold(r, countryCode) {
			return true
		}
	}
	return false
}

// SyncStats aggregates counters for one sync pass.
type SyncStats struct {
	RecordsProcessed int `json:"records_processed"`
	Inserts          int `json:"inserts"`
	Updates          int `json:"updates"`
	Deletes          int `json:"deletes"`
	AuthFailures     int `json:"auth_failures"`
	OtherFailures    int `json:"other_failures"`
}

// RecordFailure is a per-record error that did not abort the pass.
type RecordFailure struct {
	SourceID string
	Err      error
}

func (f RecordFailure) Error() string {
	return f.SourceID + ": " + f.Err.Error()
}

func (f RecordFailure) Unwrap() error {
	return f.Err
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)
