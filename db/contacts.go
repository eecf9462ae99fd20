// ABOUTME: Contact database operations
// ABOUTME: Handles contact enumeration and lookups for the sync engine
package db

import (
	"database/sql"
	"fmt"

	"dirsync/models"

	"github.com/google/uuid"
)

const contactColumns = `id, account, source_id, group_id, name, email, phone_mobile, phone_fixed, photo_last_modified, created_at, updated_at`

// ListContacts enumerates all stored contacts for an account, keyed by
// source ID. The photo blob itself is not loaded, only its change token.
func ListContacts(db *sql.DB, account string) (map[string]models.LocalContact, error) {
	rows, err := db.Query(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE account = ?
	`, account)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make(map[string]models.LocalContact)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts[c.SourceID] = *c
	}

	return contacts, rows.Err()
}

// GetContactBySourceID fetches a single contact, or nil if absent.
func GetContactBySourceID(db *sql.DB, account, sourceID string) (*models.LocalContact, error) {
	row := db.QueryRow(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE account = ? AND source_id = ?
	`, account, sourceID)

	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetContactPhoto returns the stored photo blob for a contact, or nil.
func GetContactPhoto(db *sql.DB, id uuid.UUID) ([]byte, error) {
	var photo []byte
	err := db.QueryRow(`SELECT photo FROM contacts WHERE id = ?`, id.String()).Scan(&photo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// CountContacts returns the number of stored contacts for an account.
func CountContacts(db *sql.DB, account string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE account = ?`, account).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.LocalContact, error) {
	c := &models.LocalContact{}
	var id string
	var groupID, name, email, phoneMobile, phoneFixed, photoLastModified sql.NullString

	err := row.Scan(
		&id,
		&c.Account,
		&c.SourceID,
		&groupID,
		&name,
		&email,
		&phoneMobile,
		&phoneFixed,
		&photoLastModified,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid contact id %q: %w", id, err)
	}
	c.ID = parsed

	if groupID.Valid {
		gid, err := uuid.Parse(groupID.String)
		if err == nil {
			c.GroupID = &gid
		}
	}
	c.Name = name.String
	c.Email = email.String
	c.PhoneMobile = phoneMobile.String
	c.PhoneFixed = phoneFixed.String
	c.PhotoLastModified = photoLastModified.String

	return c, nil
}
