// ABOUTME: Photo reconciliation tests
// ABOUTME: Covers change-token caching, not-found cleanup, and fail-open fetches
package sync

import (
	"database/sql"
	"fmt"
	"testing"

	"dirsync/db"
	"dirsync/directory"
	"dirsync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteWithPhoto(email, photoURL string) models.RemoteContact {
	rc := remoteContact(email, "Alice", "")
	rc.PhotoURL = photoURL
	return rc
}

func TestPhotoTokenLifecycle(t *testing.T) {
	database := setupTestDB(t)
	const photoURL = "https://photos.example.com/alice"

	dir := &fakeDirectory{
		users:  []models.RemoteContact{remoteWithPhoto("a@example.com", photoURL)},
		photos: map[string]*directory.Photo{photoURL: {Status: directory.PhotoOK, Data: []byte("v1"), LastModified: "t1"}},
	}

	// First pass stores the photo and its token.
	runPass(t, dir, database)
	contact := mustGetContact(t, database, "a@example.com")
	assert.Equal(t, "t1", contact.PhotoLastModified)

	photo, err := db.GetContactPhoto(database, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), photo)

	// Remote photo changes: exactly one update, token moves to t2.
	dir.photos[photoURL] = &directory.Photo{Status: directory.PhotoOK, Data: []byte("v2"), LastModified: "t2"}
	second := runPass(t, dir, database)
	assert.Equal(t, 1, second.Stats.Updates)

	contact = mustGetContact(t, database, "a@example.com")
	assert.Equal(t, "t2", contact.PhotoLastModified)

	// Token unchanged: fake reports not-modified, zero operations.
	third := runPass(t, dir, database)
	assert.Zero(t, third.Stats.Updates)
}

func TestPhotoRemovedRemotely(t *testing.T) {
	database := setupTestDB(t)
	const photoURL = "https://photos.example.com/alice"

	dir := &fakeDirectory{
		users:  []models.RemoteContact{remoteWithPhoto("a@example.com", photoURL)},
		photos: map[string]*directory.Photo{photoURL: {Status: directory.PhotoOK, Data: []byte("v1"), LastModified: "t1"}},
	}
	runPass(t, dir, database)

	// Photo host starts returning 404: local photo and token are cleared.
	delete(dir.photos, photoURL)
	result := runPass(t, dir, database)
	assert.Equal(t, 1, result.Stats.Updates)

	contact := mustGetContact(t, database, "a@example.com")
	assert.Empty(t, contact.PhotoLastModified)

	photo, err := db.GetContactPhoto(database, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, photo)
}

func TestPhotoNotFoundWithoutPriorTokenIsNoop(t *testing.T) {
	database := setupTestDB(t)
	dir := &fakeDirectory{
		users:  []models.RemoteContact{remoteWithPhoto("a@example.com", "https://photos.example.com/alice")},
		photos: map[string]*directory.Photo{},
	}

	runPass(t, dir, database)
	second := runPass(t, dir, database)
	assert.Zero(t, second.Stats.Updates)
}

func TestPhotoTransientErrorFailsOpen(t *testing.T) {
	database := setupTestDB(t)
	const photoURL = "https://photos.example.com/alice"

	dir := &fakeDirectory{
		users:  []models.RemoteContact{remoteWithPhoto("a@example.com", photoURL)},
		photos: map[string]*directory.Photo{photoURL: {Status: directory.PhotoOK, Data: []byte("v1"), LastModified: "t1"}},
	}
	runPass(t, dir, database)

	// Photo host goes down while the name changes: the scalar update must
	// still apply and the failure must not appear in the result.
	dir.photoErr = fmt.Errorf("connection refused")
	dir.users[0].Name = "Alice Renamed"

	result := runPass(t, dir, database)
	assert.Equal(t, 1, result.Stats.Updates)
	assert.Empty(t, result.Failures)
	assert.Zero(t, result.Stats.OtherFailures)

	contact := mustGetContact(t, database, "a@example.com")
	assert.Equal(t, "Alice Renamed", contact.Name)
	assert.Equal(t, "t1", contact.PhotoLastModified, "previous photo state is kept for retry next pass")
}

func TestPhotoFetchSkippedWithoutURL(t *testing.T) {
	database := setupTestDB(t)
	dir := &fakeDirectory{users: []models.RemoteContact{remoteContact("a@example.com", "Alice", "")}}

	runPass(t, dir, database)
	assert.Zero(t, dir.photoCalls)
}

func mustGetContact(t *testing.T, database *sql.DB, sourceID string) *models.LocalContact {
	t.Helper()
	contact, err := db.GetContactBySourceID(database, "work", sourceID)
	require.NoError(t, err)
	require.NotNil(t, contact)
	return contact
}
