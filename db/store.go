// ABOUTME: Store wraps a SQLite handle behind the sync engine's store interfaces
// ABOUTME: Exposes contact enumeration, batch application, groups, and capabilities
package db

import (
	"context"
	"database/sql"

	"dirsync/models"

	"github.com/google/uuid"
)

// DefaultPhotoDim is the photo dimension reported when none is configured.
const DefaultPhotoDim = 720

// Store adapts the database to the sync engine's reader, writer, and group
// resolver interfaces.
type Store struct {
	DB *sql.DB
	// PhotoDim is the maximum photo dimension this store accepts, reported
	// to the engine once per pass.
	PhotoDim int
}

// NewStore wraps an open database. photoDim <= 0 selects DefaultPhotoDim.
func NewStore(database *sql.DB, photoDim int) *Store {
	if photoDim <= 0 {
		photoDim = DefaultPhotoDim
	}
	return &Store{DB: database, PhotoDim: photoDim}
}

func (s *Store) ListContacts(ctx context.Context, account string) (map[string]models.LocalContact, error) {
	return ListContacts(s.DB, account)
}

func (s *Store) ApplyBatch(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ApplyBatch(s.DB, b)
}

func (s *Store) EnsureGroup(ctx context.Context, account, title string) (uuid.UUID, error) {
	return EnsureGroup(s.DB, account, title)
}

func (s *Store) MaxPhotoDim(ctx context.Context) (int, error) {
	return s.PhotoDim, nil
}
