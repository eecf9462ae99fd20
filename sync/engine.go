// ABOUTME: Reconciliation engine mirroring a remote directory into the local store
// ABOUTME: Diffs remote and local snapshots and applies per-contact mutation batches
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dirsync/db"
	"dirsync/directory"
	"dirsync/models"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Directory fetches the remote snapshot and contact photos.
type Directory interface {
	FetchUsers(ctx context.Context, scope models.Scope) ([]models.RemoteContact, error)
	FetchPhoto(ctx context.Context, ref string, maxDim int, lastModified string) (*directory.Photo, error)
}

// StoreReader enumerates the local snapshot for an account.
type StoreReader interface {
	ListContacts(ctx context.Context, account string) (map[string]models.LocalContact, error)
}

// StoreWriter applies one mutation batch atomically and reports the photo
// dimension the store accepts.
type StoreWriter interface {
	ApplyBatch(ctx context.Context, b *db.Batch) error
	MaxPhotoDim(ctx context.Context) (int, error)
}

// GroupResolver maps a group title to its local group, creating it on first
// use. Must treat "already exists" on create as success.
type GroupResolver interface {
	EnsureGroup(ctx context.Context, account, title string) (uuid.UUID, error)
}

// Store is the full local store surface the engine depends on.
type Store interface {
	StoreReader
	StoreWriter
	GroupResolver
}

// Result is the outcome of one completed pass. Failures lists per-record
// errors that did not abort the pass; a pass with failures is still
// "completed", the caller decides whether that warrants a retry.
type Result struct {
	Stats    models.SyncStats
	Failures []models.RecordFailure
}

// Engine performs one reconciliation pass per Run call. Passes for the same
// scope must not run concurrently; serializing them is the scheduler's job.
type Engine struct {
	dir    Directory
	store  Store
	logger *log.Logger

	// groupPrefix is prepended to the upper-cased country code to form the
	// group title, e.g. "Colleagues SE".
	groupPrefix string
	// photoWorkers bounds the concurrent photo prefetch pool.
	photoWorkers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithGroupPrefix overrides the group title prefix.
func WithGroupPrefix(prefix string) Option {
	return func(e *Engine) { e.groupPrefix = prefix }
}

// WithPhotoWorkers bounds the photo prefetch concurrency.
func WithPhotoWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.photoWorkers = n
		}
	}
}

// WithLogger replaces the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine builds an engine around injected collaborators.
func NewEngine(dir Directory, store Store, opts ...Option) *Engine {
	e := &Engine{
		dir:          dir,
		store:        store,
		logger:       log.With("component", "sync"),
		groupPrefix:  "Colleagues",
		photoWorkers: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one reconciliation pass for the scope. It returns an error
// only when a snapshot could not be obtained (remote fetch or local
// enumeration); per-record errors are collected in the result instead.
func (e *Engine) Run(ctx context.Context, scope models.Scope) (*Result, error) {
	result := &Result{}
	stats := &result.Stats

	local, err := e.store.ListContacts(ctx, scope.Account)
	if err != nil {
		return result, fmt.Errorf("failed to enumerate local contacts: %w", err)
	}

	remote, err := e.dir.FetchUsers(ctx, scope)
	if err != nil {
		if errors.Is(err, directory.ErrUnauthorized) {
			stats.AuthFailures++
		}
		return result, fmt.Errorf("failed to fetch remote snapshot: %w", err)
	}

	maxDim, err := e.store.MaxPhotoDim(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to query photo capability: %w", err)
	}

	remote = dedupeLastWins(remote)
	photos := e.prefetchPhotos(ctx, remote, local, maxDim)

	seen := make(map[string]bool, len(remote))
	for _, rc := range remote {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		seen[rc.SourceID] = true

		lc, exists := local[rc.SourceID]
		if exists {
			changed, err := e.updateExisting(ctx, &lc, rc, photos[rc.SourceID])
			if err != nil {
				e.recordFailure(result, rc.SourceID, err)
				continue
			}
			if changed {
				stats.Updates++
			}
		} else {
			if err := e.insertNew(ctx, scope.Account, rc, photos[rc.SourceID]); err != nil {
				e.recordFailure(result, rc.SourceID, err)
				continue
			}
			stats.Inserts++
		}
		stats.RecordsProcessed++
	}

	for _, lc := range local {
		if seen[lc.SourceID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.deleteInactive(ctx, lc); err != nil {
			e.recordFailure(result, lc.SourceID, err)
			continue
		}
		stats.Deletes++
		stats.RecordsProcessed++
	}

	e.logger.Info("pass completed",
		"processed", stats.RecordsProcessed,
		"inserts", stats.Inserts,
		"updates", stats.Updates,
		"deletes", stats.Deletes,
		"failures", stats.OtherFailures)

	return result, nil
}

// insertNew creates a contact in a single batch: base record, one insert per
// present field, group membership, and the photo when the prefetch got one.
func (e *Engine) insertNew(ctx context.Context, account string, rc models.RemoteContact, photo photoOutcome) error {
	groupID, err := e.store.EnsureGroup(ctx, account, e.groupTitle(rc.CountryCode))
	if err != nil {
		return fmt.Errorf("failed to resolve group: %w", err)
	}

	e.logger.Debug("inserting new contact", "source_id", rc.SourceID)

	batch := db.NewInsertBatch(account, rc.SourceID)
	for _, fv := range remoteFields(rc) {
		if fv.value != "" {
			batch.SetField(fv.field, fv.value)
		}
	}
	batch.SetGroup(groupID)
	e.appendPhotoOps(batch, nil, rc, photo)

	if err := e.store.ApplyBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// updateExisting builds a batch from the field-merge policy across all
// optional fields plus photo synchronization. An empty batch means no
// observable change: no store call, not counted as an update.
func (e *Engine) updateExisting(ctx context.Context, lc *models.LocalContact, rc models.RemoteContact, photo photoOutcome) (bool, error) {
	batch := db.NewBatch(lc.ID)

	for _, fv := range remoteFields(rc) {
		switch mergeField(fv.local(lc), fv.value) {
		case opInsert, opUpdate:
			batch.SetField(fv.field, fv.value)
		case opDelete:
			batch.ClearField(fv.field)
		}
	}

	e.appendPhotoOps(batch, lc, rc, photo)

	if batch.Empty() {
		return false, nil
	}

	e.logger.Debug("updating existing contact", "source_id", rc.SourceID, "ops", len(batch.Ops))

	if err := e.store.ApplyBatch(ctx, batch); err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return true, nil
}

// deleteInactive hard-deletes a contact whose source ID left the directory.
func (e *Engine) deleteInactive(ctx context.Context, lc models.LocalContact) error {
	e.logger.Debug("deleting inactive contact", "source_id", lc.SourceID)

	batch := db.NewBatch(lc.ID)
	batch.DeleteContact()
	if err := e.store.ApplyBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (e *Engine) recordFailure(result *Result, sourceID string, err error) {
	e.logger.Error("record failed", "source_id", sourceID, "err", err)
	result.Failures = append(result.Failures, models.RecordFailure{SourceID: sourceID, Err: err})
	result.Stats.OtherFailures++
}

func (e *Engine) groupTitle(countryCode string) string {
	if countryCode == "" {
		return e.groupPrefix
	}
	return e.groupPrefix + " " + strings.ToUpper(countryCode)
}

// fieldValue pairs a batch field with its remote value and local accessor.
type fieldValue struct {
	field db.Field
	value string
	get   func(*models.LocalContact) string
}

func (fv fieldValue) local(lc *models.LocalContact) string {
	if lc == nil {
		return ""
	}
	return fv.get(lc)
}

func remoteFields(rc models.RemoteContact) []fieldValue {
	return []fieldValue{
		{db.FieldName, rc.Name, func(lc *models.LocalContact) string { return lc.Name }},
		{db.FieldEmail, rc.Email, func(lc *models.LocalContact) string { return lc.Email }},
		{db.FieldPhoneMobile, rc.PhoneMobile, func(lc *models.LocalContact) string { return lc.PhoneMobile }},
		{db.FieldPhoneFixed, rc.PhoneFixed, func(lc *models.LocalContact) string { return lc.PhoneFixed }},
	}
}

// dedupeLastWins drops duplicate source IDs, keeping the last occurrence in
// fetch order. Duplicates should not happen but must be tolerated.
func dedupeLastWins(remote []models.RemoteContact) []models.RemoteContact {
	last := make(map[string]int, len(remote))
	for i, rc := range remote {
		last[rc.SourceID] = i
	}
	if len(last) == len(remote) {
		return remote
	}

	deduped := make([]models.RemoteContact, 0, len(last))
	for i, rc := range remote {
		if last[rc.SourceID] == i {
			deduped = append(deduped, rc)
		}
	}
	return deduped
}
