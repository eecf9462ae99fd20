// ABOUTME: Contact photo reconciliation with change-token caching
// ABOUTME: Bounded-concurrency prefetch pool and fail-open per-field handling
package sync

import (
	"context"
	"sync"

	"dirsync/db"
	"dirsync/directory"
	"dirsync/models"

	"golang.org/x/sync/errgroup"
)

// photoOutcome is the prefetch result for one record. A nil fetched with a
// nil err means no fetch was needed (no photo URL on the remote record).
type photoOutcome struct {
	fetched *directory.Photo
	err     error
}

// prefetchPhotos downloads photos for all remote records that carry a photo
// URL, using a bounded worker pool. Fetches are read-only and independent
// across records, so failures stay local to their record.
func (e *Engine) prefetchPhotos(ctx context.Context, remote []models.RemoteContact, local map[string]models.LocalContact, maxDim int) map[string]photoOutcome {
	outcomes := make(map[string]photoOutcome, len(remote))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.photoWorkers)

	for _, rc := range remote {
		if rc.PhotoURL == "" {
			continue
		}

		knownToken := ""
		if lc, ok := local[rc.SourceID]; ok {
			knownToken = lc.PhotoLastModified
		}

		g.Go(func() error {
			photo, err := e.dir.FetchPhoto(gctx, rc.PhotoURL, maxDim, knownToken)
			mu.Lock()
			outcomes[rc.SourceID] = photoOutcome{fetched: photo, err: err}
			mu.Unlock()
			// Photo failures never abort anything, they are absorbed below.
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// appendPhotoOps adds the photo operations for one record to its batch:
//
//	no remote photo, no stored token  -> nothing
//	no remote photo, stored token     -> clear photo and token
//	fetch failed (transient)          -> nothing; retried next pass
//	not found, no stored token        -> nothing
//	not found, stored token           -> clear photo and token
//	not modified                      -> nothing
//	fetched, token equals known       -> nothing
//	fetched, token differs            -> replace photo, store new token
//
// lc is nil for records being inserted.
func (e *Engine) appendPhotoOps(batch *db.Batch, lc *models.LocalContact, rc models.RemoteContact, outcome photoOutcome) {
	knownToken := ""
	if lc != nil {
		knownToken = lc.PhotoLastModified
	}

	clearStale := func() {
		if knownToken != "" {
			batch.ClearPhoto()
		}
	}

	if rc.PhotoURL == "" {
		clearStale()
		return
	}

	if outcome.err != nil {
		// Fail open: the record keeps its previous photo state and the
		// fetch is retried on the next pass.
		e.logger.Warn("photo fetch failed, keeping previous state", "source_id", rc.SourceID, "err", outcome.err)
		return
	}
	if outcome.fetched == nil {
		// No prefetch ran for this record; treat like a transient miss.
		return
	}

	switch outcome.fetched.Status {
	case directory.PhotoNotFound:
		clearStale()
	case directory.PhotoNotModified:
		// Stored photo is current.
	case directory.PhotoOK:
		if outcome.fetched.LastModified != knownToken {
			batch.SetPhoto(outcome.fetched.Data, outcome.fetched.LastModified)
		}
	}
}
