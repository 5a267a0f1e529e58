package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/trax/internal/track"
)

// Detection is one progress observation from a source platform.
type Detection struct {
	Platform track.Platform
	Title    string
	Kind     track.MediaKind
	Progress int
}

// HandleDetection reconciles a progress observation against stored state.
//
// The observation lands in one of four places: an existing item at the
// derived key, a migration candidate on another platform, the session
// discovery cache, or nowhere (archived items swallow observations).
func (e *Engine) HandleDetection(ctx context.Context, det Detection) error {
	key := track.MakeKey(det.Platform, det.Title)
	logger := e.logger.With("key", key, "progress", det.Progress)

	settings, err := e.store.Settings(ctx)
	if err != nil {
		return err
	}

	items, err := e.store.Items(ctx)
	if err != nil {
		return err
	}

	if item, ok := items[key]; ok {
		return e.reconcileExisting(ctx, item, det, settings, logger)
	}

	if candidate := findMigrationCandidate(items, det); candidate != nil {
		return e.reconcileCandidate(ctx, candidate, det, settings, logger)
	}

	return e.recordDiscovery(det, settings, logger)
}

// reconcileExisting applies an observation to an item already stored at the
// observed key.
func (e *Engine) reconcileExisting(ctx context.Context, item *track.Item, det Detection, settings track.Settings, logger *log.Logger) error {
	if item.Archived() {
		logger.Debug("observation on archived entry ignored")
		return nil
	}

	if det.Progress <= item.LastProgress {
		logger.Debug("observation at or behind known progress, skipping")
		return nil
	}

	if !item.Linked() {
		item.LastProgress = det.Progress
		item.AddPending(det.Progress)
		item.UpdatedAt = e.now()
		if err := e.store.SaveItem(ctx, item); err != nil {
			return err
		}
		logger.Debug("raised progress on unlinked entry")
		return nil
	}

	switch settings.ConfirmPolicy {
	case track.ConfirmAutomatic:
		item.LastProgress = det.Progress
		item.UpdatedAt = e.now()
		if err := e.store.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := e.SyncAll(ctx, item.Key); err != nil {
			return err
		}
		e.notify.Toast("Synced", fmt.Sprintf("%s at %d", item.Title, det.Progress), ToastSuccess, 3*time.Second)
		return nil
	case track.ConfirmBlocking:
		item.AddPending(det.Progress)
		item.UpdatedAt = e.now()
		if err := e.store.SaveItem(ctx, item); err != nil {
			return err
		}
		e.notify.Modal(ModalConfirmSync, ConfirmSyncData{Item: item.Clone(), Progress: det.Progress})
		return nil
	default: // quick
		item.AddPending(det.Progress)
		item.UpdatedAt = e.now()
		if err := e.store.SaveItem(ctx, item); err != nil {
			return err
		}
		e.notify.Modal(ModalConfirmSync, ConfirmSyncData{Item: item.Clone(), Progress: det.Progress, Quick: true})
		e.notify.Toast("Progress detected", fmt.Sprintf("%s at %d", item.Title, det.Progress), ToastInfo, 5*time.Second)
		return nil
	}
}

// reconcileCandidate handles an observation whose title matches an item
// tracked under a different platform.
func (e *Engine) reconcileCandidate(ctx context.Context, candidate *track.Item, det Detection, settings track.Settings, logger *log.Logger) error {
	if candidate.Platform.Placeholder() && settings.AutoSyncHistory {
		logger.Info("relinking placeholder entry", "from", candidate.Key)
		_, err := e.relink(ctx, candidate, det)
		return err
	}

	e.notify.Modal(ModalMigration, MigrationProposal{
		Candidate:   candidate.Clone(),
		NewPlatform: det.Platform,
		NewTitle:    det.Title,
		NewProgress: det.Progress,
	})
	return nil
}

// relink moves a placeholder-platform item to the observed real platform
// without asking. Bindings carry over; progress keeps the higher of the two
// known values; the placeholder record is deleted, not archived.
func (e *Engine) relink(ctx context.Context, candidate *track.Item, det Detection) (*track.Item, error) {
	item := track.NewItem(det.Platform, det.Title, det.Kind, candidate.SyncPoint(), e.now())
	item.Status = candidate.Status
	item.AutoSync = candidate.AutoSync
	for tracker, id := range candidate.Bindings {
		item.Bindings[tracker] = id
	}
	item.LastSyncedAt = candidate.LastSyncedAt
	if det.Progress > item.LastProgress {
		item.LastProgress = det.Progress
	}

	if err := e.store.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	if err := e.store.DeleteItem(ctx, candidate.Key); err != nil {
		return nil, err
	}
	return item, nil
}

// recordDiscovery caches an unlinked observation for the session and, when a
// first observation could be linked somewhere, proposes it.
func (e *Engine) recordDiscovery(det Detection, settings track.Settings, logger *log.Logger) error {
	key := track.MakeKey(det.Platform, det.Title)

	if existing := e.cache.Get(key); existing != nil {
		if det.Progress > existing.LastProgress {
			existing.LastProgress = det.Progress
			existing.AddPending(det.Progress)
			existing.UpdatedAt = e.now()
			e.cache.Put(existing)
			logger.Debug("raised session discovery")
		}
		return nil
	}

	item := track.NewItem(det.Platform, det.Title, det.Kind, det.Progress, e.now())
	e.cache.Put(item)
	logger.Debug("cached session discovery")

	if det.Progress >= 1 && anyAuthenticated(settings) {
		e.notify.Modal(ModalLink, LinkProposal{Item: item.Clone()})
	}
	return nil
}

// findMigrationCandidate returns the active item whose title normalizes to
// the observed title but lives on another platform, if exactly such an item
// exists.
func findMigrationCandidate(items map[string]*track.Item, det Detection) *track.Item {
	for _, item := range items {
		if item.Archived() || item.Platform == det.Platform {
			continue
		}
		if track.SameTitle(item.Title, det.Title) {
			return item
		}
	}
	return nil
}

// anyAuthenticated reports whether at least one active tracker has a token.
func anyAuthenticated(settings track.Settings) bool {
	for _, t := range settings.ActiveTrackers {
		if auth, ok := settings.Auth[t]; ok && auth.AccessToken != "" {
			return true
		}
	}
	return false
}
