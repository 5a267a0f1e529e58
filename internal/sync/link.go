package sync

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
	"github.com/desertthunder/trax/internal/trackers"
)

// Link binds an item to a tracker entry and performs the first sync.
//
// The item is resolved from the store, then the session cache, then (for
// manual/generic keys only) synthesized from the key itself. A freshly linked
// item syncs once at its sync point; buffered progress collapses into that
// single push. An empty status leaves the item's status untouched.
func (e *Engine) Link(ctx context.Context, key string, tracker track.Tracker, entryID int, status track.Status) (*track.Item, error) {
	if _, ok := e.registry[tracker]; !ok {
		return nil, fmt.Errorf("%w: unknown tracker %q", shared.ErrInvalidInput, tracker)
	}

	item, err := e.resolveForLink(ctx, key)
	if err != nil {
		return nil, err
	}

	item.Bindings[tracker] = entryID
	if status != "" {
		item.Status = status
	}
	item.LastProgress = item.SyncPoint()
	item.PendingProgress = nil
	item.UpdatedAt = e.now()

	if err := e.store.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	if err := e.SyncAll(ctx, item.Key); err != nil {
		e.logger.Warn("initial sync after link failed", "key", item.Key, "error", err)
	}
	return e.store.Item(ctx, item.Key)
}

// resolveForLink locates or synthesizes the item a link targets.
func (e *Engine) resolveForLink(ctx context.Context, key string) (*track.Item, error) {
	item, err := e.store.Item(ctx, key)
	if err != nil {
		return nil, err
	}
	if item != nil {
		if item.Archived() {
			return nil, fmt.Errorf("%w: %s", shared.ErrAlreadyMigrated, key)
		}
		return item, nil
	}

	if cached := e.cache.Take(key); cached != nil {
		return cached, nil
	}

	if track.ManualKey(key) {
		return track.SynthesizeItem(key, e.now()), nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, key)
}

// Unlink removes one tracker binding. The item itself stays tracked.
func (e *Engine) Unlink(ctx context.Context, key string, tracker track.Tracker) error {
	item, err := e.store.Item(ctx, key)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}

	delete(item.Bindings, tracker)
	item.UpdatedAt = e.now()
	return e.store.SaveItem(ctx, item)
}

// SetStatus changes an item's status and pushes it to all linked trackers.
func (e *Engine) SetStatus(ctx context.Context, key string, status track.Status) error {
	item, err := e.store.Item(ctx, key)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}

	item.Status = status
	item.UpdatedAt = e.now()
	if err := e.store.SaveItem(ctx, item); err != nil {
		return err
	}

	if item.Linked() {
		return e.SyncAll(ctx, key)
	}
	return nil
}

// SaveAuth stores a tracker's auth record and activates the tracker.
func (e *Engine) SaveAuth(ctx context.Context, tracker track.Tracker, auth track.Auth) error {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return err
	}
	settings.Auth[tracker] = auth
	settings.Activate(tracker)
	if settings.DefaultTracker == "" {
		settings.DefaultTracker = tracker
	}
	return e.store.SaveSettings(ctx, settings)
}

// Logout drops a tracker's auth record and deactivates the tracker. Item
// bindings are kept so a later login resumes syncing.
func (e *Engine) Logout(ctx context.Context, tracker track.Tracker) error {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return err
	}
	delete(settings.Auth, tracker)
	settings.Deactivate(tracker)
	if settings.DefaultTracker == tracker {
		settings.DefaultTracker = ""
		if len(settings.ActiveTrackers) > 0 {
			settings.DefaultTracker = settings.ActiveTrackers[0]
		}
	}
	return e.store.SaveSettings(ctx, settings)
}

// ActiveItems returns all active stored items merged with live session
// discoveries, sorted by most recently updated.
func (e *Engine) ActiveItems(ctx context.Context) ([]*track.Item, error) {
	items, err := e.store.Items(ctx)
	if err != nil {
		return nil, err
	}

	merged := make([]*track.Item, 0, len(items))
	for _, item := range items {
		if !item.Archived() {
			merged = append(merged, item)
		}
	}
	for _, discovered := range e.cache.Snapshot() {
		if _, tracked := items[discovered.Key]; !tracked {
			merged = append(merged, discovered)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})
	return merged, nil
}

// ArchivedItems returns stored items superseded by migration.
func (e *Engine) ArchivedItems(ctx context.Context) ([]*track.Item, error) {
	items, err := e.store.Items(ctx)
	if err != nil {
		return nil, err
	}

	archived := make([]*track.Item, 0)
	for _, item := range items {
		if item.Archived() {
			archived = append(archived, item)
		}
	}
	sort.Slice(archived, func(i, j int) bool {
		return archived[i].UpdatedAt.After(archived[j].UpdatedAt)
	})
	return archived, nil
}

// Search queries one tracker's catalog using the stored token.
func (e *Engine) Search(ctx context.Context, tracker track.Tracker, query string, kind track.MediaKind) ([]trackers.Entry, error) {
	adapter, ok := e.registry[tracker]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tracker %q", shared.ErrInvalidInput, tracker)
	}

	token, err := e.EnsureValidToken(ctx, tracker)
	if err != nil {
		return nil, err
	}
	return adapter.Search(ctx, query, kind, token)
}
