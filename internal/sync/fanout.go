package sync

import (
	"context"
	"fmt"
	stdsync "sync"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

// syncResult is one tracker's outcome from a fan-out.
type syncResult struct {
	tracker track.Tracker
	err     error
}

// SyncAll pushes an item's progress to every active, bound, authenticated
// tracker concurrently. Branch failures are independent: one tracker erroring
// never blocks the others, and branch errors are logged rather than returned.
// After the fan-out the item's sync stamp is updated and its pending buffer
// cleared regardless of branch outcomes; buffered values are never retried.
func (e *Engine) SyncAll(ctx context.Context, key string) error {
	var (
		wg       stdsync.WaitGroup
		settings track.Settings
		item     *track.Item
		loadErrs [2]error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		settings, loadErrs[0] = e.store.Settings(ctx)
	}()
	go func() {
		defer wg.Done()
		item, loadErrs[1] = e.store.Item(ctx, key)
	}()
	wg.Wait()

	for _, err := range loadErrs {
		if err != nil {
			return err
		}
	}
	if item == nil {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	if !item.Linked() {
		return nil
	}

	progress := item.SyncPoint()
	targets := e.syncTargets(item, settings)

	results := make([]syncResult, len(targets))
	wg.Add(len(targets))
	for i, tracker := range targets {
		go func(i int, tracker track.Tracker) {
			defer wg.Done()
			results[i] = syncResult{tracker: tracker, err: e.pushProgress(ctx, item, tracker, progress)}
		}(i, tracker)
	}
	wg.Wait()

	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			e.logger.Warn("tracker sync failed", "key", key, "tracker", result.tracker, "error", result.err)
		}
	}

	item.LastProgress = progress
	item.PendingProgress = nil
	item.LastSyncedAt = e.now()
	item.UpdatedAt = e.now()
	if err := e.store.SaveItem(ctx, item); err != nil {
		return err
	}

	if len(targets) > 0 && failed == len(targets) {
		e.logger.Error("every tracker failed", "key", key, "trackers", failed)
	} else {
		e.logger.Info("synced", "key", key, "progress", progress, "trackers", len(targets)-failed, "failed", failed)
	}
	return nil
}

// syncTargets selects the trackers a fan-out will touch: active in settings,
// bound on the item, and registered.
func (e *Engine) syncTargets(item *track.Item, settings track.Settings) []track.Tracker {
	targets := make([]track.Tracker, 0, len(item.Bindings))
	for _, tracker := range settings.ActiveTrackers {
		if _, bound := item.Bindings[tracker]; !bound {
			continue
		}
		if _, registered := e.registry[tracker]; !registered {
			continue
		}
		targets = append(targets, tracker)
	}
	return targets
}

// pushProgress updates one tracker, refreshing its token first if needed.
func (e *Engine) pushProgress(ctx context.Context, item *track.Item, tracker track.Tracker, progress int) error {
	token, err := e.EnsureValidToken(ctx, tracker)
	if err != nil {
		return err
	}
	return e.registry[tracker].UpdateProgress(ctx, item.Bindings[tracker], item.Kind, progress, item.Status, token)
}
