package sync

import (
	"context"
	"fmt"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

// Migrate archives an item and recreates it under the key derived from the
// target platform and title, carrying bindings, progress, status, and kind
// forward. Both sides get a migration record pointing at the other; nothing
// is pushed to trackers.
//
// Migrating to an existing key fails rather than overwrite.
func (e *Engine) Migrate(ctx context.Context, fromKey string, toPlatform track.Platform, toTitle, reason string) (*track.Item, error) {
	toKey := track.MakeKey(toPlatform, toTitle)
	if fromKey == toKey {
		return nil, fmt.Errorf("%w: migration target equals source", shared.ErrInvalidInput)
	}

	items, err := e.store.Items(ctx)
	if err != nil {
		return nil, err
	}

	old, ok := items[fromKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, fromKey)
	}
	if old.Archived() {
		return nil, fmt.Errorf("%w: %s", shared.ErrAlreadyMigrated, fromKey)
	}
	if _, exists := items[toKey]; exists {
		return nil, fmt.Errorf("%w: target key %s already tracked", shared.ErrInvalidInput, toKey)
	}

	now := e.now()
	record := track.MigrationRecord{
		ID:                  shared.GenerateID(),
		FromKey:             fromKey,
		ToKey:               toKey,
		MigratedAt:          now,
		ProgressAtMigration: old.SyncPoint(),
		Reason:              reason,
	}

	fresh := track.NewItem(toPlatform, toTitle, old.Kind, old.SyncPoint(), now)
	fresh.Status = old.Status
	fresh.AutoSync = old.AutoSync
	for tracker, id := range old.Bindings {
		fresh.Bindings[tracker] = id
	}
	fresh.MigratedFrom = &record
	fresh.LastSyncedAt = old.LastSyncedAt

	old.Lifecycle = track.LifecycleArchived
	old.PendingProgress = nil
	old.MigratedTo = &record
	old.UpdatedAt = now

	if err := e.store.SaveItem(ctx, old); err != nil {
		return nil, err
	}
	if err := e.store.SaveItem(ctx, fresh); err != nil {
		return nil, err
	}

	e.logger.Info("migrated entry", "from", fromKey, "to", toKey)
	return fresh, nil
}
