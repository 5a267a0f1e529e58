package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/trax/internal/formatter"
	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/sync"
	"github.com/desertthunder/trax/internal/track"
	"github.com/urfave/cli/v3"
)

// Detect feeds one progress observation into the reconciliation engine.
func (r *Runner) Detect(ctx context.Context, cmd *cli.Command) error {
	kind, err := parseKindFlag(cmd.String("kind"))
	if err != nil {
		return err
	}

	progress := int(cmd.Int("progress"))
	if progress < 0 {
		return fmt.Errorf("%w: progress must be non-negative", shared.ErrInvalidFlag)
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	det := sync.Detection{
		Platform: track.Platform(cmd.String("platform")),
		Title:    cmd.String("title"),
		Kind:     kind,
		Progress: progress,
	}
	if det.Title == "" {
		return fmt.Errorf("%w: title must not be empty", shared.ErrMissingArgument)
	}

	if err := r.engine.HandleDetection(ctx, det); err != nil {
		return err
	}
	return r.writePlain("Recorded %s at %d on %s\n", det.Title, det.Progress, det.Platform)
}

// List prints the tracked library.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngine(); err != nil {
		return err
	}

	var items []*track.Item
	var err error
	if cmd.Bool("archived") {
		items, err = r.engine.ArchivedItems(ctx)
	} else {
		items, err = r.engine.ActiveItems(ctx)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	if len(items) == 0 {
		return r.writePlain("No entries.\n")
	}

	for _, item := range items {
		unit := "ch"
		if item.Kind.Episodic() {
			unit = "ep"
		}
		state := "unlinked"
		if item.Linked() {
			state = fmt.Sprintf("%d tracker(s)", len(item.Bindings))
		}
		pending := ""
		if len(item.PendingProgress) > 0 {
			pending = fmt.Sprintf(", %d pending", len(item.PendingProgress))
		}
		r.writePlain("%-40s %s %d%s (%s%s)\n", item.Key, item.Title, item.SyncPoint(), unit, state, pending)
	}
	return nil
}

// SearchCatalog queries one tracker's catalog.
func (r *Runner) SearchCatalog(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query must not be empty", shared.ErrMissingArgument)
	}

	kind, err := parseKindFlag(cmd.String("kind"))
	if err != nil {
		return err
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	trackerName := cmd.String("tracker")
	if trackerName == "" {
		settings, err := r.store.Settings(ctx)
		if err != nil {
			return err
		}
		if settings.DefaultTracker == "" {
			return fmt.Errorf("%w: no default tracker, pass --tracker", shared.ErrMissingArgument)
		}
		trackerName = string(settings.DefaultTracker)
	}

	tracker, err := parseTrackerArg(trackerName)
	if err != nil {
		return err
	}

	entries, err := r.engine.Search(ctx, tracker, query, kind)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No results.\n")
	}
	for _, entry := range entries {
		total := ""
		if entry.TotalEpisodes > 0 {
			total = fmt.Sprintf(" (%d ep)", entry.TotalEpisodes)
		} else if entry.TotalChapters > 0 {
			total = fmt.Sprintf(" (%d ch)", entry.TotalChapters)
		}
		r.writePlain("%8d  %s%s\n", entry.ID, entry.Title, total)
	}
	return nil
}

// Link binds an entry to a tracker entry and performs the first sync.
func (r *Runner) Link(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", shared.ErrMissingArgument)
	}

	tracker, err := parseTrackerArg(cmd.String("tracker"))
	if err != nil {
		return err
	}

	status := track.Status(cmd.String("status"))
	if status != "" {
		if err := validStatus(status); err != nil {
			return err
		}
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	item, err := r.engine.Link(ctx, key, tracker, int(cmd.Int("id")), status)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Linked %s to %s (entry %d), synced at %d\n", item.Key, tracker, item.Bindings[tracker], item.LastProgress)
}

// Unlink removes one tracker binding.
func (r *Runner) Unlink(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", shared.ErrMissingArgument)
	}

	tracker, err := parseTrackerArg(cmd.String("tracker"))
	if err != nil {
		return err
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	if err := r.engine.Unlink(ctx, key, tracker); err != nil {
		return err
	}
	return r.writePlain("✓ Unlinked %s from %s\n", key, tracker)
}

// Sync pushes one entry's progress to every linked tracker.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", shared.ErrMissingArgument)
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	if err := r.engine.SyncAll(ctx, key); err != nil {
		return err
	}
	return r.writePlain("✓ Synced %s\n", key)
}

// validStatus rejects statuses outside the watch/read state enum.
func validStatus(status track.Status) error {
	switch status {
	case track.StatusWatching, track.StatusReading, track.StatusCompleted,
		track.StatusOnHold, track.StatusDropped, track.StatusPlanToWatch, track.StatusPlanToRead:
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
}

// SetStatus changes an entry's watch/read status.
func (r *Runner) SetStatus(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	status := track.Status(cmd.StringArg("status"))

	if err := validStatus(status); err != nil {
		return err
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	if err := r.engine.SetStatus(ctx, key, status); err != nil {
		return err
	}
	return r.writePlain("✓ %s is now %s\n", key, status)
}

// Migrate archives an entry and recreates it on a new platform.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	fromKey := cmd.StringArg("from")
	platform := cmd.String("platform")
	title := cmd.String("title")
	if fromKey == "" {
		return fmt.Errorf("%w: source key is required", shared.ErrMissingArgument)
	}
	if platform == "" || title == "" {
		return fmt.Errorf("%w: target platform and title are required", shared.ErrMissingArgument)
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	item, err := r.engine.Migrate(ctx, fromKey, track.Platform(platform), title, cmd.String("reason"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Migrated %s to %s at progress %d\n", fromKey, item.Key, item.LastProgress)
}

// Export writes the library to a file in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngine(); err != nil {
		return err
	}

	items, err := r.engine.ActiveItems(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("archived") {
		archived, err := r.engine.ArchivedItems(ctx)
		if err != nil {
			return err
		}
		items = append(items, archived...)
	}

	format := cmd.String("format")
	path := cmd.String("output")
	if path == "" {
		ext := format
		if format == "markdown" {
			ext = "md"
		}
		path = fmt.Sprintf("trax_export.%s", ext)
	}

	if format == "json" {
		data, err := shared.MarshalJSON(items, true)
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}
	} else if err := formatter.WriteExport(items, format, path); err != nil {
		return err
	}

	return r.writePlain("✓ Exported %d entries to %s\n", len(items), path)
}
