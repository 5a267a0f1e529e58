package store

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

// setupTestClient creates a Client over a migrated in-memory database.
func setupTestClient(t *testing.T) *Client {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewClient(NewSQLiteStore(db))
}

func TestSQLiteStore(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	t.Run("absent key yields nil without error", func(t *testing.T) {
		value, err := client.kv.Get(ctx, "trax:missing")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if value != nil {
			t.Errorf("expected nil for absent key, got %q", value)
		}
	})

	t.Run("set then get round trip", func(t *testing.T) {
		if err := client.kv.Set(ctx, "trax:test", []byte(`{"n":1}`)); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		value, err := client.kv.Get(ctx, "trax:test")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(value) != `{"n":1}` {
			t.Errorf("unexpected value %q", value)
		}
	})

	t.Run("set overwrites previous value", func(t *testing.T) {
		if err := client.kv.Set(ctx, "trax:test", []byte(`{"n":2}`)); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		value, err := client.kv.Get(ctx, "trax:test")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(value) != `{"n":2}` {
			t.Errorf("unexpected value %q", value)
		}
	})
}

func TestClientSettings(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	t.Run("empty store yields defaults", func(t *testing.T) {
		settings, err := client.Settings(ctx)
		if err != nil {
			t.Fatalf("settings failed: %v", err)
		}
		if settings.ConfirmPolicy != track.ConfirmQuick {
			t.Errorf("unexpected default policy %q", settings.ConfirmPolicy)
		}
		if settings.Auth == nil {
			t.Error("expected auth map to be initialized")
		}
	})

	t.Run("round trip preserves auth and active trackers", func(t *testing.T) {
		settings := track.DefaultSettings()
		settings.Activate(track.TrackerMAL)
		settings.DefaultTracker = track.TrackerMAL
		settings.Auth[track.TrackerMAL] = track.Auth{
			AccessToken: "token",
			Username:    "tester",
			ExpiresAt:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		}

		if err := client.SaveSettings(ctx, settings); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := client.Settings(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if !loaded.TrackerActive(track.TrackerMAL) {
			t.Error("expected mal to stay active")
		}
		if loaded.Auth[track.TrackerMAL].Username != "tester" {
			t.Errorf("unexpected auth %+v", loaded.Auth[track.TrackerMAL])
		}
		if loaded.DefaultTracker != track.TrackerMAL {
			t.Errorf("unexpected default tracker %q", loaded.DefaultTracker)
		}
	})
}

func TestClientItems(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("absent item yields nil without error", func(t *testing.T) {
		item, err := client.Item(ctx, "webtoon:missing")
		if err != nil {
			t.Fatalf("item failed: %v", err)
		}
		if item != nil {
			t.Errorf("expected nil for absent item, got %+v", item)
		}
	})

	t.Run("save and reload preserves bindings and buffer", func(t *testing.T) {
		item := track.NewItem("webtoon", "Tower of God", track.KindManhwa, 10, now)
		item.Bindings[track.TrackerMAL] = 42
		item.AddPending(11)

		if err := client.SaveItem(ctx, item); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := client.Item(ctx, item.Key)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected item to be found")
		}
		if loaded.Bindings[track.TrackerMAL] != 42 {
			t.Errorf("unexpected bindings %v", loaded.Bindings)
		}
		if loaded.SyncPoint() != 11 {
			t.Errorf("unexpected sync point %d", loaded.SyncPoint())
		}
	})

	t.Run("save does not clobber other items", func(t *testing.T) {
		other := track.NewItem("mangadex", "Berserk", track.KindManga, 370, now)
		if err := client.SaveItem(ctx, other); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		items, err := client.Items(ctx)
		if err != nil {
			t.Fatalf("items failed: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("expected 2 items, got %d", len(items))
		}
	})

	t.Run("delete removes only the named item", func(t *testing.T) {
		if err := client.DeleteItem(ctx, "mangadex:berserk"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		items, err := client.Items(ctx)
		if err != nil {
			t.Fatalf("items failed: %v", err)
		}
		if _, ok := items["mangadex:berserk"]; ok {
			t.Error("expected deleted item to be gone")
		}
		if _, ok := items["webtoon:tower-of-god"]; !ok {
			t.Error("expected remaining item to survive")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()

	if err := kv.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	value[0] = 'x'

	again, _ := kv.Get(ctx, "k")
	if string(again) != "v" {
		t.Errorf("expected stored value to be isolated from caller mutation, got %q", again)
	}
}
