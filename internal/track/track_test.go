package track

import (
	"testing"
	"time"
)

func TestParseTracker(t *testing.T) {
	for _, tracker := range Trackers {
		if got, ok := ParseTracker(string(tracker)); !ok || got != tracker {
			t.Errorf("expected %q to parse", tracker)
		}
	}
	if _, ok := ParseTracker("letterboxd"); ok {
		t.Error("expected unknown tracker to be rejected")
	}
}

func TestDefaultStatus(t *testing.T) {
	if got := DefaultStatus(KindAnime); got != StatusWatching {
		t.Errorf("expected anime to default to watching, got %q", got)
	}
	for _, kind := range []MediaKind{KindManga, KindManhwa, KindManhua, KindNovel} {
		if got := DefaultStatus(kind); got != StatusReading {
			t.Errorf("expected %s to default to reading, got %q", kind, got)
		}
	}
}

func TestPlatformPlaceholder(t *testing.T) {
	for _, p := range []Platform{PlatformGenericManga, PlatformGenericAnime, PlatformUnknown} {
		if !p.Placeholder() {
			t.Errorf("expected %q to be a placeholder", p)
		}
	}
	if Platform("webtoon").Placeholder() {
		t.Error("expected a real platform not to be a placeholder")
	}
}

func TestItem(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NewItem defaults", func(t *testing.T) {
		item := NewItem("webtoon", "Tower of God", KindManhwa, 5, now)

		if item.Key != "webtoon:tower-of-god" {
			t.Errorf("unexpected key %q", item.Key)
		}
		if item.Status != StatusReading {
			t.Errorf("unexpected status %q", item.Status)
		}
		if item.Lifecycle != LifecycleActive {
			t.Errorf("unexpected lifecycle %q", item.Lifecycle)
		}
		if item.Linked() {
			t.Error("expected a fresh item to be unlinked")
		}
		if item.LastProgress != 5 {
			t.Errorf("unexpected progress %d", item.LastProgress)
		}
	})

	t.Run("AddPending deduplicates", func(t *testing.T) {
		item := NewItem("webtoon", "Tower of God", KindManhwa, 0, now)

		item.AddPending(3)
		item.AddPending(4)
		item.AddPending(3)

		if len(item.PendingProgress) != 2 {
			t.Errorf("expected 2 buffered values, got %v", item.PendingProgress)
		}
	})

	t.Run("SyncPoint is the highest known progress", func(t *testing.T) {
		item := NewItem("webtoon", "Tower of God", KindManhwa, 10, now)

		if item.SyncPoint() != 10 {
			t.Errorf("expected sync point 10, got %d", item.SyncPoint())
		}

		item.AddPending(8)
		item.AddPending(12)

		if item.SyncPoint() != 12 {
			t.Errorf("expected sync point 12, got %d", item.SyncPoint())
		}
	})

	t.Run("Clone is independent of the original", func(t *testing.T) {
		item := NewItem("webtoon", "Tower of God", KindManhwa, 10, now)
		item.Bindings[TrackerMAL] = 42
		item.AddPending(11)

		clone := item.Clone()
		clone.Bindings[TrackerAniList] = 7
		clone.PendingProgress[0] = 99

		if _, ok := item.Bindings[TrackerAniList]; ok {
			t.Error("expected clone binding not to leak into the original")
		}
		if item.PendingProgress[0] != 11 {
			t.Errorf("expected original buffer untouched, got %v", item.PendingProgress)
		}
	})
}

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		settings := DefaultSettings()

		if settings.ConfirmPolicy != ConfirmQuick {
			t.Errorf("unexpected default policy %q", settings.ConfirmPolicy)
		}
		if settings.Auth == nil {
			t.Error("expected auth map to be initialized")
		}
	})

	t.Run("activate and deactivate", func(t *testing.T) {
		settings := DefaultSettings()

		settings.Activate(TrackerMAL)
		settings.Activate(TrackerMAL)
		settings.Activate(TrackerAniList)

		if len(settings.ActiveTrackers) != 2 {
			t.Errorf("expected activation to be idempotent, got %v", settings.ActiveTrackers)
		}
		if !settings.TrackerActive(TrackerMAL) {
			t.Error("expected mal to be active")
		}

		settings.Deactivate(TrackerMAL)

		if settings.TrackerActive(TrackerMAL) {
			t.Error("expected mal to be deactivated")
		}
		if !settings.TrackerActive(TrackerAniList) {
			t.Error("expected anilist to survive deactivation of mal")
		}
	})
}
