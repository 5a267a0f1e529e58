package sync

import (
	"testing"
	"time"

	"github.com/desertthunder/trax/internal/track"
)

func TestSessionCacheExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache()
	cache.now = func() time.Time { return now }

	item := track.NewItem("webtoon", "Hellbound", track.KindManhwa, 0, now)
	cache.Put(item)

	if cache.Get(item.Key) == nil {
		t.Fatal("expected entry right after put")
	}

	now = now.Add(29 * time.Minute)
	if cache.Get(item.Key) == nil {
		t.Error("entry must survive inside the TTL")
	}

	// Re-observation refreshes the item but the retention window stays
	// anchored to the first observation.
	item.LastProgress = 4
	cache.Put(item)
	now = now.Add(2 * time.Minute)
	if cache.Get(item.Key) != nil {
		t.Error("re-observed entry must still expire on the original clock")
	}
}

func TestSessionCachePutKeepsFirstSeen(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache()
	cache.now = func() time.Time { return now }

	item := track.NewItem("webtoon", "Omniscient Reader", track.KindManhwa, 1, now)
	cache.Put(item)

	// Keep re-putting inside the window; the entry must not live forever.
	for i := 0; i < 6; i++ {
		now = now.Add(10 * time.Minute)
		item.LastProgress++
		cache.Put(item)
	}

	if cache.Get(item.Key) != nil {
		t.Error("repeated puts must not extend the retention window")
	}
}

func TestSessionCacheTakeRemoves(t *testing.T) {
	cache := NewSessionCache()
	item := track.NewItem("webtoon", "Purple Hyacinth", track.KindManhwa, 0, time.Now())
	cache.Put(item)

	taken := cache.Take(item.Key)
	if taken == nil {
		t.Fatal("expected take to return the entry")
	}
	if cache.Get(item.Key) != nil {
		t.Error("take must remove the entry")
	}
	if cache.Take(item.Key) != nil {
		t.Error("second take must return nil")
	}
}

func TestSessionCacheClonesOnRead(t *testing.T) {
	cache := NewSessionCache()
	item := track.NewItem("webtoon", "Sss Class Suicide Hunter", track.KindManhwa, 0, time.Now())
	cache.Put(item)

	first := cache.Get(item.Key)
	first.AddPending(99)

	second := cache.Get(item.Key)
	if len(second.PendingProgress) != 0 {
		t.Error("mutating a returned clone must not affect cache state")
	}
}

func TestSessionCacheSnapshotSkipsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSessionCache()
	cache.now = func() time.Time { return now }

	fresh := track.NewItem("webtoon", "Fresh Title", track.KindManhwa, 0, now)
	stale := track.NewItem("webtoon", "Stale Title", track.KindManhwa, 0, now)
	cache.Put(stale)
	now = now.Add(31 * time.Minute)
	cache.Put(fresh)

	snapshot := cache.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Key != fresh.Key {
		t.Errorf("expected only the fresh entry, got %d entries", len(snapshot))
	}
}
