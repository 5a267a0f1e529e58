// package track defines the data model for tracked media and user settings
package track

import (
	"time"
)

// Tracker identifies an external progress-tracking service.
type Tracker string

const (
	TrackerMAL       Tracker = "mal"
	TrackerAniList   Tracker = "anilist"
	TrackerShikimori Tracker = "shikimori"
	TrackerBangumi   Tracker = "bangumi"
)

// Trackers lists every supported tracker.
var Trackers = []Tracker{TrackerMAL, TrackerAniList, TrackerShikimori, TrackerBangumi}

// ParseTracker validates a tracker name from user input.
func ParseTracker(s string) (Tracker, bool) {
	for _, t := range Trackers {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// MediaKind classifies the serialized medium being tracked.
type MediaKind string

const (
	KindAnime  MediaKind = "anime"
	KindManga  MediaKind = "manga"
	KindManhwa MediaKind = "manhwa"
	KindManhua MediaKind = "manhua"
	KindNovel  MediaKind = "novel"
)

// Episodic reports whether progress counts episodes rather than chapters.
func (k MediaKind) Episodic() bool {
	return k == KindAnime
}

// Status is the user's watch/read state for an item.
type Status string

const (
	StatusWatching   Status = "watching"
	StatusReading    Status = "reading"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
	StatusDropped    Status = "dropped"
	StatusPlanToWatch Status = "plan_to_watch"
	StatusPlanToRead  Status = "plan_to_read"
)

// DefaultStatus returns the in-progress status appropriate for a media kind.
func DefaultStatus(kind MediaKind) Status {
	if kind.Episodic() {
		return StatusWatching
	}
	return StatusReading
}

// Lifecycle is an item's migration lifecycle state.
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleArchived Lifecycle = "archived"
)

// ConfirmPolicy governs whether a progress observation on a linked item syncs immediately.
type ConfirmPolicy string

const (
	ConfirmBlocking  ConfirmPolicy = "blocking"
	ConfirmQuick     ConfirmPolicy = "quick"
	ConfirmAutomatic ConfirmPolicy = "automatic"
)

// Platform identifies a source site an observation came from.
//
// The set of real platforms is open ended (detectors decide); only the
// placeholder platforms are meaningful to the engine.
type Platform string

const (
	PlatformGenericManga Platform = "generic_manga"
	PlatformGenericAnime Platform = "generic_anime"
	PlatformUnknown      Platform = "unknown"
)

// Placeholder reports whether the platform is a generic stand-in rather than a
// real source site. Items on placeholder platforms may be silently relinked
// when the same title shows up on a real platform.
func (p Platform) Placeholder() bool {
	return p == PlatformGenericManga || p == PlatformGenericAnime || p == PlatformUnknown
}

// MigrationRecord links an archived item to its replacement.
type MigrationRecord struct {
	ID                  string    `json:"id"`
	FromKey             string    `json:"from_key"`
	ToKey               string    `json:"to_key"`
	MigratedAt          time.Time `json:"migrated_at"`
	ProgressAtMigration int       `json:"progress_at_migration"`
	Reason              string    `json:"reason,omitempty"`
}

// Item is the unit of tracking: one serialized work on one source platform.
type Item struct {
	Key             string          `json:"key"`
	Platform        Platform        `json:"platform"`
	Title           string          `json:"title"`
	Kind            MediaKind       `json:"kind"`
	Bindings        map[Tracker]int `json:"bindings"`
	LastProgress    int             `json:"last_progress"`
	PendingProgress []int           `json:"pending_progress,omitempty"`
	Status          Status          `json:"status"`
	Lifecycle       Lifecycle       `json:"lifecycle"`
	MigratedFrom    *MigrationRecord `json:"migrated_from,omitempty"`
	MigratedTo      *MigrationRecord `json:"migrated_to,omitempty"`
	AutoSync        bool            `json:"auto_sync,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	LastSyncedAt    time.Time       `json:"last_synced_at,omitempty"`
}

// NewItem creates an active item with defaults for a first observation.
func NewItem(platform Platform, title string, kind MediaKind, progress int, now time.Time) *Item {
	return &Item{
		Key:          MakeKey(platform, title),
		Platform:     platform,
		Title:        title,
		Kind:         kind,
		Bindings:     map[Tracker]int{},
		LastProgress: progress,
		Status:       DefaultStatus(kind),
		Lifecycle:    LifecycleActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Linked reports whether the item is bound to at least one tracker.
func (i *Item) Linked() bool {
	return len(i.Bindings) > 0
}

// Archived reports whether the item has been superseded by a migration.
func (i *Item) Archived() bool {
	return i.Lifecycle == LifecycleArchived
}

// AddPending records a progress value observed but not yet pushed to any
// tracker. Values are deduplicated; order is not meaningful.
func (i *Item) AddPending(progress int) {
	for _, p := range i.PendingProgress {
		if p == progress {
			return
		}
	}
	i.PendingProgress = append(i.PendingProgress, progress)
}

// SyncPoint returns the progress value a first sync should push: the highest
// progress the item is known to have reached, buffered or not.
func (i *Item) SyncPoint() int {
	max := i.LastProgress
	for _, p := range i.PendingProgress {
		if p > max {
			max = p
		}
	}
	return max
}

// Clone returns a deep copy. Session discoveries hand out clones so callers
// cannot mutate cache state in place.
func (i *Item) Clone() *Item {
	c := *i
	c.Bindings = make(map[Tracker]int, len(i.Bindings))
	for t, id := range i.Bindings {
		c.Bindings[t] = id
	}
	if i.PendingProgress != nil {
		c.PendingProgress = append([]int(nil), i.PendingProgress...)
	}
	if i.MigratedFrom != nil {
		rec := *i.MigratedFrom
		c.MigratedFrom = &rec
	}
	if i.MigratedTo != nil {
		rec := *i.MigratedTo
		c.MigratedTo = &rec
	}
	return &c
}

// Auth is a tracker's stored authentication record.
type Auth struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Username     string    `json:"username,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
}

// Settings holds user preferences and per-tracker auth, persisted as one blob.
type Settings struct {
	ActiveTrackers  []Tracker        `json:"active_trackers"`
	ConfirmPolicy   ConfirmPolicy    `json:"confirm_policy"`
	AutoSyncHistory bool             `json:"auto_sync_history"`
	DefaultTracker  Tracker          `json:"default_tracker,omitempty"`
	Auth            map[Tracker]Auth `json:"auth"`
}

// DefaultSettings returns the settings applied before any stored value is merged.
func DefaultSettings() Settings {
	return Settings{
		ActiveTrackers: []Tracker{},
		ConfirmPolicy:  ConfirmQuick,
		Auth:           map[Tracker]Auth{},
	}
}

// TrackerActive reports whether a tracker is in the active set.
func (s Settings) TrackerActive(t Tracker) bool {
	for _, at := range s.ActiveTrackers {
		if at == t {
			return true
		}
	}
	return false
}

// Activate adds a tracker to the active set if not already present.
func (s *Settings) Activate(t Tracker) {
	if !s.TrackerActive(t) {
		s.ActiveTrackers = append(s.ActiveTrackers, t)
	}
}

// Deactivate removes a tracker from the active set.
func (s *Settings) Deactivate(t Tracker) {
	filtered := s.ActiveTrackers[:0]
	for _, at := range s.ActiveTrackers {
		if at != t {
			filtered = append(filtered, at)
		}
	}
	s.ActiveTrackers = filtered
}
