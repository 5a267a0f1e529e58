// package trackers defines the Tracker adapter interface for external
// progress-tracking services
//
// MyAnimeList, AniList, Shikimori, Bangumi
package trackers

import (
	"context"
	"net/http"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

// Tracker defines the uniform shape of a progress-tracking service adapter.
// The engine depends only on this interface; wire formats are adapter-private.
type Tracker interface {
	// Name returns the tracker identifier (e.g. "mal", "anilist").
	Name() track.Tracker

	// Search queries the tracker's catalog for entries matching the query.
	Search(ctx context.Context, query string, kind track.MediaKind, token string) ([]Entry, error)

	// UpdateProgress pushes a progress value and status to the user's list
	// entry identified by externalID.
	UpdateProgress(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error

	// GetUser retrieves the authenticated user's profile.
	GetUser(ctx context.Context, token string) (*User, error)

	// RefreshToken exchanges a refresh token for a fresh auth record.
	RefreshToken(ctx context.Context, refreshToken string) (*track.Auth, error)
}

// Authenticator is implemented by adapters that support an interactive OAuth
// authorization-code login flow.
type Authenticator interface {
	// AuthCodeURL builds the authorization URL for user login.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an auth record.
	Exchange(ctx context.Context, code string) (*track.Auth, error)
}

// Entry is a uniform search result across trackers.
type Entry struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	CoverImage    string          `json:"cover_image,omitempty"`
	Kind          track.MediaKind `json:"kind"`
	Score         float64         `json:"score,omitempty"`
	TotalChapters int             `json:"total_chapters,omitempty"`
	TotalEpisodes int             `json:"total_episodes,omitempty"`
	Tracker       track.Tracker   `json:"tracker"`
}

// User is a tracker account profile.
type User struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Registry maps tracker identifiers to their adapters.
type Registry map[track.Tracker]Tracker

// NewRegistry constructs adapters for all supported trackers from configured
// credentials. Adapters are registered even with empty credentials so that
// token-bearing operations (sync, search) work without an OAuth app; login
// flows check credentials before starting.
func NewRegistry(creds shared.CredentialsConfig, client *http.Client) Registry {
	return Registry{
		track.TrackerMAL:       NewMAL(creds.MAL, client),
		track.TrackerAniList:   NewAniList(creds.AniList, client),
		track.TrackerShikimori: NewShikimori(creds.Shikimori, client),
		track.TrackerBangumi:   NewBangumi(creds.Bangumi, client),
	}
}
