package trackers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

const (
	shikimoriBaseURL  = "https://shikimori.one"
	shikimoriAPIURL   = shikimoriBaseURL + "/api"
	shikimoriAuthURL  = shikimoriBaseURL + "/oauth/authorize"
	shikimoriTokenURL = shikimoriBaseURL + "/oauth/token"

	// Shikimori rejects requests without an application User-Agent.
	shikimoriUserAgent = "trax"
)

// Shikimori implements Tracker for Shikimori's REST API.
//
// List updates go through the user_rates resource: look the rate up by target,
// then PATCH the existing rate or POST a new one.
type Shikimori struct {
	creds  shared.TrackerCredentials
	client *httpClient
}

// NewShikimori creates a Shikimori adapter.
func NewShikimori(creds shared.TrackerCredentials, client *http.Client) *Shikimori {
	return &Shikimori{creds: creds, client: newHTTPClient(client)}
}

func (s *Shikimori) Name() track.Tracker { return track.TrackerShikimori }

func shikimoriHeader() http.Header {
	header := http.Header{}
	header.Set("User-Agent", shikimoriUserAgent)
	return header
}

// AuthCodeURL builds the Shikimori authorization URL for the code grant.
func (s *Shikimori) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.creds.ClientID)
	params.Set("redirect_uri", s.creds.RedirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)
	return shikimoriAuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens and resolves the profile.
func (s *Shikimori) Exchange(ctx context.Context, code string) (*track.Auth, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", s.creds.ClientID)
	form.Set("client_secret", s.creds.ClientSecret)
	form.Set("redirect_uri", s.creds.RedirectURI)
	form.Set("code", code)

	var resp tokenResponse
	if err := s.client.postForm(ctx, shikimoriTokenURL, form, &resp); err != nil {
		return nil, fmt.Errorf("shikimori token exchange failed: %w", err)
	}

	auth := resp.auth()
	if user, err := s.GetUser(ctx, auth.AccessToken); err == nil {
		auth.Username = user.Username
		auth.AvatarURL = user.AvatarURL
	}
	return auth, nil
}

type shikimoriMedia struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Russian  string `json:"russian"`
	Image    struct {
		Preview string `json:"preview"`
	} `json:"image"`
	Score    string `json:"score"`
	Episodes int    `json:"episodes"`
	Chapters int    `json:"chapters"`
}

type shikimoriUserRate struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Episodes int    `json:"episodes"`
	Chapters int    `json:"chapters"`
}

type shikimoriWhoami struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// shikimoriTargetType returns the user_rates target type for a media kind.
func shikimoriTargetType(kind track.MediaKind) string {
	if kind.Episodic() {
		return "Anime"
	}
	return "Manga"
}

// toShikimoriStatus maps an item status onto Shikimori's user_rate statuses.
// Reading collapses into watching; both plan statuses map to planned.
func toShikimoriStatus(status track.Status) string {
	switch status {
	case track.StatusWatching, track.StatusReading:
		return "watching"
	case track.StatusCompleted:
		return "completed"
	case track.StatusOnHold:
		return "on_hold"
	case track.StatusDropped:
		return "dropped"
	case track.StatusPlanToWatch, track.StatusPlanToRead:
		return "planned"
	}
	return "watching"
}

// Search queries the Shikimori catalog for the media kind.
func (s *Shikimori) Search(ctx context.Context, query string, kind track.MediaKind, token string) ([]Entry, error) {
	resource := "mangas"
	if kind.Episodic() {
		resource = "animes"
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", "10")

	var media []shikimoriMedia
	endpoint := fmt.Sprintf("%s/%s?%s", shikimoriAPIURL, resource, params.Encode())
	if err := s.client.getJSON(ctx, endpoint, token, shikimoriHeader(), &media); err != nil {
		return nil, fmt.Errorf("shikimori search failed: %w", err)
	}

	entries := make([]Entry, 0, len(media))
	for _, item := range media {
		cover := item.Image.Preview
		if cover != "" {
			cover = shikimoriBaseURL + cover
		}
		entries = append(entries, Entry{
			ID:            item.ID,
			Title:         item.Name,
			CoverImage:    cover,
			Kind:          kind,
			TotalEpisodes: item.Episodes,
			TotalChapters: item.Chapters,
			Tracker:       track.TrackerShikimori,
		})
	}
	return entries, nil
}

// findUserRate looks up the caller's existing rate for a target, if any.
func (s *Shikimori) findUserRate(ctx context.Context, userID, externalID int, kind track.MediaKind, token string) (*shikimoriUserRate, error) {
	params := url.Values{}
	params.Set("user_id", fmt.Sprintf("%d", userID))
	params.Set("target_id", fmt.Sprintf("%d", externalID))
	params.Set("target_type", shikimoriTargetType(kind))

	var rates []shikimoriUserRate
	endpoint := fmt.Sprintf("%s/v2/user_rates?%s", shikimoriAPIURL, params.Encode())
	if err := s.client.getJSON(ctx, endpoint, token, shikimoriHeader(), &rates); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, nil
	}
	return &rates[0], nil
}

// UpdateProgress patches the existing user_rate or creates one.
func (s *Shikimori) UpdateProgress(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error {
	whoami, err := s.whoami(ctx, token)
	if err != nil {
		return fmt.Errorf("shikimori update failed: %w", err)
	}

	rate, err := s.findUserRate(ctx, whoami.ID, externalID, kind, token)
	if err != nil {
		return fmt.Errorf("shikimori update failed: %w", err)
	}

	fields := map[string]any{"status": toShikimoriStatus(status)}
	if kind.Episodic() {
		fields["episodes"] = progress
	} else {
		fields["chapters"] = progress
	}

	if rate != nil {
		endpoint := fmt.Sprintf("%s/v2/user_rates/%d", shikimoriAPIURL, rate.ID)
		payload := map[string]any{"user_rate": fields}
		if err := s.client.sendJSON(ctx, http.MethodPatch, endpoint, token, shikimoriHeader(), payload, nil); err != nil {
			return fmt.Errorf("shikimori update failed: %w", err)
		}
		return nil
	}

	fields["user_id"] = whoami.ID
	fields["target_id"] = externalID
	fields["target_type"] = shikimoriTargetType(kind)
	payload := map[string]any{"user_rate": fields}
	if err := s.client.sendJSON(ctx, http.MethodPost, shikimoriAPIURL+"/v2/user_rates", token, shikimoriHeader(), payload, nil); err != nil {
		return fmt.Errorf("shikimori update failed: %w", err)
	}
	return nil
}

func (s *Shikimori) whoami(ctx context.Context, token string) (*shikimoriWhoami, error) {
	var resp shikimoriWhoami
	if err := s.client.getJSON(ctx, shikimoriAPIURL+"/users/whoami", token, shikimoriHeader(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser fetches the authenticated user's profile.
func (s *Shikimori) GetUser(ctx context.Context, token string) (*User, error) {
	whoami, err := s.whoami(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("shikimori user lookup failed: %w", err)
	}
	avatar := whoami.Avatar
	return &User{Username: whoami.Nickname, AvatarURL: avatar}, nil
}

// RefreshToken exchanges the refresh token for a new token pair.
func (s *Shikimori) RefreshToken(ctx context.Context, refreshToken string) (*track.Auth, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.creds.ClientID)
	form.Set("client_secret", s.creds.ClientSecret)
	form.Set("refresh_token", refreshToken)

	var resp tokenResponse
	if err := s.client.postForm(ctx, shikimoriTokenURL, form, &resp); err != nil {
		return nil, fmt.Errorf("%w: shikimori: %v", shared.ErrRefreshFailed, err)
	}
	return resp.auth(), nil
}
