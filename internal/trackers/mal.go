package trackers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
	"golang.org/x/oauth2"
)

const (
	malAPIURL   = "https://api.myanimelist.net/v2"
	malAuthURL  = "https://myanimelist.net/v1/oauth2/authorize"
	malTokenURL = "https://myanimelist.net/v1/oauth2/token"

	malAnimeFields = "id,title,main_picture,mean,num_episodes"
	malMangaFields = "id,title,main_picture,mean,num_chapters"
)

// MAL implements Tracker for MyAnimeList's v2 REST API.
type MAL struct {
	creds  shared.TrackerCredentials
	client *httpClient
	oauth  *oauth2.Config

	// MAL only supports the plain PKCE method, so the verifier doubles as
	// the challenge. A fresh one is generated per login flow.
	mu       sync.Mutex
	verifier string
}

// newCodeVerifier builds a random PKCE verifier meeting RFC 7636's 43-char
// minimum.
func newCodeVerifier() string {
	return shared.GenerateID() + shared.GenerateID()
}

// NewMAL creates a MyAnimeList adapter.
func NewMAL(creds shared.TrackerCredentials, client *http.Client) *MAL {
	return &MAL{
		creds:  creds,
		client: newHTTPClient(client),
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  malAuthURL,
				TokenURL: malTokenURL,
			},
		},
	}
}

func (m *MAL) Name() track.Tracker { return track.TrackerMAL }

// AuthCodeURL builds the MAL authorization URL using the plain PKCE method,
// generating a fresh code verifier for this flow.
func (m *MAL) AuthCodeURL(state string) string {
	m.mu.Lock()
	m.verifier = newCodeVerifier()
	verifier := m.verifier
	m.mu.Unlock()

	return m.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", verifier),
		oauth2.SetAuthURLParam("code_challenge_method", "plain"),
	)
}

// Exchange trades an authorization code for tokens and resolves the profile.
func (m *MAL) Exchange(ctx context.Context, code string) (*track.Auth, error) {
	m.mu.Lock()
	verifier := m.verifier
	m.mu.Unlock()

	token, err := m.oauth.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
	if err != nil {
		return nil, fmt.Errorf("mal token exchange failed: %w", err)
	}

	auth := &track.Auth{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if user, err := m.GetUser(ctx, auth.AccessToken); err == nil {
		auth.Username = user.Username
		auth.AvatarURL = user.AvatarURL
	}
	return auth, nil
}

type malPicture struct {
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type malNode struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	MainPicture malPicture `json:"main_picture"`
	Mean        float64    `json:"mean"`
	NumEpisodes int        `json:"num_episodes"`
	NumChapters int        `json:"num_chapters"`
}

type malSearchResponse struct {
	Data []struct {
		Node malNode `json:"node"`
	} `json:"data"`
}

type malUserResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// malCategory returns the API path segment for a media kind.
func malCategory(kind track.MediaKind) string {
	if kind.Episodic() {
		return "anime"
	}
	return "manga"
}

// toMALStatus maps an item status onto MAL's per-category status vocabulary.
func toMALStatus(status track.Status, kind track.MediaKind) string {
	switch status {
	case track.StatusWatching, track.StatusReading:
		if kind.Episodic() {
			return "watching"
		}
		return "reading"
	case track.StatusCompleted:
		return "completed"
	case track.StatusOnHold:
		return "on_hold"
	case track.StatusDropped:
		return "dropped"
	case track.StatusPlanToWatch, track.StatusPlanToRead:
		if kind.Episodic() {
			return "plan_to_watch"
		}
		return "plan_to_read"
	}
	return string(status)
}

// Search queries the MAL catalog for the media kind.
func (m *MAL) Search(ctx context.Context, query string, kind track.MediaKind, token string) ([]Entry, error) {
	category := malCategory(kind)
	fields := malMangaFields
	if kind.Episodic() {
		fields = malAnimeFields
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "10")
	params.Set("fields", fields)

	var resp malSearchResponse
	endpoint := fmt.Sprintf("%s/%s?%s", malAPIURL, category, params.Encode())
	if err := m.client.getJSON(ctx, endpoint, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("mal search failed: %w", err)
	}

	entries := make([]Entry, 0, len(resp.Data))
	for _, item := range resp.Data {
		entries = append(entries, Entry{
			ID:            item.Node.ID,
			Title:         item.Node.Title,
			CoverImage:    item.Node.MainPicture.Medium,
			Kind:          kind,
			Score:         item.Node.Mean,
			TotalEpisodes: item.Node.NumEpisodes,
			TotalChapters: item.Node.NumChapters,
			Tracker:       track.TrackerMAL,
		})
	}
	return entries, nil
}

// UpdateProgress upserts the user's list entry via the my_list_status endpoint.
func (m *MAL) UpdateProgress(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error {
	form := url.Values{}
	form.Set("status", toMALStatus(status, kind))
	if kind.Episodic() {
		form.Set("num_watched_episodes", fmt.Sprintf("%d", progress))
	} else {
		form.Set("num_chapters_read", fmt.Sprintf("%d", progress))
	}

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Authorization", "Bearer "+token)

	endpoint := fmt.Sprintf("%s/%s/%d/my_list_status", malAPIURL, malCategory(kind), externalID)
	if err := m.client.do(ctx, http.MethodPatch, endpoint, header, formReader(form), nil); err != nil {
		return fmt.Errorf("mal update failed: %w", err)
	}
	return nil
}

// GetUser fetches the authenticated user's profile.
func (m *MAL) GetUser(ctx context.Context, token string) (*User, error) {
	var resp malUserResponse
	if err := m.client.getJSON(ctx, malAPIURL+"/users/@me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("mal user lookup failed: %w", err)
	}
	return &User{Username: resp.Name, AvatarURL: resp.Picture}, nil
}

// RefreshToken exchanges the refresh token for a new token pair.
func (m *MAL) RefreshToken(ctx context.Context, refreshToken string) (*track.Auth, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", m.creds.ClientID)
	form.Set("client_secret", m.creds.ClientSecret)

	var resp tokenResponse
	if err := m.client.postForm(ctx, malTokenURL, form, &resp); err != nil {
		return nil, fmt.Errorf("%w: mal: %v", shared.ErrRefreshFailed, err)
	}
	return resp.auth(), nil
}
