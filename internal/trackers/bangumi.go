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
	bangumiAPIURL   = "https://api.bgm.tv"
	bangumiAuthURL  = "https://bgm.tv/oauth/authorize"
	bangumiTokenURL = "https://bgm.tv/oauth/access_token"

	// Bangumi subject types: 1 book, 2 anime.
	bangumiTypeBook  = 1
	bangumiTypeAnime = 2
)

// bangumiCollectionType maps an item status to Bangumi's numeric collection
// type: 1 wish, 2 collect, 3 doing, 4 on hold, 5 dropped.
func bangumiCollectionType(status track.Status) int {
	switch status {
	case track.StatusPlanToWatch, track.StatusPlanToRead:
		return 1
	case track.StatusCompleted:
		return 2
	case track.StatusOnHold:
		return 4
	case track.StatusDropped:
		return 5
	}
	return 3
}

// Bangumi implements Tracker for Bangumi's v0 REST API.
type Bangumi struct {
	creds  shared.TrackerCredentials
	client *httpClient
}

// NewBangumi creates a Bangumi adapter.
func NewBangumi(creds shared.TrackerCredentials, client *http.Client) *Bangumi {
	return &Bangumi{creds: creds, client: newHTTPClient(client)}
}

func (b *Bangumi) Name() track.Tracker { return track.TrackerBangumi }

// AuthCodeURL builds the Bangumi authorization URL for the code grant.
func (b *Bangumi) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", b.creds.ClientID)
	params.Set("redirect_uri", b.creds.RedirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)
	return bangumiAuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens and resolves the profile.
func (b *Bangumi) Exchange(ctx context.Context, code string) (*track.Auth, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", b.creds.ClientID)
	form.Set("client_secret", b.creds.ClientSecret)
	form.Set("redirect_uri", b.creds.RedirectURI)
	form.Set("code", code)

	var resp tokenResponse
	if err := b.client.postForm(ctx, bangumiTokenURL, form, &resp); err != nil {
		return nil, fmt.Errorf("bangumi token exchange failed: %w", err)
	}

	auth := resp.auth()
	if user, err := b.GetUser(ctx, auth.AccessToken); err == nil {
		auth.Username = user.Username
		auth.AvatarURL = user.AvatarURL
	}
	return auth, nil
}

type bangumiSubject struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameCN string `json:"name_cn"`
	Images struct {
		Common string `json:"common"`
	} `json:"images"`
	Rating struct {
		Score float64 `json:"score"`
	} `json:"rating"`
	Eps     int `json:"eps"`
	Volumes int `json:"volumes"`
}

type bangumiSearchResponse struct {
	Data []bangumiSubject `json:"data"`
}

type bangumiMe struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   struct {
		Large string `json:"large"`
	} `json:"avatar"`
}

// bangumiSubjectType returns the numeric subject type for a media kind.
func bangumiSubjectType(kind track.MediaKind) int {
	if kind.Episodic() {
		return bangumiTypeAnime
	}
	return bangumiTypeBook
}

// Search queries the Bangumi catalog for the media kind.
func (b *Bangumi) Search(ctx context.Context, query string, kind track.MediaKind, token string) ([]Entry, error) {
	payload := map[string]any{
		"keyword": query,
		"filter":  map[string]any{"type": []int{bangumiSubjectType(kind)}},
	}

	var resp bangumiSearchResponse
	endpoint := bangumiAPIURL + "/v0/search/subjects?limit=10"
	if err := b.client.sendJSON(ctx, http.MethodPost, endpoint, token, nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("bangumi search failed: %w", err)
	}

	entries := make([]Entry, 0, len(resp.Data))
	for _, subject := range resp.Data {
		title := subject.NameCN
		if title == "" {
			title = subject.Name
		}
		entries = append(entries, Entry{
			ID:            subject.ID,
			Title:         title,
			CoverImage:    subject.Images.Common,
			Kind:          kind,
			Score:         subject.Rating.Score,
			TotalEpisodes: subject.Eps,
			TotalChapters: subject.Volumes,
			Tracker:       track.TrackerBangumi,
		})
	}
	return entries, nil
}

// UpdateProgress upserts the user's collection entry for the subject.
func (b *Bangumi) UpdateProgress(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error {
	payload := map[string]any{"type": bangumiCollectionType(status)}
	if kind.Episodic() {
		payload["ep_status"] = progress
	} else {
		payload["vol_status"] = progress
	}

	endpoint := fmt.Sprintf("%s/v0/users/-/collections/%d", bangumiAPIURL, externalID)
	if err := b.client.sendJSON(ctx, http.MethodPost, endpoint, token, nil, payload, nil); err != nil {
		return fmt.Errorf("bangumi update failed: %w", err)
	}
	return nil
}

// GetUser fetches the authenticated user's profile.
func (b *Bangumi) GetUser(ctx context.Context, token string) (*User, error) {
	var resp bangumiMe
	if err := b.client.getJSON(ctx, bangumiAPIURL+"/v0/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("bangumi user lookup failed: %w", err)
	}
	username := resp.Nickname
	if username == "" {
		username = resp.Username
	}
	return &User{Username: username, AvatarURL: resp.Avatar.Large}, nil
}

// RefreshToken exchanges the refresh token for a new token pair.
func (b *Bangumi) RefreshToken(ctx context.Context, refreshToken string) (*track.Auth, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", b.creds.ClientID)
	form.Set("client_secret", b.creds.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("redirect_uri", b.creds.RedirectURI)

	var resp tokenResponse
	if err := b.client.postForm(ctx, bangumiTokenURL, form, &resp); err != nil {
		return nil, fmt.Errorf("%w: bangumi: %v", shared.ErrRefreshFailed, err)
	}
	return resp.auth(), nil
}
