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
	anilistGraphQLURL = "https://graphql.anilist.co"
	anilistAuthURL    = "https://anilist.co/api/v2/oauth/authorize"
	anilistTokenURL   = "https://anilist.co/api/v2/oauth/token"
)

// AniList implements Tracker for AniList's GraphQL API.
type AniList struct {
	creds  shared.TrackerCredentials
	client *httpClient
}

// NewAniList creates an AniList adapter.
func NewAniList(creds shared.TrackerCredentials, client *http.Client) *AniList {
	return &AniList{creds: creds, client: newHTTPClient(client)}
}

func (a *AniList) Name() track.Tracker { return track.TrackerAniList }

// AuthCodeURL builds the AniList authorization URL for the code grant.
func (a *AniList) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", a.creds.ClientID)
	params.Set("redirect_uri", a.creds.RedirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)
	return anilistAuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens and resolves the profile.
func (a *AniList) Exchange(ctx context.Context, code string) (*track.Auth, error) {
	payload := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     a.creds.ClientID,
		"client_secret": a.creds.ClientSecret,
		"redirect_uri":  a.creds.RedirectURI,
		"code":          code,
	}

	var resp tokenResponse
	if err := a.client.sendJSON(ctx, http.MethodPost, anilistTokenURL, "", nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("anilist token exchange failed: %w", err)
	}

	auth := resp.auth()
	if user, err := a.GetUser(ctx, auth.AccessToken); err == nil {
		auth.Username = user.Username
		auth.AvatarURL = user.AvatarURL
	}
	return auth, nil
}

type anilistTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

type anilistMedia struct {
	ID         int          `json:"id"`
	Title      anilistTitle `json:"title"`
	CoverImage struct {
		Medium string `json:"medium"`
	} `json:"coverImage"`
	AverageScore int `json:"averageScore"`
	Episodes     int `json:"episodes"`
	Chapters     int `json:"chapters"`
}

type anilistSearchResponse struct {
	Data struct {
		Page struct {
			Media []anilistMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

type anilistViewerResponse struct {
	Data struct {
		Viewer struct {
			Name   string `json:"name"`
			Avatar struct {
				Large string `json:"large"`
			} `json:"avatar"`
		} `json:"Viewer"`
	} `json:"data"`
}

// anilistMediaType returns the GraphQL media type for a kind. Manga, manhwa,
// manhua and novels all live under MANGA on AniList.
func anilistMediaType(kind track.MediaKind) string {
	if kind.Episodic() {
		return "ANIME"
	}
	return "MANGA"
}

// toAniListStatus maps an item status onto AniList's MediaListStatus enum.
func toAniListStatus(status track.Status) string {
	switch status {
	case track.StatusWatching, track.StatusReading:
		return "CURRENT"
	case track.StatusCompleted:
		return "COMPLETED"
	case track.StatusOnHold:
		return "PAUSED"
	case track.StatusDropped:
		return "DROPPED"
	case track.StatusPlanToWatch, track.StatusPlanToRead:
		return "PLANNING"
	}
	return "CURRENT"
}

// gql posts one GraphQL operation and decodes the response envelope.
func (a *AniList) gql(ctx context.Context, query string, variables map[string]any, token string, result any) error {
	payload := map[string]any{"query": query, "variables": variables}
	return a.client.sendJSON(ctx, http.MethodPost, anilistGraphQLURL, token, nil, payload, result)
}

const anilistSearchQuery = `
query ($search: String, $type: MediaType) {
  Page(perPage: 10) {
    media(search: $search, type: $type) {
      id
      title { romaji english }
      coverImage { medium }
      averageScore
      episodes
      chapters
    }
  }
}`

const anilistSaveMutation = `
mutation ($mediaId: Int, $progress: Int, $status: MediaListStatus) {
  SaveMediaListEntry(mediaId: $mediaId, progress: $progress, status: $status) {
    id
  }
}`

const anilistViewerQuery = `
query { Viewer { name avatar { large } } }`

// Search queries the AniList catalog for the media kind.
func (a *AniList) Search(ctx context.Context, query string, kind track.MediaKind, token string) ([]Entry, error) {
	variables := map[string]any{
		"search": query,
		"type":   anilistMediaType(kind),
	}

	var resp anilistSearchResponse
	if err := a.gql(ctx, anilistSearchQuery, variables, token, &resp); err != nil {
		return nil, fmt.Errorf("anilist search failed: %w", err)
	}

	entries := make([]Entry, 0, len(resp.Data.Page.Media))
	for _, media := range resp.Data.Page.Media {
		title := media.Title.English
		if title == "" {
			title = media.Title.Romaji
		}
		entries = append(entries, Entry{
			ID:            media.ID,
			Title:         title,
			CoverImage:    media.CoverImage.Medium,
			Kind:          kind,
			Score:         float64(media.AverageScore) / 10,
			TotalEpisodes: media.Episodes,
			TotalChapters: media.Chapters,
			Tracker:       track.TrackerAniList,
		})
	}
	return entries, nil
}

// UpdateProgress upserts the user's list entry via SaveMediaListEntry.
func (a *AniList) UpdateProgress(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error {
	variables := map[string]any{
		"mediaId":  externalID,
		"progress": progress,
		"status":   toAniListStatus(status),
	}
	if err := a.gql(ctx, anilistSaveMutation, variables, token, nil); err != nil {
		return fmt.Errorf("anilist update failed: %w", err)
	}
	return nil
}

// GetUser fetches the authenticated viewer's profile.
func (a *AniList) GetUser(ctx context.Context, token string) (*User, error) {
	var resp anilistViewerResponse
	if err := a.gql(ctx, anilistViewerQuery, nil, token, &resp); err != nil {
		return nil, fmt.Errorf("anilist viewer lookup failed: %w", err)
	}
	return &User{
		Username:  resp.Data.Viewer.Name,
		AvatarURL: resp.Data.Viewer.Avatar.Large,
	}, nil
}

// RefreshToken exchanges the refresh token for a new token pair.
func (a *AniList) RefreshToken(ctx context.Context, refreshToken string) (*track.Auth, error) {
	payload := map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     a.creds.ClientID,
		"client_secret": a.creds.ClientSecret,
		"refresh_token": refreshToken,
	}

	var resp tokenResponse
	if err := a.client.sendJSON(ctx, http.MethodPost, anilistTokenURL, "", nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: anilist: %v", shared.ErrRefreshFailed, err)
	}
	return resp.auth(), nil
}
