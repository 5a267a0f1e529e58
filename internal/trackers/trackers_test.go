package trackers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

func TestStatusMappings(t *testing.T) {
	t.Run("mal splits by category", func(t *testing.T) {
		if got := toMALStatus(track.StatusWatching, track.KindAnime); got != "watching" {
			t.Errorf("expected watching, got %s", got)
		}
		if got := toMALStatus(track.StatusReading, track.KindManga); got != "reading" {
			t.Errorf("expected reading, got %s", got)
		}
		if got := toMALStatus(track.StatusPlanToRead, track.KindManhwa); got != "plan_to_read" {
			t.Errorf("expected plan_to_read, got %s", got)
		}
	})

	t.Run("anilist uses one enum for both", func(t *testing.T) {
		cases := map[track.Status]string{
			track.StatusWatching:    "CURRENT",
			track.StatusReading:     "CURRENT",
			track.StatusCompleted:   "COMPLETED",
			track.StatusOnHold:      "PAUSED",
			track.StatusDropped:     "DROPPED",
			track.StatusPlanToWatch: "PLANNING",
			track.StatusPlanToRead:  "PLANNING",
		}
		for status, want := range cases {
			if got := toAniListStatus(status); got != want {
				t.Errorf("status %s: expected %s, got %s", status, want, got)
			}
		}
	})

	t.Run("shikimori collapses plan statuses", func(t *testing.T) {
		if got := toShikimoriStatus(track.StatusPlanToWatch); got != "planned" {
			t.Errorf("expected planned, got %s", got)
		}
		if got := toShikimoriStatus(track.StatusPlanToRead); got != "planned" {
			t.Errorf("expected planned, got %s", got)
		}
		if got := toShikimoriStatus(track.StatusReading); got != "watching" {
			t.Errorf("expected watching, got %s", got)
		}
	})

	t.Run("bangumi numeric collection types", func(t *testing.T) {
		if got := bangumiCollectionType(track.StatusWatching); got != 3 {
			t.Errorf("expected 3 (doing), got %d", got)
		}
		if got := bangumiCollectionType(track.StatusCompleted); got != 2 {
			t.Errorf("expected 2 (collect), got %d", got)
		}
		if got := bangumiCollectionType(track.StatusPlanToRead); got != 1 {
			t.Errorf("expected 1 (wish), got %d", got)
		}
	})
}

func TestCategoryMappings(t *testing.T) {
	nonEpisodic := []track.MediaKind{track.KindManga, track.KindManhwa, track.KindManhua, track.KindNovel}

	for _, kind := range nonEpisodic {
		if malCategory(kind) != "manga" {
			t.Errorf("mal: expected manga for %s", kind)
		}
		if anilistMediaType(kind) != "MANGA" {
			t.Errorf("anilist: expected MANGA for %s", kind)
		}
		if shikimoriTargetType(kind) != "Manga" {
			t.Errorf("shikimori: expected Manga for %s", kind)
		}
		if bangumiSubjectType(kind) != bangumiTypeBook {
			t.Errorf("bangumi: expected book type for %s", kind)
		}
	}

	if malCategory(track.KindAnime) != "anime" {
		t.Error("mal: expected anime category")
	}
	if shikimoriTargetType(track.KindAnime) != "Anime" {
		t.Error("shikimori: expected Anime target type")
	}
}

func TestMALUpdateProgress(t *testing.T) {
	var gotPath, gotBody, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	mal := NewMAL(shared.TrackerCredentials{}, server.Client())
	endpoint := server.URL + "/v2/manga/42/my_list_status"
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Authorization", "Bearer test-token")

	form := "num_chapters_read=7&status=reading"
	err := mal.client.do(context.Background(), http.MethodPatch, endpoint, header, strings.NewReader(form), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v2/manga/42/my_list_status" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected authorization header %s", gotAuth)
	}
	if !strings.Contains(gotBody, "num_chapters_read=7") {
		t.Errorf("body missing chapter count: %s", gotBody)
	}
}

func TestMALFreshVerifierPerFlow(t *testing.T) {
	mal := NewMAL(shared.TrackerCredentials{ClientID: "id"}, nil)

	challenge := func(rawURL string) string {
		t.Helper()
		parsed, err := url.Parse(rawURL)
		if err != nil {
			t.Fatalf("failed to parse auth url: %v", err)
		}
		return parsed.Query().Get("code_challenge")
	}

	first := challenge(mal.AuthCodeURL("state-1"))
	second := challenge(mal.AuthCodeURL("state-2"))

	if len(first) < 43 || len(second) < 43 {
		t.Errorf("verifiers must meet the 43-char minimum, got %d and %d", len(first), len(second))
	}
	if first == second {
		t.Error("each login flow must get its own verifier")
	}
}

func TestHTTPClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newHTTPClient(server.Client())
	err := client.getJSON(context.Background(), server.URL, "expired", nil, nil)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestHTTPClientDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"name": "tester", "picture": "pic.png"})
	}))
	defer server.Close()

	mal := NewMAL(shared.TrackerCredentials{}, server.Client())
	var resp malUserResponse
	if err := mal.client.getJSON(context.Background(), server.URL, "token", nil, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Name != "tester" {
		t.Errorf("expected tester, got %s", resp.Name)
	}
}

func TestRegistryCoversAllTrackers(t *testing.T) {
	registry := NewRegistry(shared.CredentialsConfig{}, nil)
	for _, name := range track.Trackers {
		adapter, ok := registry[name]
		if !ok {
			t.Fatalf("missing adapter for %s", name)
		}
		if adapter.Name() != name {
			t.Errorf("adapter %s reports name %s", name, adapter.Name())
		}
	}
}
