package track

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"lowercases", "Tower of God", "tower-of-god"},
		{"strips punctuation", "Solo Leveling: Ragnarok!", "solo-leveling-ragnarok"},
		{"collapses whitespace", "One   Piece", "one-piece"},
		{"trims hyphens", "  ---Berserk---  ", "berserk"},
		{"keeps digits", "86 Eighty-Six", "86-eighty-six"},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.title); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestMakeKey(t *testing.T) {
	if got := MakeKey("webtoon", "Tower of God"); got != "webtoon:tower-of-god" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestSameTitle(t *testing.T) {
	if !SameTitle("Tower of God", "tower of god!") {
		t.Error("expected titles differing only in case and punctuation to match")
	}
	if SameTitle("Tower of God", "Tower of Gods") {
		t.Error("expected distinct titles not to match")
	}
}

func TestManualKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"manual:berserk", true},
		{"generic_manga:berserk", true},
		{"generic_anime:frieren", true},
		{"webtoon:tower-of-god", false},
		{"mangadex:berserk", false},
	}

	for _, tc := range cases {
		if got := ManualKey(tc.key); got != tc.want {
			t.Errorf("ManualKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestSynthesizeItem(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("reconstructs title from slug", func(t *testing.T) {
		item := SynthesizeItem("manual:tower-of-god", now)

		if item.Key != "manual:tower-of-god" {
			t.Errorf("expected key to be preserved, got %q", item.Key)
		}
		if item.Title != "Tower Of God" {
			t.Errorf("unexpected title %q", item.Title)
		}
		if item.Platform != PlatformGenericManga {
			t.Errorf("expected manual key to land on the generic manga platform, got %q", item.Platform)
		}
		if item.Kind != KindManga {
			t.Errorf("unexpected kind %q", item.Kind)
		}
	})

	t.Run("generic anime key keeps its platform", func(t *testing.T) {
		item := SynthesizeItem("generic_anime:frieren", now)

		if item.Platform != PlatformGenericAnime {
			t.Errorf("unexpected platform %q", item.Platform)
		}
		if item.Kind != KindAnime {
			t.Errorf("unexpected kind %q", item.Kind)
		}
	})

	t.Run("bare key gets a fallback title", func(t *testing.T) {
		item := SynthesizeItem("manual:", now)

		if item.Title != "Manual Entry" {
			t.Errorf("unexpected title %q", item.Title)
		}
	})
}
