package track

import (
	"regexp"
	"strings"
	"time"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace    = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slugify normalizes a title for identity comparison: lower-cased, punctuation
// stripped, whitespace runs collapsed to single hyphens, leading and trailing
// hyphens trimmed. Two titles differing only by case, punctuation, or extra
// whitespace produce the same slug.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// MakeKey derives the canonical identity for an item from its platform and title.
func MakeKey(platform Platform, title string) string {
	return string(platform) + ":" + Slugify(title)
}

// SameTitle reports whether two titles normalize identically.
func SameTitle(a, b string) bool {
	return Slugify(a) == Slugify(b)
}

// ManualKey reports whether a key follows the manual/generic-entry pattern
// used by search-initiated links for items never observed on any platform.
func ManualKey(key string) bool {
	return strings.HasPrefix(key, "manual:") || strings.HasPrefix(key, "generic_")
}

// SynthesizeItem builds a default item for a manual/generic key. The title is
// reconstructed from the slug portion of the key.
func SynthesizeItem(key string, now time.Time) *Item {
	parts := strings.SplitN(key, ":", 2)
	platformPart := parts[0]

	kind := KindManga
	if strings.Contains(platformPart, "anime") {
		kind = KindAnime
	}

	slug := "manual-entry"
	if len(parts) > 1 && parts[1] != "" {
		slug = parts[1]
	}

	platform := Platform(platformPart)
	if !strings.HasPrefix(platformPart, "generic") {
		platform = PlatformGenericManga
	}

	title := titleFromSlug(slug)

	item := NewItem(platform, title, kind, 0, now)
	item.Key = key
	return item
}

func titleFromSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
