package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/trax/internal/track"
)

var (
	_ list.Item = libraryItem{}
)

// libraryItem wraps [track.Item] to implement [list.Item].
type libraryItem struct {
	item *track.Item
}

func (i libraryItem) FilterValue() string { return i.item.Title }
func (i libraryItem) Title() string       { return i.item.Title }
func (i libraryItem) Description() string {
	unit := "ch"
	if i.item.Kind.Episodic() {
		unit = "ep"
	}
	desc := fmt.Sprintf("%s • %d%s", i.item.Platform, i.item.SyncPoint(), unit)

	if len(i.item.PendingProgress) > 0 {
		desc = fmt.Sprintf("%s • %d pending", desc, len(i.item.PendingProgress))
	}
	if i.item.Linked() {
		names := make([]string, 0, len(i.item.Bindings))
		for tracker := range i.item.Bindings {
			names = append(names, string(tracker))
		}
		sort.Strings(names)
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(names, ", "))
	} else {
		desc = fmt.Sprintf("%s • unlinked", desc)
	}
	return desc
}
