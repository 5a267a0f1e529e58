package sync

import (
	"context"
	"fmt"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

// Kind discriminates engine messages.
type Kind string

const (
	KindDetect  Kind = "detect"
	KindLink    Kind = "link"
	KindUnlink  Kind = "unlink"
	KindSync    Kind = "sync"
	KindMigrate Kind = "migrate"
)

// Message is one unit of work for the engine. Fields are interpreted per
// Kind; unused fields are ignored.
type Message struct {
	Kind Kind

	// Detect
	Detection Detection

	// Link / Unlink / Sync
	Key     string
	Tracker track.Tracker
	EntryID int
	Status  track.Status

	// Migrate
	FromKey    string
	ToPlatform track.Platform
	ToTitle    string
	Reason     string
}

// Handle dispatches a message to the matching engine operation.
func (e *Engine) Handle(ctx context.Context, msg Message) error {
	switch msg.Kind {
	case KindDetect:
		return e.HandleDetection(ctx, msg.Detection)
	case KindLink:
		_, err := e.Link(ctx, msg.Key, msg.Tracker, msg.EntryID, msg.Status)
		return err
	case KindUnlink:
		return e.Unlink(ctx, msg.Key, msg.Tracker)
	case KindSync:
		return e.SyncAll(ctx, msg.Key)
	case KindMigrate:
		_, err := e.Migrate(ctx, msg.FromKey, msg.ToPlatform, msg.ToTitle, msg.Reason)
		return err
	default:
		return fmt.Errorf("%w: unknown message kind %q", shared.ErrInvalidInput, msg.Kind)
	}
}
