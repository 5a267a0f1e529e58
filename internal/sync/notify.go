package sync

import (
	"time"

	"github.com/desertthunder/trax/internal/track"
	"github.com/desertthunder/trax/internal/trackers"
)

// ToastKind classifies a transient notification.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// ModalKind classifies an interaction that needs a user decision.
type ModalKind string

const (
	ModalConfirmSync ModalKind = "confirm_sync"
	ModalMigration   ModalKind = "migration"
	ModalLink        ModalKind = "link"
)

// ConfirmSyncData asks the user to confirm pushing an observed progress value
// on an already-linked item.
type ConfirmSyncData struct {
	Item     *track.Item
	Progress int
	// Quick means the prompt is dismissable and progress stays buffered
	// either way; blocking means nothing syncs until the user answers.
	Quick bool
}

// MigrationProposal asks the user whether a detection on a new platform is the
// same work as an existing tracked item.
type MigrationProposal struct {
	Candidate   *track.Item
	NewPlatform track.Platform
	NewTitle    string
	NewProgress int
}

// LinkProposal surfaces an unlinked discovery worth binding to a tracker.
type LinkProposal struct {
	Item    *track.Item
	Results []trackers.Entry
}

// Notifier receives engine-initiated user interactions. The engine never
// blocks on a Notifier; decisions come back as new messages.
type Notifier interface {
	Toast(title, message string, kind ToastKind, duration time.Duration)
	Modal(kind ModalKind, data any)
}

// NoopNotifier discards all notifications. Used when running headless.
type NoopNotifier struct{}

func (NoopNotifier) Toast(title, message string, kind ToastKind, duration time.Duration) {}
func (NoopNotifier) Modal(kind ModalKind, data any)                                      {}
