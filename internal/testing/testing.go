// package testing provides mocks shared by the package test suites
package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/trax/internal/track"
	"github.com/desertthunder/trax/internal/trackers"
)

// MockTracker implements trackers.Tracker with injectable behavior and call
// recording.
type MockTracker struct {
	mu sync.Mutex

	TrackerName track.Tracker

	SearchFunc  func(ctx context.Context, query string, kind track.MediaKind, token string) ([]trackers.Entry, error)
	UpdateFunc  func(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error
	UserFunc    func(ctx context.Context, token string) (*trackers.User, error)
	RefreshFunc func(ctx context.Context, refreshToken string) (*track.Auth, error)

	// Updates records every UpdateProgress call in order.
	Updates []MockUpdate
	// Refreshes counts RefreshToken calls.
	Refreshes int
}

// MockUpdate captures the arguments of one UpdateProgress call.
type MockUpdate struct {
	ExternalID int
	Progress   int
	Status     track.Status
	Token      string
}

func (m *MockTracker) Name() track.Tracker {
	if m.TrackerName == "" {
		return track.TrackerMAL
	}
	return m.TrackerName
}

func (m *MockTracker) Search(ctx context.Context, query string, kind track.MediaKind, token string) ([]trackers.Entry, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, kind, token)
	}
	return nil, nil
}

func (m *MockTracker) UpdateProgress(ctx context.Context, externalID int, kind track.MediaKind, progress int, status track.Status, token string) error {
	m.mu.Lock()
	m.Updates = append(m.Updates, MockUpdate{ExternalID: externalID, Progress: progress, Status: status, Token: token})
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, externalID, kind, progress, status, token)
	}
	return nil
}

func (m *MockTracker) GetUser(ctx context.Context, token string) (*trackers.User, error) {
	if m.UserFunc != nil {
		return m.UserFunc(ctx, token)
	}
	return &trackers.User{Username: "mockuser"}, nil
}

func (m *MockTracker) RefreshToken(ctx context.Context, refreshToken string) (*track.Auth, error) {
	m.mu.Lock()
	m.Refreshes++
	m.mu.Unlock()
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return &track.Auth{AccessToken: "refreshed-token", RefreshToken: refreshToken}, nil
}

// UpdateCount returns the number of recorded UpdateProgress calls.
func (m *MockTracker) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}

// LastUpdate returns the most recent recorded update, or nil when none.
func (m *MockTracker) LastUpdate() *MockUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Updates) == 0 {
		return nil
	}
	update := m.Updates[len(m.Updates)-1]
	return &update
}

// FWriter is an io.Writer that records everything written to it.
type FWriter struct {
	Contents []byte
}

func (f *FWriter) Write(p []byte) (int, error) {
	f.Contents = append(f.Contents, p...)
	return len(p), nil
}

func (f *FWriter) String() string {
	return string(f.Contents)
}
