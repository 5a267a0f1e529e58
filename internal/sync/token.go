package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
)

// refreshSkew treats tokens expiring within the window as already expired so
// an in-flight request never carries a token that dies mid-call.
const refreshSkew = 60 * time.Second

// EnsureValidToken returns a usable access token for a tracker, refreshing
// and persisting it when the stored one is expired or about to expire.
//
// The refreshed record keeps the stored username and avatar; token endpoints
// do not return profile data.
func (e *Engine) EnsureValidToken(ctx context.Context, tracker track.Tracker) (string, error) {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return "", err
	}

	auth, ok := settings.Auth[tracker]
	if !ok || auth.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, tracker)
	}

	if auth.ExpiresAt.IsZero() || e.now().Add(refreshSkew).Before(auth.ExpiresAt) {
		return auth.AccessToken, nil
	}

	if auth.RefreshToken == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrNoRefreshToken, tracker)
	}

	adapter, ok := e.registry[tracker]
	if !ok {
		return "", fmt.Errorf("%w: unknown tracker %q", shared.ErrInvalidInput, tracker)
	}

	e.logger.Debug("refreshing token", "tracker", tracker)
	refreshed, err := adapter.RefreshToken(ctx, auth.RefreshToken)
	if err != nil {
		return "", err
	}

	refreshed.Username = auth.Username
	refreshed.AvatarURL = auth.AvatarURL
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = auth.RefreshToken
	}

	settings.Auth[tracker] = *refreshed
	if err := e.store.SaveSettings(ctx, settings); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}
