package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/trax/internal/server"
	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
	"github.com/desertthunder/trax/internal/trackers"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the callback server waits for the user to
// finish the browser flow.
const loginTimeout = 5 * time.Minute

// credsFor returns the configured OAuth credentials for a tracker.
func (r *Runner) credsFor(tracker track.Tracker) shared.TrackerCredentials {
	switch tracker {
	case track.TrackerMAL:
		return r.config.Credentials.MAL
	case track.TrackerAniList:
		return r.config.Credentials.AniList
	case track.TrackerShikimori:
		return r.config.Credentials.Shikimori
	case track.TrackerBangumi:
		return r.config.Credentials.Bangumi
	}
	return shared.TrackerCredentials{}
}

// AuthLogin runs the OAuth authorization-code flow for one tracker: starts a
// localhost callback server, opens the browser, and persists the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	tracker, err := parseTrackerArg(cmd.StringArg("tracker"))
	if err != nil {
		return err
	}

	adapter := r.registry[tracker]
	authenticator, ok := adapter.(trackers.Authenticator)
	if !ok {
		return fmt.Errorf("%w: %s does not support interactive login", shared.ErrNotImplemented, tracker)
	}

	if !r.credsFor(tracker).Configured() {
		return fmt.Errorf("%w: set credentials.%s.client_id in config.toml", shared.ErrMissingCredentials, tracker)
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(authenticator.Exchange, state)
	router := server.NewBasicRouter()
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	authURL := authenticator.AuthCodeURL(state)
	r.logger.Info("starting OAuth flow", "tracker", tracker, "callback", addr)
	r.writePlain("Opening browser for %s authorization...\n", tracker)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Visit this URL to authorize:\n%s\n", authURL)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		if err := r.engine.SaveAuth(ctx, tracker, *result.Auth); err != nil {
			return err
		}
		if result.Auth.Username != "" {
			return r.writePlain("✓ Logged in to %s as %s\n", tracker, result.Auth.Username)
		}
		return r.writePlain("✓ Logged in to %s\n", tracker)
	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: no callback received", shared.ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthLogout drops a tracker's stored tokens and deactivates it.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	tracker, err := parseTrackerArg(cmd.StringArg("tracker"))
	if err != nil {
		return err
	}

	if err := r.ensureEngine(); err != nil {
		return err
	}

	if err := r.engine.Logout(ctx, tracker); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out of %s (entry bindings kept)\n", tracker)
}

// AuthStatus shows the authentication state for every supported tracker.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngine(); err != nil {
		return err
	}

	settings, err := r.store.Settings(ctx)
	if err != nil {
		return err
	}

	for _, tracker := range track.Trackers {
		auth, ok := settings.Auth[tracker]
		switch {
		case !ok || auth.AccessToken == "":
			r.writePlain("%-10s ✗ not authenticated\n", tracker)
		case auth.Username != "":
			marker := ""
			if settings.DefaultTracker == tracker {
				marker = " (default)"
			}
			r.writePlain("%-10s ✓ %s%s\n", tracker, auth.Username, marker)
		default:
			r.writePlain("%-10s ✓ authenticated\n", tracker)
		}
	}
	return nil
}
