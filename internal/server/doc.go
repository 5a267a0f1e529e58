// Package server provides HTTP routing, middleware, and OAuth callback handling for CLI login flows.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), hands the authorization code to the
// tracker adapter's exchange, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `trax auth login <tracker>`, a temporary HTTP server starts on the configured
// localhost port, handles the callback, and shuts down after receiving the token.
package server
