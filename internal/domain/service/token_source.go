// Package service defines the interfaces for domain services whose concrete
// implementations live in the infrastructure layer.
package service

import (
	"context"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
)

// TokenSource produces a bearer token usable against the Graph API.
// A deployment wires exactly one implementation: the delegated session
// source or the application-only assertion source.
type TokenSource interface {
	// Token returns a valid access token for the given session, refreshing
	// it when necessary. Returns domain errors.ErrNotAuthenticated when the
	// session holds no usable credentials.
	Token(ctx context.Context, sessionID string) (string, error)
}

// AuthorizationFlow drives the delegated authorization-code flow against
// the identity provider. Only the delegated deployment uses it.
type AuthorizationFlow interface {
	// AuthCodeURL builds the authorization redirect URL.
	AuthCodeURL() string

	// Exchange swaps an authorization code for a token set.
	Exchange(ctx context.Context, code string) (*entity.TokenSet, error)

	// Refresh mints a new token set from a refresh token.
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenSet, error)

	// LogoutURL builds the identity provider's logout redirect URL.
	LogoutURL() string
}

// SessionStore is the server-side session holding the per-user token set,
// keyed by a cookie-carried session ID. A session is only ever mutated by
// the request that owns its cookie, so no cross-request coordination beyond
// the store's own locking is required.
type SessionStore interface {
	// Get returns the token set for a session ID, or false when the session
	// does not exist or has expired.
	Get(id string) (*entity.TokenSet, bool)

	// Put stores the token set and returns the session ID. An id naming an
	// existing session overwrites it; anything else stores under a freshly
	// minted ID.
	Put(id string, tokens *entity.TokenSet) string

	// Delete removes a session.
	Delete(id string)
}
