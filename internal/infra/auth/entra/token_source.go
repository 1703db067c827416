package entra

import (
	"context"
	"log/slog"
	"time"

	"github.com/TimLeitch/ms-contact-sync/config"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"

	"github.com/pkg/errors"
)

// SessionTokenSource resolves a bearer token from the per-user session,
// transparently refreshing it inside the expiry margin. It is the
// TokenSource implementation for delegated deployments.
type SessionTokenSource struct {
	store  service.SessionStore
	flow   service.AuthorizationFlow
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionTokenSource is the constructor for SessionTokenSource.
func NewSessionTokenSource(store service.SessionStore, flow service.AuthorizationFlow, logger *slog.Logger) *SessionTokenSource {
	return &SessionTokenSource{
		store:  store,
		flow:   flow,
		logger: logger,
		now:    time.Now,
	}
}

// Token returns a valid access token for the session. A session missing any
// of access token, refresh token, or expiry is never partially valid; it is
// simply unauthenticated. Inside the refresh margin exactly one refresh is
// attempted: on success all three fields are overwritten in a single store
// write, on failure the session is cleared so the next read also reports
// unauthenticated.
func (s *SessionTokenSource) Token(ctx context.Context, sessionID string) (string, error) {
	tokens, ok := s.store.Get(sessionID)
	if !ok || !tokens.Complete() {
		return "", domainerrors.ErrNotAuthenticated
	}

	if !tokens.NeedsRefresh(s.now()) {
		return tokens.AccessToken, nil
	}

	refreshed, err := s.flow.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		s.logger.Error("Token refresh failed", slog.Any("error", err))
		s.store.Delete(sessionID)

		return "", domainerrors.ErrNotAuthenticated.WrapMessage("token refresh failed")
	}

	s.store.Put(sessionID, refreshed)

	return refreshed.AccessToken, nil
}

// AppTokenSource is the TokenSource implementation for application-only
// deployments. Every call requests a fresh token from the identity
// provider; no caching, no retry.
type AppTokenSource struct {
	assertion *AssertionClient
}

// NewAppTokenSource is the constructor for AppTokenSource.
func NewAppTokenSource(assertion *AssertionClient) *AppTokenSource {
	return &AppTokenSource{assertion: assertion}
}

// Token requests a fresh application token. The session ID is ignored; the
// application acts as itself, not on behalf of a user.
func (s *AppTokenSource) Token(ctx context.Context, _ string) (string, error) {
	return s.assertion.AccessToken(ctx)
}

// NewTokenSource wires the TokenSource selected by entra.authMode. A
// deployment picks exactly one strategy; the other is never constructed.
func NewTokenSource(cfg *config.Config, store service.SessionStore, flow service.AuthorizationFlow, logger *slog.Logger) (service.TokenSource, error) {
	switch cfg.Entra.AuthMode {
	case config.AuthModeDelegated:
		return NewSessionTokenSource(store, flow, logger), nil
	case config.AuthModeApplication:
		assertion, err := NewAssertionClient(cfg, logger)
		if err != nil {
			return nil, err
		}

		return NewAppTokenSource(assertion), nil
	default:
		return nil, errors.Errorf("unknown auth mode: %q", cfg.Entra.AuthMode)
	}
}
