package entra

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
)

type fakeSessionStore struct {
	sessions map[string]*entity.TokenSet
	puts     int
	deletes  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*entity.TokenSet)}
}

func (s *fakeSessionStore) Get(id string) (*entity.TokenSet, bool) {
	tokens, ok := s.sessions[id]

	return tokens, ok
}

func (s *fakeSessionStore) Put(id string, tokens *entity.TokenSet) string {
	if id == "" {
		id = "generated"
	}
	s.sessions[id] = tokens
	s.puts++

	return id
}

func (s *fakeSessionStore) Delete(id string) {
	delete(s.sessions, id)
	s.deletes++
}

type fakeFlow struct {
	refreshed  *entity.TokenSet
	refreshErr error
	refreshes  int
}

func (f *fakeFlow) AuthCodeURL() string { return "https://login.example/authorize" }
func (f *fakeFlow) LogoutURL() string   { return "https://login.example/logout" }

func (f *fakeFlow) Exchange(_ context.Context, _ string) (*entity.TokenSet, error) {
	return nil, errors.New("not used")
}

func (f *fakeFlow) Refresh(_ context.Context, _ string) (*entity.TokenSet, error) {
	f.refreshes++

	return f.refreshed, f.refreshErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSessionTokenSource_MissingSession(t *testing.T) {
	source := NewSessionTokenSource(newFakeSessionStore(), &fakeFlow{}, testLogger())

	_, err := source.Token(context.Background(), "absent")
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
}

func TestSessionTokenSource_IncompleteSession(t *testing.T) {
	store := newFakeSessionStore()
	store.sessions["s1"] = &entity.TokenSet{AccessToken: "a"}

	source := NewSessionTokenSource(store, &fakeFlow{}, testLogger())

	_, err := source.Token(context.Background(), "s1")
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
}

func TestSessionTokenSource_FreshTokenPassesThrough(t *testing.T) {
	store := newFakeSessionStore()
	store.sessions["s1"] = &entity.TokenSet{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	flow := &fakeFlow{}

	source := NewSessionTokenSource(store, flow, testLogger())

	token, err := source.Token(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "access", token)
	assert.Zero(t, flow.refreshes)
	assert.Zero(t, store.puts)
}

func TestSessionTokenSource_ExpiringTokenRefreshedOnce(t *testing.T) {
	store := newFakeSessionStore()
	store.sessions["s1"] = &entity.TokenSet{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Minute),
	}
	flow := &fakeFlow{
		refreshed: &entity.TokenSet{
			AccessToken:  "fresh",
			RefreshToken: "refresh-2",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}

	source := NewSessionTokenSource(store, flow, testLogger())

	token, err := source.Token(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1, flow.refreshes)

	// The whole set is overwritten in one write, never field by field.
	assert.Equal(t, 1, store.puts)
	stored := store.sessions["s1"]
	assert.Equal(t, "fresh", stored.AccessToken)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestSessionTokenSource_FailedRefreshClearsSession(t *testing.T) {
	store := newFakeSessionStore()
	store.sessions["s1"] = &entity.TokenSet{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	flow := &fakeFlow{refreshErr: errors.New("provider said no")}

	source := NewSessionTokenSource(store, flow, testLogger())

	_, err := source.Token(context.Background(), "s1")
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
	assert.Equal(t, 1, store.deletes)

	// The next read reports unauthenticated without another refresh.
	_, err = source.Token(context.Background(), "s1")
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
	assert.Equal(t, 1, flow.refreshes)
}
