package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
)

func newTestStore(ttl time.Duration) *MemoryStore {
	cfg := &config.Config{Session: &config.SessionConfig{TTL: ttl}}

	return NewMemoryStore(cfg).(*MemoryStore)
}

func testTokens(access string) *entity.TokenSet {
	return &entity.TokenSet{
		AccessToken:  access,
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestMemoryStore_PutGeneratesID(t *testing.T) {
	store := newTestStore(time.Hour)

	id := store.Put("", testTokens("a"))
	require.NotEmpty(t, id)

	tokens, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a", tokens.AccessToken)
}

func TestMemoryStore_PutKeepsExistingID(t *testing.T) {
	store := newTestStore(time.Hour)

	id := store.Put("", testTokens("a"))
	same := store.Put(id, testTokens("b"))
	assert.Equal(t, id, same)

	tokens, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "b", tokens.AccessToken)
}

func TestMemoryStore_PutDoesNotAdoptUnknownID(t *testing.T) {
	store := newTestStore(time.Hour)

	id := store.Put("attacker-known-id", testTokens("victim-access-token"))
	assert.NotEqual(t, "attacker-known-id", id)

	_, ok := store.Get("attacker-known-id")
	assert.False(t, ok)

	tokens, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "victim-access-token", tokens.AccessToken)
}

func TestMemoryStore_GetUnknownID(t *testing.T) {
	store := newTestStore(time.Hour)

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := newTestStore(time.Hour)

	id := store.Put("", testTokens("a"))
	store.Delete(id)

	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestMemoryStore_ExpiredSessionIsGone(t *testing.T) {
	store := newTestStore(time.Millisecond)

	id := store.Put("", testTokens("a"))
	time.Sleep(5 * time.Millisecond)

	_, ok := store.Get(id)
	assert.False(t, ok)
}
