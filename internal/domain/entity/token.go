package entity

import "time"

// RefreshMargin is the safety window before expiry inside which a token is
// refreshed rather than used as-is.
const RefreshMargin = 5 * time.Minute

// TokenSet holds the OAuth2 credentials for a delegated session. A set is
// usable only when all three fields are present; the absence of any one is
// treated as "not authenticated".
type TokenSet struct {
	AccessToken  string    // Short-lived bearer credential.
	RefreshToken string    // Used to mint a new access token.
	ExpiresAt    time.Time // Absolute expiry of the access token.
}

// Complete reports whether every field of the set is present.
func (t *TokenSet) Complete() bool {
	return t != nil && t.AccessToken != "" && t.RefreshToken != "" && !t.ExpiresAt.IsZero()
}

// NeedsRefresh reports whether the access token is expired or inside the
// refresh margin at the given instant.
func (t *TokenSet) NeedsRefresh(now time.Time) bool {
	return now.After(t.ExpiresAt.Add(-RefreshMargin))
}
