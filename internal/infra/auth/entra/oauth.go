// Package entra implements the two credential strategies against Microsoft
// Entra ID: the delegated authorization-code flow and the application-only
// client-credentials flow with a certificate-signed JWT assertion.
package entra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"

	"github.com/pkg/errors"
)

// tokenResponse is the identity provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// OAuthFlow handles the delegated authorization-code flow.
type OAuthFlow struct {
	clientID      string
	clientSecret  string
	redirectURI   string
	scopes        []string
	authorizeURL  string
	tokenURL      string
	logoutURL     string
	postLogoutURI string

	httpClient *http.Client
	now        func() time.Time
}

// NewOAuthFlow is the constructor for OAuthFlow.
func NewOAuthFlow(cfg *config.Config) service.AuthorizationFlow {
	entra := cfg.Entra

	return &OAuthFlow{
		clientID:      entra.ClientID,
		clientSecret:  entra.ClientSecret,
		redirectURI:   entra.RedirectURI,
		scopes:        entra.Scopes,
		authorizeURL:  entra.AuthorizeEndpoint(),
		tokenURL:      entra.TokenEndpoint(),
		logoutURL:     entra.LogoutEndpoint(),
		postLogoutURI: cfg.HTTP.BaseURL + "/",
		httpClient:    &http.Client{Timeout: cfg.Graph.Timeout},
		now:           time.Now,
	}
}

// AuthCodeURL constructs the authorization URL the browser is redirected to.
// No state or PKCE parameters are sent; the callback correlates purely on
// the session cookie.
func (f *OAuthFlow) AuthCodeURL() string {
	params := url.Values{}
	params.Set("client_id", f.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", f.redirectURI)
	params.Set("scope", strings.Join(f.scopes, " "))
	params.Set("prompt", "select_account")
	params.Set("response_mode", "query")

	return f.authorizeURL + "?" + params.Encode()
}

// Exchange swaps an authorization code for a token set.
func (f *OAuthFlow) Exchange(ctx context.Context, code string) (*entity.TokenSet, error) {
	data := url.Values{}
	data.Set("client_id", f.clientID)
	data.Set("client_secret", f.clientSecret)
	data.Set("scope", strings.Join(f.scopes, " "))
	data.Set("code", code)
	data.Set("redirect_uri", f.redirectURI)
	data.Set("grant_type", "authorization_code")

	return f.requestToken(ctx, data)
}

// Refresh mints a new token set from a refresh token.
func (f *OAuthFlow) Refresh(ctx context.Context, refreshToken string) (*entity.TokenSet, error) {
	data := url.Values{}
	data.Set("client_id", f.clientID)
	data.Set("client_secret", f.clientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")

	return f.requestToken(ctx, data)
}

// LogoutURL builds the identity provider's logout redirect URL.
func (f *OAuthFlow) LogoutURL() string {
	params := url.Values{}
	params.Set("post_logout_redirect_uri", f.postLogoutURI)

	return f.logoutURL + "?" + params.Encode()
}

// requestToken posts a form-encoded grant to the token endpoint and maps
// the outcome onto the tagged error taxonomy: unreachable endpoint,
// provider rejection, or a usable token set.
func (f *OAuthFlow) requestToken(ctx context.Context, data url.Values) (*entity.TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrTokenEndpointUnreachable.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, domainerrors.ErrTokenRejected.WrapMessage(
			"token request failed with status " + resp.Status + ": " + string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "failed to decode token response")
	}

	return &entity.TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    f.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
