package entra

import (
	"context"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TimLeitch/ms-contact-sync/config"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	applicationScope    = "https://graph.microsoft.com/.default"
	assertionLifetime   = time.Hour
)

// AssertionClient exchanges a certificate-signed JWT assertion for an
// application token via the client-credentials grant. The key pair is
// loaded once at construction; every AccessToken call requests a fresh
// token from the provider.
type AssertionClient struct {
	clientID   string
	tokenURL   string
	privateKey *rsa.PrivateKey
	thumbprint string // base64url, unpadded SHA-1 of the certificate

	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewAssertionClient is the constructor for AssertionClient. Key or
// certificate problems surface here as ErrCredentialConfig so a
// misconfigured deployment fails at startup, not per request.
func NewAssertionClient(cfg *config.Config, logger *slog.Logger) (*AssertionClient, error) {
	entra := cfg.Entra

	keyPEM, err := os.ReadFile(entra.PrivateKeyPath)
	if err != nil {
		return nil, domainerrors.ErrCredentialConfig.WrapMessage("read private key: " + err.Error())
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, domainerrors.ErrCredentialConfig.WrapMessage("parse private key: " + err.Error())
	}

	certPEM, err := os.ReadFile(entra.CertificatePath)
	if err != nil {
		return nil, domainerrors.ErrCredentialConfig.WrapMessage("read certificate: " + err.Error())
	}
	thumbprint, err := certThumbprint(certPEM)
	if err != nil {
		return nil, err
	}

	return &AssertionClient{
		clientID:   entra.ClientID,
		tokenURL:   entra.TokenEndpoint(),
		privateKey: privateKey,
		thumbprint: thumbprint,
		httpClient: &http.Client{Timeout: cfg.Graph.Timeout},
		logger:     logger,
		now:        time.Now,
	}, nil
}

// certThumbprint computes the certificate's SHA-1 thumbprint encoded as
// unpadded base64url, the form the provider expects in the JWT x5t header
// to locate the matching public key.
func certThumbprint(certPEM []byte) (string, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return "", domainerrors.ErrCredentialConfig.WrapMessage("certificate is not valid PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", domainerrors.ErrCredentialConfig.WrapMessage("parse certificate: " + err.Error())
	}

	sum := sha1.Sum(cert.Raw)

	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// signAssertion builds and signs the client assertion JWT. The jti is a
// millisecond timestamp: unique enough for the provider's replay window,
// not collision-proof.
func (c *AssertionClient) signAssertion() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"aud": c.tokenURL,
		"iss": c.clientID,
		"sub": c.clientID,
		"jti": strconv.FormatInt(now.UnixMilli(), 10),
		"nbf": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5t"] = c.thumbprint

	signed, err := token.SignedString(c.privateKey)
	if err != nil {
		return "", domainerrors.ErrCredentialConfig.WrapMessage("sign assertion: " + err.Error())
	}

	return signed, nil
}

// AccessToken requests a fresh application token. Failures keep their
// cause: configuration, unreachable endpoint, and provider rejection are
// distinct errors rather than a swallowed nil.
func (c *AssertionClient) AccessToken(ctx context.Context) (string, error) {
	assertion, err := c.signAssertion()
	if err != nil {
		return "", err
	}

	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_assertion_type", clientAssertionType)
	data.Set("client_assertion", assertion)
	data.Set("scope", applicationScope)
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.ErrTokenEndpointUnreachable.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Application token request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))

		return "", domainerrors.ErrTokenRejected.WrapMessage("token request failed with status " + resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}

	return tr.AccessToken, nil
}
