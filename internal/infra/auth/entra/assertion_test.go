package entra

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimLeitch/ms-contact-sync/config"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
)

// writeTestCredentials generates an RSA key pair with a self-signed
// certificate and writes both as PEM files under dir.
func writeTestCredentials(t *testing.T, dir string) (keyPath, certPath string, key *rsa.PrivateKey, certDER []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "contact-sync-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	certDER, err = x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyPath = filepath.Join(dir, "key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))

	certPath = filepath.Join(dir, "cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	require.NoError(t, os.WriteFile(certPath, certPEM, 0o600))

	return keyPath, certPath, key, certDER
}

func testAssertionConfig(authority, keyPath, certPath string) *config.Config {
	cfg := &config.Config{
		Entra: &config.EntraConfig{
			AuthMode:        config.AuthModeApplication,
			Authority:       authority,
			TenantID:        "test-tenant",
			ClientID:        "app-client-id",
			PrivateKeyPath:  keyPath,
			CertificatePath: certPath,
		},
		Graph: &config.GraphConfig{Timeout: 5 * time.Second},
	}

	return cfg
}

func TestAssertionClient_SignAssertion(t *testing.T) {
	keyPath, certPath, key, certDER := writeTestCredentials(t, t.TempDir())
	cfg := testAssertionConfig("https://login.example", keyPath, certPath)

	client, err := NewAssertionClient(cfg, testLogger())
	require.NoError(t, err)

	signed, err := client.signAssertion()
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		require.IsType(t, &jwt.SigningMethodRSA{}, token.Method)

		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	// x5t carries the certificate SHA-1 thumbprint, base64url without
	// padding, so the provider can locate the uploaded certificate.
	sum := sha1.Sum(certDER)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), parsed.Header["x5t"])

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "app-client-id", claims["iss"])
	assert.Equal(t, "app-client-id", claims["sub"])
	assert.Equal(t, "https://login.example/test-tenant/oauth2/v2.0/token", claims["aud"])
	assert.NotEmpty(t, claims["jti"])

	nbf, err := claims.GetNotBefore()
	require.NoError(t, err)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, exp.Sub(nbf.Time))
}

func TestAssertionClient_AccessToken(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath, key, _ := writeTestCredentials(t, dir)

	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"app-token","token_type":"Bearer","expires_in":3599}`))
	}))
	defer server.Close()

	client, err := NewAssertionClient(testAssertionConfig(server.URL, keyPath, certPath), testLogger())
	require.NoError(t, err)

	token, err := client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-token", token)

	assert.Equal(t, "client_credentials", gotForm.Get("grant_type"))
	assert.Equal(t, "urn:ietf:params:oauth:client-assertion-type:jwt-bearer", gotForm.Get("client_assertion_type"))
	assert.Equal(t, "https://graph.microsoft.com/.default", gotForm.Get("scope"))

	// The posted assertion must verify against the generated key.
	_, err = jwt.Parse(gotForm.Get("client_assertion"), func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
}

func TestAssertionClient_RejectedToken(t *testing.T) {
	keyPath, certPath, _, _ := writeTestCredentials(t, t.TempDir())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewAssertionClient(testAssertionConfig(server.URL, keyPath, certPath), testLogger())
	require.NoError(t, err)

	_, err = client.AccessToken(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrTokenRejected)
}

func TestNewAssertionClient_MissingKeyIsConfigError(t *testing.T) {
	_, certPath, _, _ := writeTestCredentials(t, t.TempDir())
	cfg := testAssertionConfig("https://login.example", "/nonexistent/key.pem", certPath)

	_, err := NewAssertionClient(cfg, testLogger())
	assert.ErrorIs(t, err, domainerrors.ErrCredentialConfig)
}
