// Package config loads the application configuration once at startup. The
// resulting struct is injected into every component that needs it; nothing
// reads the process environment after this point.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	// AuthModeDelegated selects the authorization-code flow acting on
	// behalf of a signed-in user.
	AuthModeDelegated = "delegated"
	// AuthModeApplication selects the client-credentials flow using a
	// certificate-signed JWT assertion.
	AuthModeApplication = "application"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int    `json:"port" yaml:"port"`
		BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	SQLite *SQLiteConfig `json:"sqlite" yaml:"sqlite"`

	Session *SessionConfig `json:"session" yaml:"session"`

	Entra *EntraConfig `json:"entra" yaml:"entra"`

	Graph *GraphConfig `json:"graph" yaml:"graph"`
}

// Log configures the slog handler.
type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// SQLiteConfig locates the local contacts database.
type SQLiteConfig struct {
	Path string `json:"path" yaml:"path"`
}

// SessionConfig configures the server-side session store.
type SessionConfig struct {
	SecretKey  string        `json:"secretKey" yaml:"secretKey"`
	CookieName string        `json:"cookieName" yaml:"cookieName"`
	TTL        time.Duration `json:"ttl" yaml:"ttl"`
}

// EntraConfig holds the identity-provider settings. AuthMode picks exactly
// one credential strategy per deployment; the two are never mixed at runtime.
type EntraConfig struct {
	AuthMode        string   `json:"authMode" yaml:"authMode"`
	Authority       string   `json:"authority" yaml:"authority"`
	TenantID        string   `json:"tenantId" yaml:"tenantId"`
	ClientID        string   `json:"clientId" yaml:"clientId"`
	ClientSecret    string   `json:"clientSecret" yaml:"clientSecret"`
	RedirectURI     string   `json:"redirectUri" yaml:"redirectUri"`
	Scopes          []string `json:"scopes" yaml:"scopes"`
	PrivateKeyPath  string   `json:"privateKeyPath" yaml:"privateKeyPath"`
	CertificatePath string   `json:"certificatePath" yaml:"certificatePath"`
}

// TokenEndpoint returns the tenant token endpoint URL.
func (c *EntraConfig) TokenEndpoint() string {
	return c.Authority + "/" + c.TenantID + "/oauth2/v2.0/token"
}

// AuthorizeEndpoint returns the tenant authorize endpoint URL.
func (c *EntraConfig) AuthorizeEndpoint() string {
	return c.Authority + "/" + c.TenantID + "/oauth2/v2.0/authorize"
}

// LogoutEndpoint returns the tenant logout endpoint URL.
func (c *EntraConfig) LogoutEndpoint() string {
	return c.Authority + "/" + c.TenantID + "/oauth2/v2.0/logout"
}

// GraphConfig holds the Graph API client settings.
type GraphConfig struct {
	BaseURL   string        `json:"baseUrl" yaml:"baseUrl"`
	PageSize  int           `json:"pageSize" yaml:"pageSize"`
	BatchSize int           `json:"batchSize" yaml:"batchSize"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: ENTRA_CLIENTID -> entra.clientId (not entra.clientid)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.SQLite == nil {
		cfg.SQLite = &SQLiteConfig{Path: "contacts.db"}
	}
	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "csync_session"
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = time.Hour
	}
	if cfg.Graph == nil {
		cfg.Graph = &GraphConfig{}
	}
	if cfg.Graph.BaseURL == "" {
		cfg.Graph.BaseURL = "https://graph.microsoft.com/v1.0"
	}
	if cfg.Graph.PageSize <= 0 {
		cfg.Graph.PageSize = 999
	}
	if cfg.Graph.BatchSize <= 0 {
		cfg.Graph.BatchSize = 20
	}
	if cfg.Graph.Timeout <= 0 {
		cfg.Graph.Timeout = 30 * time.Second
	}
	if cfg.Entra != nil && cfg.Entra.Authority == "" {
		cfg.Entra.Authority = "https://login.microsoftonline.com"
	}
}

func validate(cfg *Config) error {
	if cfg.Session.SecretKey == "" {
		return errors.New("session.secretKey is required")
	}

	if cfg.Entra == nil {
		return errors.New("entra configuration is required")
	}

	switch cfg.Entra.AuthMode {
	case AuthModeDelegated:
		if cfg.Entra.ClientID == "" || cfg.Entra.ClientSecret == "" {
			return errors.New("entra.clientId and entra.clientSecret are required for delegated auth")
		}
	case AuthModeApplication:
		if cfg.Entra.ClientID == "" || cfg.Entra.TenantID == "" {
			return errors.New("entra.clientId and entra.tenantId are required for application auth")
		}
		if cfg.Entra.PrivateKeyPath == "" || cfg.Entra.CertificatePath == "" {
			return errors.New("entra.privateKeyPath and entra.certificatePath are required for application auth")
		}
	default:
		return errors.Errorf("invalid entra.authMode: %q (must be %q or %q)",
			cfg.Entra.AuthMode, AuthModeDelegated, AuthModeApplication)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
