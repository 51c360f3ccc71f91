package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultMetricsAddr      = "off"
	defaultOAuthRedirectURL = "http://localhost:8080/api/callback"
	defaultSecretsBackend   = SecretsBackendMemory
)

const (
	SecretsBackendMemory = "memory"
	SecretsBackendVault  = "vault"
)

type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	MetricsAddr      string
	DescriptorDir    string
	OAuthRedirectURL string

	SecretsBackend string

	VaultAddr             string
	VaultNamespace        string
	VaultAuthType         string
	VaultToken            string
	VaultAppRoleMountPath string
	VaultAppRoleRoleID    string
	VaultAppRoleSecretID  string
	VaultKVMount          string
	VaultTLSSkipVerify    bool
	VaultCACertPEM        string
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadOptionalDB() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: false})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:      getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		DescriptorDir:    strings.TrimSpace(os.Getenv("DESCRIPTOR_DIR")),
		OAuthRedirectURL: getenvDefault("OAUTH_REDIRECT_URL", defaultOAuthRedirectURL),

		SecretsBackend: strings.ToLower(strings.TrimSpace(getenvDefault("SECRETS_BACKEND", defaultSecretsBackend))),

		VaultAddr:             strings.TrimSpace(os.Getenv("VAULT_ADDR")),
		VaultNamespace:        strings.TrimSpace(os.Getenv("VAULT_NAMESPACE")),
		VaultAuthType:         strings.TrimSpace(os.Getenv("VAULT_AUTH_TYPE")),
		VaultToken:            strings.TrimSpace(os.Getenv("VAULT_TOKEN")),
		VaultAppRoleMountPath: strings.TrimSpace(os.Getenv("VAULT_APPROLE_MOUNT_PATH")),
		VaultAppRoleRoleID:    strings.TrimSpace(os.Getenv("VAULT_APPROLE_ROLE_ID")),
		VaultAppRoleSecretID:  strings.TrimSpace(os.Getenv("VAULT_APPROLE_SECRET_ID")),
		VaultKVMount:          strings.TrimSpace(os.Getenv("VAULT_KV_MOUNT")),
		VaultTLSSkipVerify:    getenvBoolDefault("VAULT_TLS_SKIP_VERIFY", false),
		VaultCACertPEM:        os.Getenv("VAULT_CA_CERT_PEM"),
	}

	switch cfg.SecretsBackend {
	case SecretsBackendMemory, SecretsBackendVault:
	default:
		return cfg, errors.New("SECRETS_BACKEND must be one of: memory, vault")
	}
	if cfg.SecretsBackend == SecretsBackendVault && cfg.VaultAddr == "" {
		return cfg, errors.New("VAULT_ADDR is required when SECRETS_BACKEND=vault")
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
