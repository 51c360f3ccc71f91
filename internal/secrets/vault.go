package secrets

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

const (
	vaultAuthTypeToken   = "token"
	vaultAuthTypeAppRole = "approle"

	defaultKVMount = "secret"
)

// VaultOptions configures the Vault-backed store.
type VaultOptions struct {
	Address          string
	Namespace        string
	AuthType         string // "token" or "approle"
	Token            string
	AppRoleMountPath string
	AppRoleRoleID    string
	AppRoleSecretID  string
	KVMount          string // KV v2 mount, default "secret"
	TLSSkipVerify    bool
	TLSCACertPEM     string
}

// VaultStore keeps connector secrets in a Vault KV v2 mount under
// connectors/<connectorKey>/<schemeName>/{credentials,token}.
type VaultStore struct {
	client  *vaultapi.Client
	kvMount string
}

func NewVaultStore(opts VaultOptions) (*VaultStore, error) {
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return nil, errors.New("vault address is required")
	}
	authType := strings.ToLower(strings.TrimSpace(opts.AuthType))
	if authType == "" {
		authType = vaultAuthTypeToken
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address
	cfg.HttpClient = &http.Client{
		Timeout:   60 * time.Second,
		Transport: buildHTTPTransport(opts.TLSSkipVerify, strings.TrimSpace(opts.TLSCACertPEM)),
	}

	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client setup: %w", err)
	}
	if ns := strings.TrimSpace(opts.Namespace); ns != "" {
		client.SetNamespace(ns)
	}

	switch authType {
	case vaultAuthTypeToken:
		token := strings.TrimSpace(opts.Token)
		if token == "" {
			return nil, errors.New("vault token is required")
		}
		client.SetToken(token)
	case vaultAuthTypeAppRole:
		roleID := strings.TrimSpace(opts.AppRoleRoleID)
		secretID := strings.TrimSpace(opts.AppRoleSecretID)
		if roleID == "" {
			return nil, errors.New("vault AppRole role ID is required")
		}
		if secretID == "" {
			return nil, errors.New("vault AppRole secret ID is required")
		}
		mountPath := strings.Trim(strings.TrimSpace(opts.AppRoleMountPath), "/")
		if mountPath == "" {
			mountPath = "approle"
		}
		loginPath := "auth/" + mountPath + "/login"
		secret, err := client.Logical().Write(loginPath, map[string]any{
			"role_id":   roleID,
			"secret_id": secretID,
		})
		if err != nil {
			return nil, fmt.Errorf("vault approle login at %s: %w", loginPath, err)
		}
		if secret == nil || secret.Auth == nil || strings.TrimSpace(secret.Auth.ClientToken) == "" {
			return nil, errors.New("vault approle login succeeded without client token")
		}
		client.SetToken(secret.Auth.ClientToken)
	default:
		return nil, fmt.Errorf("vault auth type %q is invalid", authType)
	}

	kvMount := strings.Trim(strings.TrimSpace(opts.KVMount), "/")
	if kvMount == "" {
		kvMount = defaultKVMount
	}

	return &VaultStore{client: client, kvMount: kvMount}, nil
}

func (s *VaultStore) ClientCredentials(ctx context.Context, connectorKey, schemeName string) (ClientCredentials, error) {
	var creds ClientCredentials
	if err := s.get(ctx, secretPath(connectorKey, schemeName, "credentials"), &creds); err != nil {
		return ClientCredentials{}, err
	}
	return creds, nil
}

func (s *VaultStore) PutClientCredentials(ctx context.Context, connectorKey, schemeName string, creds ClientCredentials) error {
	return s.put(ctx, secretPath(connectorKey, schemeName, "credentials"), creds)
}

func (s *VaultStore) Token(ctx context.Context, connectorKey, schemeName string) (Token, error) {
	var tok Token
	if err := s.get(ctx, secretPath(connectorKey, schemeName, "token"), &tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (s *VaultStore) PutToken(ctx context.Context, connectorKey, schemeName string, tok Token) error {
	return s.put(ctx, secretPath(connectorKey, schemeName, "token"), tok)
}

func secretPath(connectorKey, schemeName, leaf string) string {
	return "connectors/" + strings.TrimSpace(connectorKey) + "/" + strings.TrimSpace(schemeName) + "/" + leaf
}

func (s *VaultStore) get(ctx context.Context, path string, out any) error {
	secret, err := s.client.KVv2(s.kvMount).Get(ctx, path)
	if err != nil {
		if errors.Is(err, vaultapi.ErrSecretNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("vault read %s: %w", path, err)
	}
	raw, err := json.Marshal(secret.Data)
	if err != nil {
		return fmt.Errorf("vault decode %s: %w", path, err)
	}
	return json.Unmarshal(raw, out)
}

func (s *VaultStore) put(ctx context.Context, path string, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("vault encode %s: %w", path, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("vault encode %s: %w", path, err)
	}
	if _, err := s.client.KVv2(s.kvMount).Put(ctx, path, data); err != nil {
		return fmt.Errorf("vault write %s: %w", path, err)
	}
	return nil
}

func buildHTTPTransport(skipVerify bool, caCertPEM string) http.RoundTripper {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if skipVerify {
		tlsConfig.InsecureSkipVerify = true
	}
	if caCertPEM != "" {
		pool := x509.NewCertPool()
		if pool.AppendCertsFromPEM([]byte(caCertPEM)) {
			tlsConfig.RootCAs = pool
		}
	}
	transport.TLSClientConfig = tlsConfig
	return transport
}
