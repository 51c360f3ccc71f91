// Package secrets stores OAuth client credentials and exchanged tokens
// outside the descriptor set, keyed by connector and scheme.
package secrets

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no secret exists under a key.
var ErrNotFound = errors.New("secret not found")

// ClientCredentials are the hub operator's OAuth app credentials for one
// auth scheme.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Token is an exchanged OAuth2 token as returned by the provider.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Store is the credential/token store contract. Implementations must be
// safe for concurrent use.
type Store interface {
	ClientCredentials(ctx context.Context, connectorKey, schemeName string) (ClientCredentials, error)
	PutClientCredentials(ctx context.Context, connectorKey, schemeName string, creds ClientCredentials) error
	Token(ctx context.Context, connectorKey, schemeName string) (Token, error)
	PutToken(ctx context.Context, connectorKey, schemeName string, tok Token) error
}
