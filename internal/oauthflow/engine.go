// Package oauthflow drives the authorization-code grant for OAUTH2 auth
// schemes: it issues provider redirect URLs and redeems callback codes
// for tokens.
package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/connector-hub/connector-hub/internal/descriptor"
	"github.com/connector-hub/connector-hub/internal/metrics"
	"github.com/connector-hub/connector-hub/internal/secrets"
)

const stateTTL = 10 * time.Minute

var (
	// ErrStateUnknown is returned for a callback whose state nonce was
	// never issued or has expired.
	ErrStateUnknown = errors.New("unknown or expired state")
	// ErrNotOAuth2 is returned when the named scheme is not an OAUTH2
	// scheme.
	ErrNotOAuth2 = errors.New("auth scheme does not use OAUTH2")
)

// AuthRequest is a prepared provider redirect.
type AuthRequest struct {
	RedirectURL string
	State       string
}

type pendingAuth struct {
	connectorKey string
	schemeName   string
	tokenURL     string
	tokenParams  map[string]string
	creds        secrets.ClientCredentials
	expiresAt    time.Time
}

// Engine holds in-flight authorization state. Safe for concurrent use.
type Engine struct {
	secrets     secrets.Store
	redirectURL string
	httpClient  *http.Client // nil outside tests
	now         func() time.Time

	mu      sync.Mutex
	pending map[string]pendingAuth
}

func NewEngine(store secrets.Store, redirectURL string) *Engine {
	return &Engine{
		secrets:     store,
		redirectURL: strings.TrimSpace(redirectURL),
		now:         time.Now,
		pending:     make(map[string]pendingAuth),
	}
}

// BeginAuth builds the provider authorization URL for one connector
// scheme: endpoint placeholders resolved from field values, default
// scopes and authorizationParams applied, and a fresh state nonce
// recorded for the matching callback.
func (e *Engine) BeginAuth(ctx context.Context, d *descriptor.Descriptor, schemeName string, fieldValues map[string]string) (AuthRequest, error) {
	scheme, ok := d.Scheme(schemeName)
	if !ok {
		return AuthRequest{}, fmt.Errorf("connector %q has no scheme %q", d.UniqueKey, schemeName)
	}
	if scheme.AuthMode != descriptor.AuthModeOAuth2 {
		return AuthRequest{}, fmt.Errorf("%w: %s uses %s", ErrNotOAuth2, schemeName, scheme.AuthMode)
	}

	authorizeURL, err := descriptor.Resolve(scheme.AuthorizationURL, fieldValues)
	if err != nil {
		return AuthRequest{}, fmt.Errorf("resolve authorizationUrl for %s/%s: %w", d.UniqueKey, schemeName, err)
	}
	tokenURL, err := descriptor.Resolve(scheme.TokenURL, fieldValues)
	if err != nil {
		return AuthRequest{}, fmt.Errorf("resolve tokenUrl for %s/%s: %w", d.UniqueKey, schemeName, err)
	}

	creds, err := e.secrets.ClientCredentials(ctx, d.UniqueKey, schemeName)
	if err != nil {
		return AuthRequest{}, fmt.Errorf("client credentials for %s/%s: %w", d.UniqueKey, schemeName, err)
	}

	state := uuid.NewString()

	u, err := url.Parse(authorizeURL)
	if err != nil {
		return AuthRequest{}, fmt.Errorf("parse authorizationUrl: %w", err)
	}
	q := u.Query()
	q.Set("client_id", creds.ClientID)
	q.Set("redirect_uri", e.redirectURL)
	q.Set("state", state)
	if len(scheme.DefaultScopes) > 0 {
		q.Set("scope", strings.Join(scheme.DefaultScopes, " "))
	}
	// authorizationParams are merged verbatim; a descriptor may override
	// response_type or add provider-specific knobs.
	for k, v := range scheme.AuthorizationParams {
		q.Set(k, v)
	}
	if q.Get("response_type") == "" {
		q.Set("response_type", "code")
	}
	u.RawQuery = q.Encode()

	e.mu.Lock()
	e.prunePendingLocked()
	e.pending[state] = pendingAuth{
		connectorKey: d.UniqueKey,
		schemeName:   schemeName,
		tokenURL:     tokenURL,
		tokenParams:  scheme.TokenParams,
		creds:        creds,
		expiresAt:    e.now().Add(stateTTL),
	}
	e.mu.Unlock()

	metrics.AuthFlowsStartedTotal.WithLabelValues(d.UniqueKey, schemeName).Inc()
	return AuthRequest{RedirectURL: u.String(), State: state}, nil
}

// Exchange redeems a callback code against the pending state's token
// endpoint, merging the scheme's tokenParams into the request, and stores
// the result in the secret store.
func (e *Engine) Exchange(ctx context.Context, state, code string) (secrets.Token, error) {
	e.mu.Lock()
	pend, ok := e.pending[state]
	if ok {
		delete(e.pending, state)
	}
	e.mu.Unlock()
	if !ok || e.now().After(pend.expiresAt) {
		return secrets.Token{}, ErrStateUnknown
	}

	cfg := &oauth2.Config{
		ClientID:     pend.creds.ClientID,
		ClientSecret: pend.creds.ClientSecret,
		RedirectURL:  e.redirectURL,
		Endpoint: oauth2.Endpoint{
			TokenURL:  pend.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(pend.tokenParams))
	for k, v := range pend.tokenParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}

	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	tok, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		metrics.TokenExchangesTotal.WithLabelValues(pend.connectorKey, pend.schemeName, "error").Inc()
		return secrets.Token{}, fmt.Errorf("exchange code for %s/%s: %w", pend.connectorKey, pend.schemeName, err)
	}

	stored := secrets.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if err := e.secrets.PutToken(ctx, pend.connectorKey, pend.schemeName, stored); err != nil {
		metrics.TokenExchangesTotal.WithLabelValues(pend.connectorKey, pend.schemeName, "error").Inc()
		return secrets.Token{}, fmt.Errorf("store token for %s/%s: %w", pend.connectorKey, pend.schemeName, err)
	}

	metrics.TokenExchangesTotal.WithLabelValues(pend.connectorKey, pend.schemeName, "success").Inc()
	return stored, nil
}

func (e *Engine) prunePendingLocked() {
	now := e.now()
	for state, pend := range e.pending {
		if now.After(pend.expiresAt) {
			delete(e.pending, state)
		}
	}
}
