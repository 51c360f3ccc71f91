// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/connector-hub/connector-hub/internal/config"
	"github.com/connector-hub/connector-hub/internal/connections"
	"github.com/connector-hub/connector-hub/internal/descriptor"
	"github.com/connector-hub/connector-hub/internal/oauthflow"
	"github.com/connector-hub/connector-hub/internal/registry"
	"github.com/connector-hub/connector-hub/internal/secrets"
)

// ConnectionStore is the connection persistence surface the handlers
// need; *connections.Store satisfies it.
type ConnectionStore interface {
	Get(ctx context.Context, connectorKey, schemeName string) (connections.Connection, error)
	SetField(ctx context.Context, connectorKey, schemeName, field, value string) error
	SetEnabled(ctx context.Context, connectorKey, schemeName string, enabled bool) error
}

// SecretReader is the token lookup surface used by the proxy handler.
type SecretReader interface {
	Token(ctx context.Context, connectorKey, schemeName string) (secrets.Token, error)
}

// AuthEngine drives the OAuth2 authorization-code flow.
type AuthEngine interface {
	BeginAuth(ctx context.Context, d *descriptor.Descriptor, schemeName string, fieldValues map[string]string) (oauthflow.AuthRequest, error)
	Exchange(ctx context.Context, state, code string) (secrets.Token, error)
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	Registry *registry.Registry
	Store    ConnectionStore
	Secrets  SecretReader
	Engine   AuthEngine
}

type errorResponse struct {
	Error string `json:"error"`
}

func jsonError(c *echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Error: msg})
}

// HandleHealthz reports process liveness and registry population.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"connectors": h.Registry.Len(),
	})
}
