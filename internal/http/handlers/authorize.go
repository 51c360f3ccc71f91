package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/connector-hub/connector-hub/internal/connections"
	"github.com/connector-hub/connector-hub/internal/oauthflow"
	"github.com/connector-hub/connector-hub/internal/secrets"
)

type authorizeResponse struct {
	RedirectURL string `json:"redirectUrl"`
	State       string `json:"state"`
}

// HandleAuthorize starts the authorization-code flow for an OAUTH2
// scheme and returns the provider redirect URL for the caller to open.
func (h *Handlers) HandleAuthorize(c *echo.Context) error {
	d, scheme, err := h.lookupScheme(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	conn, err := h.Store.Get(ctx, d.UniqueKey, scheme.SchemeName)
	if err != nil && !errors.Is(err, connections.ErrNotFound) {
		return jsonError(c, http.StatusInternalServerError, "load connection state")
	}
	status := connections.Resolve(scheme, conn)
	if !status.Configured {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":         "connection is not fully configured",
			"missingFields": status.MissingFields,
		})
	}

	req, err := h.Engine.BeginAuth(ctx, d, scheme.SchemeName, status.Values)
	if err != nil {
		switch {
		case errors.Is(err, oauthflow.ErrNotOAuth2):
			return jsonError(c, http.StatusBadRequest, "auth scheme does not use OAUTH2")
		case errors.Is(err, secrets.ErrNotFound):
			return jsonError(c, http.StatusConflict, "no client credentials stored for this scheme")
		default:
			return jsonError(c, http.StatusInternalServerError, "begin authorization")
		}
	}
	return c.JSON(http.StatusOK, authorizeResponse{RedirectURL: req.RedirectURL, State: req.State})
}

// HandleCallback redeems the provider callback for a token. The state
// nonce pins the callback to the connector and scheme that started the
// flow, so no path parameters are needed.
func (h *Handlers) HandleCallback(c *echo.Context) error {
	if msg := c.QueryParam("error"); msg != "" {
		if desc := c.QueryParam("error_description"); desc != "" {
			msg = msg + ": " + desc
		}
		return jsonError(c, http.StatusBadGateway, "provider denied authorization: "+msg)
	}

	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return jsonError(c, http.StatusBadRequest, "missing state or code")
	}

	if _, err := h.Engine.Exchange(c.Request().Context(), state, code); err != nil {
		if errors.Is(err, oauthflow.ErrStateUnknown) {
			return jsonError(c, http.StatusBadRequest, "unknown or expired state")
		}
		return jsonError(c, http.StatusBadGateway, "token exchange failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "authorized"})
}
