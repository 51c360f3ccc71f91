package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/connector-hub/connector-hub/internal/connections"
	"github.com/connector-hub/connector-hub/internal/descriptor"
	"github.com/connector-hub/connector-hub/internal/proxy"
	"github.com/connector-hub/connector-hub/internal/secrets"
)

// HandleProxy forwards an API request to the connector's upstream, using
// the first activated scheme's resolved proxy.baseUrl and stored token.
// The /proxy/:key prefix is stripped before forwarding.
func (h *Handlers) HandleProxy(c *echo.Context) error {
	d, ok := h.Registry.Get(c.Param("key"))
	if !ok {
		return jsonError(c, http.StatusNotFound, "unknown connector")
	}
	ctx := c.Request().Context()

	scheme, status, err := h.activatedScheme(c, d)
	if err != nil {
		return err
	}

	base, err := proxy.ResolveBaseURL(scheme, status.Values)
	if err != nil {
		return jsonError(c, http.StatusBadGateway, "resolve upstream base URL")
	}

	var bearer string
	tok, err := h.Secrets.Token(ctx, d.UniqueKey, scheme.SchemeName)
	switch {
	case err == nil:
		bearer = tok.AccessToken
	case errors.Is(err, secrets.ErrNotFound):
		if scheme.AuthMode == descriptor.AuthModeOAuth2 {
			return jsonError(c, http.StatusConflict, "connection has no stored token; complete authorization first")
		}
	default:
		return jsonError(c, http.StatusInternalServerError, "load stored token")
	}

	req := c.Request()
	req.URL.Path = upstreamPath(req.URL.Path, d.UniqueKey)
	req.URL.RawPath = ""

	done := proxy.Observe(d.UniqueKey)
	defer done()
	proxy.New(d.UniqueKey, base, bearer).ServeHTTP(c.Response(), req)
	return nil
}

func (h *Handlers) activatedScheme(c *echo.Context, d *descriptor.Descriptor) (descriptor.AuthScheme, connections.Status, error) {
	ctx := c.Request().Context()
	for _, s := range d.AuthSchemes {
		conn, err := h.Store.Get(ctx, d.UniqueKey, s.SchemeName)
		if err != nil {
			if errors.Is(err, connections.ErrNotFound) {
				continue
			}
			return descriptor.AuthScheme{}, connections.Status{}, jsonError(c, http.StatusInternalServerError, "load connection state")
		}
		status := connections.Resolve(s, conn)
		if status.Activated() {
			return s, status, nil
		}
	}
	return descriptor.AuthScheme{}, connections.Status{}, jsonError(c, http.StatusConflict, "connector has no activated connection")
}

func upstreamPath(inbound, connectorKey string) string {
	rest := strings.TrimPrefix(inbound, "/proxy/"+connectorKey)
	if rest == "" || !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return rest
}
