package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/connector-hub/connector-hub/internal/connections"
	"github.com/connector-hub/connector-hub/internal/descriptor"
)

type schemeSummary struct {
	SchemeName string              `json:"schemeName"`
	AuthMode   descriptor.AuthMode `json:"authMode"`
	Configured bool                `json:"configured"`
	Enabled    bool                `json:"enabled"`
	Activated  bool                `json:"activated"`
}

type connectorSummary struct {
	Name        string          `json:"name"`
	UniqueKey   string          `json:"uniqueKey"`
	Description string          `json:"description,omitempty"`
	DocsURL     string          `json:"docsUrl,omitempty"`
	LogoURL     string          `json:"logoUrl,omitempty"`
	Categories  []string        `json:"categories,omitempty"`
	Schemes     []schemeSummary `json:"schemes"`
}

// HandleListConnectors returns every loaded descriptor with its
// per-scheme onboarding status.
func (h *Handlers) HandleListConnectors(c *echo.Context) error {
	ctx := c.Request().Context()

	out := make([]connectorSummary, 0, h.Registry.Len())
	for _, d := range h.Registry.All() {
		summary := connectorSummary{
			Name:        d.Name,
			UniqueKey:   d.UniqueKey,
			Description: d.Description,
			DocsURL:     d.DocsURL,
			LogoURL:     d.LogoURL,
			Categories:  d.Categories,
		}
		for _, s := range d.AuthSchemes {
			conn, err := h.Store.Get(ctx, d.UniqueKey, s.SchemeName)
			if err != nil && !errors.Is(err, connections.ErrNotFound) {
				return jsonError(c, http.StatusInternalServerError, "load connection state")
			}
			status := connections.Resolve(s, conn)
			summary.Schemes = append(summary.Schemes, schemeSummary{
				SchemeName: s.SchemeName,
				AuthMode:   s.AuthMode,
				Configured: status.Configured,
				Enabled:    status.Enabled,
				Activated:  status.Activated(),
			})
		}
		out = append(out, summary)
	}
	return c.JSON(http.StatusOK, out)
}

// HandleGetConnector returns one descriptor by uniqueKey.
func (h *Handlers) HandleGetConnector(c *echo.Context) error {
	d, ok := h.Registry.Get(c.Param("key"))
	if !ok {
		return jsonError(c, http.StatusNotFound, "unknown connector")
	}
	return c.JSON(http.StatusOK, d)
}
