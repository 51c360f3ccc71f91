package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/connector-hub/connector-hub/internal/connections"
	"github.com/connector-hub/connector-hub/internal/descriptor"
)

type onboardingField struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"displayName,omitempty"`
	Description string               `json:"description,omitempty"`
	Type        descriptor.FieldType `json:"type"`
	Required    bool                 `json:"required"`
	Supplied    bool                 `json:"supplied"`
}

type onboardingForm struct {
	ConnectorKey  string            `json:"connectorKey"`
	SchemeName    string            `json:"schemeName"`
	Configured    bool              `json:"configured"`
	MissingFields []string          `json:"missingFields,omitempty"`
	Fields        []onboardingField `json:"fields"`
}

// HandleOnboardingFields renders the customer input form for one scheme:
// which fields to collect, and which are still blocking activation.
func (h *Handlers) HandleOnboardingFields(c *echo.Context) error {
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

	form := onboardingForm{
		ConnectorKey:  d.UniqueKey,
		SchemeName:    scheme.SchemeName,
		Configured:    status.Configured,
		MissingFields: status.MissingFields,
	}
	for _, f := range scheme.Fields {
		if !f.ExpectedFromCustomer {
			continue
		}
		form.Fields = append(form.Fields, onboardingField{
			Name:        f.Name,
			DisplayName: f.DisplayName,
			Description: f.Description,
			Type:        f.Type,
			Required:    f.Required,
			Supplied:    strings.TrimSpace(status.Values[f.Name]) != "",
		})
	}
	return c.JSON(http.StatusOK, form)
}

type setFieldRequest struct {
	Value string `json:"value"`
}

// HandleSetField records one customer-supplied field value.
func (h *Handlers) HandleSetField(c *echo.Context) error {
	d, scheme, err := h.lookupScheme(c)
	if err != nil {
		return err
	}

	fieldName := c.Param("field")
	field, ok := scheme.Field(fieldName)
	if !ok {
		return jsonError(c, http.StatusNotFound, "unknown field")
	}

	var req setFieldRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	value := strings.TrimSpace(req.Value)
	if field.Required && value == "" {
		return jsonError(c, http.StatusBadRequest, "value is required")
	}

	if err := h.Store.SetField(c.Request().Context(), d.UniqueKey, scheme.SchemeName, field.Name, value); err != nil {
		return jsonError(c, http.StatusInternalServerError, "persist field value")
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleEnable activates a connection. Activation is refused while a
// required customer field is unsupplied.
func (h *Handlers) HandleEnable(c *echo.Context) error {
	return h.setEnabled(c, true)
}

// HandleDisable deactivates a connection.
func (h *Handlers) HandleDisable(c *echo.Context) error {
	return h.setEnabled(c, false)
}

func (h *Handlers) setEnabled(c *echo.Context, enabled bool) error {
	d, scheme, err := h.lookupScheme(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if enabled {
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
	}

	if err := h.Store.SetEnabled(ctx, d.UniqueKey, scheme.SchemeName, enabled); err != nil {
		if errors.Is(err, connections.ErrNotFound) {
			return jsonError(c, http.StatusConflict, "connection has no stored configuration")
		}
		return jsonError(c, http.StatusInternalServerError, "persist enabled flag")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) lookupScheme(c *echo.Context) (*descriptor.Descriptor, descriptor.AuthScheme, error) {
	d, ok := h.Registry.Get(c.Param("key"))
	if !ok {
		return nil, descriptor.AuthScheme{}, jsonError(c, http.StatusNotFound, "unknown connector")
	}
	scheme, ok := d.Scheme(c.Param("scheme"))
	if !ok {
		return nil, descriptor.AuthScheme{}, jsonError(c, http.StatusNotFound, "unknown auth scheme")
	}
	return d, scheme, nil
}
