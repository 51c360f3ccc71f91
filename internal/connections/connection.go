// Package connections stores per-connector customer configuration: the
// field values collected during onboarding and the enabled flag.
package connections

import (
	"strings"
	"time"

	"github.com/connector-hub/connector-hub/internal/descriptor"
)

// Connection is one customer's configuration of one auth scheme.
type Connection struct {
	ConnectorKey string
	SchemeName   string
	FieldValues  map[string]string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Normalized returns a copy with trimmed keys and values.
func (c Connection) Normalized() Connection {
	out := c
	out.ConnectorKey = strings.TrimSpace(out.ConnectorKey)
	out.SchemeName = strings.TrimSpace(out.SchemeName)
	if len(c.FieldValues) > 0 {
		out.FieldValues = make(map[string]string, len(c.FieldValues))
		for k, v := range c.FieldValues {
			out.FieldValues[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

// Status describes how far a connection is through onboarding.
type Status struct {
	Configured    bool
	Enabled       bool
	MissingFields []string
	// Values holds the effective field values: supplied values merged
	// over descriptor defaults.
	Values map[string]string
}

// Activated reports whether the connection may serve traffic.
func (s Status) Activated() bool {
	return s.Configured && s.Enabled
}

// Resolve computes the connection's status against its auth scheme.
// Every required field must hold a value (supplied or defaulted) before
// the connection counts as configured; onboarding cannot complete while
// MissingFields is non-empty.
func Resolve(scheme descriptor.AuthScheme, conn Connection) Status {
	conn = conn.Normalized()

	values := make(map[string]string, len(scheme.Fields))
	for _, f := range scheme.Fields {
		if f.Default != "" {
			values[f.Name] = f.Default
		}
	}
	for k, v := range conn.FieldValues {
		if v != "" {
			values[k] = v
		}
	}

	var missing []string
	for _, f := range scheme.RequiredFields() {
		if strings.TrimSpace(values[f.Name]) == "" {
			missing = append(missing, f.Name)
		}
	}

	return Status{
		Configured:    len(missing) == 0,
		Enabled:       conn.Enabled,
		MissingFields: missing,
		Values:        values,
	}
}
