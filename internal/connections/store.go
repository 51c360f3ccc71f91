package connections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no connection row exists for a
// connector/scheme pair.
var ErrNotFound = errors.New("connection not found")

// DBTX is the subset of pgxpool.Pool the store needs; tests substitute a
// fake.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists connections in Postgres.
type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

const getConnectionSQL = `
SELECT connector_key, scheme_name, field_values, enabled, created_at, updated_at
FROM connections
WHERE connector_key = $1 AND scheme_name = $2`

// Get returns the stored connection for a connector/scheme pair.
func (s *Store) Get(ctx context.Context, connectorKey, schemeName string) (Connection, error) {
	row := s.db.QueryRow(ctx, getConnectionSQL, connectorKey, schemeName)

	var (
		conn      Connection
		rawValues []byte
	)
	err := row.Scan(&conn.ConnectorKey, &conn.SchemeName, &rawValues, &conn.Enabled, &conn.CreatedAt, &conn.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Connection{}, ErrNotFound
	}
	if err != nil {
		return Connection{}, fmt.Errorf("get connection %s/%s: %w", connectorKey, schemeName, err)
	}
	if len(rawValues) > 0 {
		if err := json.Unmarshal(rawValues, &conn.FieldValues); err != nil {
			return Connection{}, fmt.Errorf("decode field values for %s/%s: %w", connectorKey, schemeName, err)
		}
	}
	return conn, nil
}

const listConnectionsSQL = `
SELECT connector_key, scheme_name, field_values, enabled, created_at, updated_at
FROM connections
ORDER BY connector_key, scheme_name`

// List returns all stored connections.
func (s *Store) List(ctx context.Context) ([]Connection, error) {
	rows, err := s.db.Query(ctx, listConnectionsSQL)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var out []Connection
	for rows.Next() {
		var (
			conn      Connection
			rawValues []byte
		)
		if err := rows.Scan(&conn.ConnectorKey, &conn.SchemeName, &rawValues, &conn.Enabled, &conn.CreatedAt, &conn.UpdatedAt); err != nil {
			return nil, err
		}
		if len(rawValues) > 0 {
			if err := json.Unmarshal(rawValues, &conn.FieldValues); err != nil {
				return nil, fmt.Errorf("decode field values for %s/%s: %w", conn.ConnectorKey, conn.SchemeName, err)
			}
		}
		out = append(out, conn)
	}
	return out, rows.Err()
}

const upsertFieldSQL = `
INSERT INTO connections (connector_key, scheme_name, field_values, enabled, created_at, updated_at)
VALUES ($1, $2, jsonb_build_object($3::text, $4::text), FALSE, $5, $5)
ON CONFLICT (connector_key, scheme_name)
DO UPDATE SET field_values = connections.field_values || jsonb_build_object($3::text, $4::text), updated_at = $5`

// SetField records one customer-supplied field value, creating the
// connection row on first write.
func (s *Store) SetField(ctx context.Context, connectorKey, schemeName, field, value string) error {
	now := time.Now().UTC()
	if _, err := s.db.Exec(ctx, upsertFieldSQL, connectorKey, schemeName, field, value, now); err != nil {
		return fmt.Errorf("set field %s on %s/%s: %w", field, connectorKey, schemeName, err)
	}
	return nil
}

const setEnabledSQL = `
UPDATE connections SET enabled = $3, updated_at = $4
WHERE connector_key = $1 AND scheme_name = $2`

// SetEnabled flips the enabled flag. The caller is responsible for
// checking Status.Configured first; an unconfigured connection must not
// be enabled.
func (s *Store) SetEnabled(ctx context.Context, connectorKey, schemeName string, enabled bool) error {
	tag, err := s.db.Exec(ctx, setEnabledSQL, connectorKey, schemeName, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set enabled on %s/%s: %w", connectorKey, schemeName, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
