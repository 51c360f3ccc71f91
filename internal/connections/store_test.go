package connections

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type fakeDB struct {
	execTag pgconn.CommandTag
	execErr error
	row     fakeRow
	lastSQL string
	args    []any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.args = args
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("unexpected Query call")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.args = args
	return f.row
}

func TestGetReturnsNotFound(t *testing.T) {
	t.Parallel()

	db := &fakeDB{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}
	store := NewStore(db)

	_, err := store.Get(context.Background(), "salesforce", "salesforce_oauth2")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestGetDecodesFieldValues(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	db := &fakeDB{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "salesforce"
		*dest[1].(*string) = "salesforce_oauth2"
		*dest[2].(*[]byte) = []byte(`{"instanceUrl":"https://na1.salesforce.com"}`)
		*dest[3].(*bool) = true
		*dest[4].(*time.Time) = now
		*dest[5].(*time.Time) = now
		return nil
	}}}
	store := NewStore(db)

	conn, err := store.Get(context.Background(), "salesforce", "salesforce_oauth2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := conn.FieldValues["instanceUrl"]; got != "https://na1.salesforce.com" {
		t.Fatalf("FieldValues[instanceUrl] = %q", got)
	}
	if !conn.Enabled {
		t.Fatal("Enabled = false, want true")
	}
}

func TestSetFieldPropagatesExecError(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("db unavailable")
	store := NewStore(&fakeDB{execErr: dbErr})

	err := store.SetField(context.Background(), "salesforce", "salesforce_oauth2", "instanceUrl", "https://na1.salesforce.com")
	if !errors.Is(err, dbErr) {
		t.Fatalf("SetField() error = %v, want wrapped db error", err)
	}
}

func TestSetEnabledMissingRow(t *testing.T) {
	t.Parallel()

	store := NewStore(&fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")})

	err := store.SetEnabled(context.Background(), "salesforce", "salesforce_oauth2", true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetEnabled() error = %v, want ErrNotFound", err)
	}
}
