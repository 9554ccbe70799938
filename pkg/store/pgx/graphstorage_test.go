package pgx

import (
	"context"
	"os"
	"testing"

	"github.com/OFFIS-RIT/kgview/pkg/store"

	"github.com/cockroachdb/errors"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	return nil
}

type fakeConn struct {
	row      fakeRow
	lastSQL  string
	lastArgs []any
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.lastSQL = sql
	c.lastArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgxv5.Rows, error) {
	return nil, errors.New("not supported")
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) pgxv5.Row {
	c.lastSQL = sql
	c.lastArgs = args
	return c.row
}

func TestGet_NotFound(t *testing.T) {
	s := NewGraphDBStorageWithConnection(&fakeConn{row: fakeRow{err: pgxv5.ErrNoRows}})
	_, err := s.Get(context.Background(), "missing.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGet_UsesBaseName(t *testing.T) {
	conn := &fakeConn{row: fakeRow{data: []byte(`{"nodes":[]}`)}}
	s := NewGraphDBStorageWithConnection(conn)
	data, err := s.Get(context.Background(), "../../g.json")
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, string(data))
	assert.Equal(t, []any{"g.json"}, conn.lastArgs)
}

func TestPut_Upserts(t *testing.T) {
	conn := &fakeConn{}
	s := NewGraphDBStorageWithConnection(conn)
	require.NoError(t, s.Put(context.Background(), "dir/g.json", []byte(`{}`)))
	assert.Contains(t, conn.lastSQL, "ON CONFLICT (name)")
	assert.Equal(t, []any{"g.json", "{}"}, conn.lastArgs)

	assert.ErrorIs(t, s.Put(context.Background(), "..", nil), store.ErrInvalidName)
}

// TestRoundTrip runs against a real database when KGVIEW_TEST_DATABASE_URL is set.
func TestRoundTrip(t *testing.T) {
	url := os.Getenv("KGVIEW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KGVIEW_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, Migrate(url))
	require.NoError(t, Migrate(url), "migrating twice must be a no-op")

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	s := NewGraphDBStorageWithConnection(pool)
	require.NoError(t, s.Put(ctx, "roundtrip.json", []byte(`{"nodes":[],"links":[]}`)))
	require.NoError(t, s.Put(ctx, "roundtrip.json", []byte(`{"nodes":[{"id":"A","cat":"X"}],"links":[]}`)))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "roundtrip.json")

	data, err := s.Get(ctx, "roundtrip.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[{"id":"A","cat":"X"}],"links":[]}`, string(data))
}
