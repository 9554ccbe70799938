// Package pgx stores graph documents in a PostgreSQL table.
package pgx

import (
	"context"
	"embed"

	"github.com/OFFIS-RIT/kgview/pkg/store"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrations embed.FS

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// GraphDBStorage implements store.GraphStorage on the graphs table. The
// connection is usually a *pgxpool.Pool.
type GraphDBStorage struct {
	conn pgxIConn
}

// NewGraphDBStorageWithConnection wraps an existing connection or pool.
// The schema must already exist, see Migrate.
func NewGraphDBStorageWithConnection(conn pgxIConn) *GraphDBStorage {
	return &GraphDBStorage{conn: conn}
}

// Migrate brings the schema at databaseURL up to date.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "open migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func (s *GraphDBStorage) List(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT name FROM graphs ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "query graphs")
	}
	names, err := pgxv5.CollectRows(rows, pgxv5.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "scan graphs")
	}
	return store.GraphNames(names), nil
}

func (s *GraphDBStorage) Get(ctx context.Context, name string) ([]byte, error) {
	base, err := store.BaseName(name)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.conn.QueryRow(ctx, `SELECT data FROM graphs WHERE name = $1`, base).Scan(&data)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, errors.Wrapf(store.ErrNotFound, "%s", base)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get graph %s", base)
	}
	return data, nil
}

// Put stores data as jsonb, so documents that are not valid JSON are rejected
// by the database.
func (s *GraphDBStorage) Put(ctx context.Context, name string, data []byte) error {
	base, err := store.BaseName(name)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO graphs (name, data) VALUES ($1, $2::jsonb)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		base, string(data),
	)
	return errors.Wrapf(err, "put graph %s", base)
}
