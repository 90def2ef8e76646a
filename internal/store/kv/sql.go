package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/dbx"
	"github.com/dmitrijs2005/sigmax/internal/filex"
	"github.com/dmitrijs2005/sigmax/internal/store/kv/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name   string
	Goose  string
	Dir    string
	get    string
	upsert string
	delete string
}

var (
	SQLite = Dialect{
		Name:   "sqlite",
		Goose:  "sqlite3",
		Dir:    "sqlite",
		get:    `SELECT value FROM kv WHERE key = ?`,
		upsert: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delete: `DELETE FROM kv WHERE key = ?`,
	}
	Postgres = Dialect{
		Name:   "pgx",
		Goose:  "pgx",
		Dir:    "postgres",
		get:    `SELECT value FROM kv WHERE key = $1`,
		upsert: `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delete: `DELETE FROM kv WHERE key = $1`,
	}
)

// SQL is a Backend on a single kv table of a relational database.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps an already migrated database.
func NewSQL(db *sql.DB, d Dialect) *SQL {
	return &SQL{db: db, dialect: d}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for d.
func RunMigrations(ctx context.Context, db *sql.DB, d Dialect) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(d.Goose); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, d.Dir); err != nil {
		return fmt.Errorf("migrate %s: %w", d.Dir, err)
	}
	return nil
}

// OpenSQLite opens a sqlite file and migrates it. SQLite allows a single
// writer, so the pool is limited to one connection.
func OpenSQLite(ctx context.Context, dsn string) (*SQL, error) {
	if path, ok := filex.SQLiteFile(dsn); ok {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return openSQL(ctx, dsn, SQLite, 1)
}

// OpenPostgres connects through the pgx stdlib driver and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	return openSQL(ctx, dsn, Postgres, 0)
}

func openSQL(ctx context.Context, dsn string, d Dialect, maxConns int) (*SQL, error) {
	db, err := sql.Open(d.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	if err := RunMigrations(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQL(db, d), nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return value, nil
}

func (s *SQL) Put(ctx context.Context, key string, value []byte) error {
	return s.put(ctx, s.db, key, value)
}

// PutMany writes all values in one transaction, in key order.
func (s *SQL) PutMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if err := s.put(ctx, tx, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQL) put(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if _, err := db.ExecContext(ctx, s.dialect.upsert, key, string(value)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.delete, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
