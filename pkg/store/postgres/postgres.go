// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package postgres implements the store on PostgreSQL via sqlx and the pgx
// stdlib driver. Schema migrations are embedded and applied with goose.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	stderrors "errors"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/util/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config holds the connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the settings as a libpq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Store is the PostgreSQL store backend.
type Store struct {
	db *sqlx.DB
	b  store.Broadcaster
}

var _ store.Store = (*Store)(nil)

// Open connects, applies pending migrations and returns the store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, errors.WrapStorage(err, "connect to postgres")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close() //nolint:errcheck
		return nil, errors.WrapStorage(err, "set goose dialect")
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close() //nolint:errcheck
		return nil, errors.WrapStorage(err, "apply migrations")
	}
	log.Infof("postgres store ready at %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, used by tests with sqlmock.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "pgx")}
}

// Close implements store.Store.
func (s *Store) Close() error { return s.db.Close() }

// RegisterReloadListener implements store.Store.
func (s *Store) RegisterReloadListener(name string, fn func()) {
	s.b.Register(name, fn)
}

// RunInTransaction implements store.Store.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	tx := &pgTx{q: sqlTx}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			log.Warnf("rollback failed: %v", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return mapError(err)
	}
	if tx.dirty {
		s.b.Fire()
	}
	return nil
}

// TryNamedLock implements store.Store with a session-scoped advisory lock.
// The lock lives on a dedicated connection so release is tied to it.
func (s *Store) TryNamedLock(ctx context.Context, name string) (func(), error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	var acquired bool
	if err := conn.GetContext(ctx, &acquired, "SELECT pg_try_advisory_lock($1)", lockKey(name)); err != nil {
		conn.Close() //nolint:errcheck
		return nil, mapError(err)
	}
	if !acquired {
		conn.Close() //nolint:errcheck
		return nil, errors.NewTemporaryf("lock %q is busy", name)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey(name)); err != nil {
			log.Warnf("unlock %q: %v", name, err)
		}
		conn.Close() //nolint:errcheck
	}, nil
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name)) //nolint:errcheck
	return int64(h.Sum64())
}

// mapError translates driver faults into the hub taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundf("no rows")
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		// 23505 unique_violation, 23503 foreign_key_violation
		if pgErr.Code == "23505" {
			return errors.NewConflictf("%s", pgErr.Detail)
		}
	}
	return errors.WrapStorage(err, "database")
}

// requireRow turns a zero-row update/delete into NotFound.
func requireRow(res sql.Result, err error, format string, args ...interface{}) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return errors.NewNotFoundf(format, args...)
	}
	return nil
}

func notFoundf(err error, format string, args ...interface{}) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundf(format, args...)
	}
	return mapError(err)
}
