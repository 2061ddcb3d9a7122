// Package pgx is the Postgres StorageAdapter, built on a pgxpool.
package pgx

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/inkwell/core"
)

//go:embed schema.sql
var schema string

type Adapter struct {
	pool  *pgxpool.Pool
	newID func() string
}

var _ core.StorageAdapter = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool:  pool,
		newID: uuid.NewString,
	}
}

// Connect opens a pool for uri and checks it is reachable.
func Connect(ctx context.Context, uri string) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return New(pool), nil
}

// Migrate applies the embedded schema.
func (a *Adapter) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (a *Adapter) Close() {
	a.pool.Close()
}

// Postgres error codes the adapter translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

var uniqueConstraints = map[string]error{
	"users_email_key":     core.ErrUserExists,
	"categories_slug_key": core.ErrSlugExists,
	"posts_slug_key":      core.ErrSlugExists,
}

// translateError maps driver errors onto core sentinels. notFound is
// returned for missing rows and may be nil for writes.
func translateError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if sentinel, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return sentinel
		}
	case codeForeignKeyViolation:
		return core.ErrInvalidReference
	case codeInvalidText:
		if notFound != nil {
			return notFound
		}
	}
	return err
}
