package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/inkwell/core"
)

const userColumns = `id, email, display_name, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	u := &core.User{}
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	return a.insertUser(ctx, a.pool, user)
}

// CreateUserWithAccount inserts the user and its account in one
// transaction.
func (a *Adapter) CreateUserWithAccount(ctx context.Context, user *core.User, acc *core.Account) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := a.insertUser(ctx, tx, user); err != nil {
		return err
	}
	acc.UserID = user.ID
	if acc.AccountID == "" {
		acc.AccountID = user.ID
	}
	if err := a.insertAccount(ctx, tx, acc); err != nil {
		user.ID = ""
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		user.ID = ""
		return translateError(err, nil)
	}
	return nil
}

func (a *Adapter) insertUser(ctx context.Context, db rowQuerier, user *core.User) error {
	q := `INSERT INTO users (id, email, display_name) VALUES ($1, $2, $3) RETURNING created_at, updated_at`

	id := a.newID()
	err := db.QueryRow(ctx, q, id, user.Email, user.DisplayName).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translateError(err, nil)
	}

	user.ID = id
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, translateError(err, core.ErrUserNotFound)
	}
	return user, nil
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(a.pool.QueryRow(ctx, q, email))
	if err != nil {
		return nil, translateError(err, core.ErrUserNotFound)
	}
	return user, nil
}

func (a *Adapter) GetUsersByIDs(ctx context.Context, ids []string) ([]*core.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := a.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (a *Adapter) ListUsers(ctx context.Context, limit, offset int) ([]*core.User, int, error) {
	var total int
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := a.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func collectUsers(rows pgx.Rows) ([]*core.User, error) {
	defer rows.Close()

	var users []*core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
