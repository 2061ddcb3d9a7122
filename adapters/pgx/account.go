package pgx

import (
	"context"

	"github.com/lborres/inkwell/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	return a.insertAccount(ctx, a.pool, acc)
}

func (a *Adapter) insertAccount(ctx context.Context, db rowQuerier, acc *core.Account) error {
	query := `INSERT INTO accounts (id, user_id, provider_id, account_id, password)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`

	id := a.newID()
	err := db.QueryRow(ctx, query,
		id, acc.UserID, acc.ProviderID, acc.AccountID, acc.Password,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return translateError(err, nil)
	}

	acc.ID = id
	return nil
}

func (a *Adapter) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*core.Account, error) {
	query := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
	          FROM accounts WHERE user_id = $1 AND provider_id = $2`

	rows, err := a.pool.Query(ctx, query, userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc := &core.Account{}
		err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.ProviderID, &acc.AccountID, &acc.Password, &acc.CreatedAt, &acc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
