package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/inkwell/core"
)

const categoryColumns = `id, title, slug, content, owner_id, created_at, updated_at`

func scanCategory(row pgx.Row) (*core.Category, error) {
	c := &core.Category{}
	var content []byte
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &content, &c.Owner.ID, &c.CreatedAt, &c.UpdatedAt)
	c.Content = content
	return c, err
}

func (a *Adapter) CreateCategory(ctx context.Context, c *core.Category) error {
	q := `INSERT INTO categories (id, title, slug, content, owner_id)
	      VALUES ($1, $2, $3, $4, $5)
	      RETURNING created_at, updated_at`

	id := a.newID()
	err := a.pool.QueryRow(ctx, q, id, c.Title, c.Slug, jsonb(c.Content), c.Owner.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translateError(err, nil)
	}

	c.ID = id
	return nil
}

func (a *Adapter) GetCategoryByID(ctx context.Context, id string) (*core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, translateError(err, core.ErrCategoryNotFound)
	}
	return c, nil
}

func (a *Adapter) GetCategoryBySlug(ctx context.Context, slug string) (*core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`

	c, err := scanCategory(a.pool.QueryRow(ctx, q, slug))
	if err != nil {
		return nil, translateError(err, core.ErrCategoryNotFound)
	}
	return c, nil
}

func (a *Adapter) GetCategoriesByIDs(ctx context.Context, ids []string) ([]*core.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ANY($1)`

	rows, err := a.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

func (a *Adapter) ListCategories(ctx context.Context, limit, offset int) ([]*core.Category, int, error) {
	var total int
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := a.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	categories, err := collectCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// DeleteCategory relies on the post_categories cascade to detach the
// category from posts.
func (a *Adapter) DeleteCategory(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func collectCategories(rows pgx.Rows) ([]*core.Category, error) {
	defer rows.Close()

	var categories []*core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// jsonb returns nil for empty content so the column stores NULL.
func jsonb(content core.RichText) any {
	if len(content) == 0 {
		return nil
	}
	return []byte(content)
}
