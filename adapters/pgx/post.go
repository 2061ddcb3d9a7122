package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/inkwell/core"
)

const postColumns = `id, title, slug, content, owner_id, created_at, updated_at`

func scanPost(row pgx.Row) (*core.Post, error) {
	p := &core.Post{}
	var content []byte
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &content, &p.Owner.ID, &p.CreatedAt, &p.UpdatedAt)
	p.Content = content
	return p, err
}

// CreatePost inserts the post and its category links in one transaction.
func (a *Adapter) CreatePost(ctx context.Context, p *core.Post) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := a.newID()
	q := `INSERT INTO posts (id, title, slug, content, owner_id)
	      VALUES ($1, $2, $3, $4, $5)
	      RETURNING created_at, updated_at`
	if err := tx.QueryRow(ctx, q, id, p.Title, p.Slug, jsonb(p.Content), p.Owner.ID).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return translateError(err, nil)
	}

	if len(p.Categories) > 0 {
		batch := &pgx.Batch{}
		for i, ref := range p.Categories {
			batch.Queue(`INSERT INTO post_categories (post_id, category_id, position) VALUES ($1, $2, $3)`, id, ref.ID, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return translateError(err, nil)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError(err, nil)
	}

	p.ID = id
	return nil
}

func (a *Adapter) GetPostByID(ctx context.Context, id string) (*core.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	p, err := scanPost(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, translateError(err, core.ErrPostNotFound)
	}
	if err := a.attachCategories(ctx, []*core.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *Adapter) ListPosts(ctx context.Context, limit, offset int) ([]*core.Post, int, error) {
	var total int
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := a.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*core.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := a.attachCategories(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// attachCategories loads the category ids of posts in link order.
func (a *Adapter) attachCategories(ctx context.Context, posts []*core.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*core.Post, len(posts))
	ids := make([]string, len(posts))
	for i, p := range posts {
		p.Categories = []core.Ref[core.Category]{}
		byID[p.ID] = p
		ids[i] = p.ID
	}

	rows, err := a.pool.Query(ctx,
		`SELECT post_id, category_id FROM post_categories WHERE post_id = ANY($1) ORDER BY post_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID, categoryID string
		if err := rows.Scan(&postID, &categoryID); err != nil {
			return err
		}
		p := byID[postID]
		p.Categories = append(p.Categories, core.RefTo[core.Category](categoryID))
	}
	return rows.Err()
}

func (a *Adapter) DeletePost(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrPostNotFound
	}
	return nil
}
