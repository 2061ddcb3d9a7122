package services

import (
	"context"

	"github.com/lborres/inkwell/core"
)

// Relation expansion. Depth 1 resolves a record's direct references; depth 2
// also resolves the owners of a post's categories. References whose target
// no longer exists are left as bare ids.

func (s *ContentService) expandPosts(ctx context.Context, posts []*core.Post, depth int) error {
	if depth < 1 || len(posts) == 0 {
		return nil
	}

	var categoryIDs []string
	for _, p := range posts {
		categoryIDs = append(categoryIDs, p.CategoryIDs()...)
	}
	categories, err := s.db.GetCategoriesByIDs(ctx, uniqueIDs(categoryIDs))
	if err != nil {
		return err
	}

	ownerIDs := make([]string, 0, len(posts)+len(categories))
	for _, p := range posts {
		ownerIDs = append(ownerIDs, p.Owner.ID)
	}
	if depth >= 2 {
		for _, c := range categories {
			ownerIDs = append(ownerIDs, c.Owner.ID)
		}
	}
	users, err := s.usersByID(ctx, ownerIDs)
	if err != nil {
		return err
	}

	byID := make(map[string]*core.Category, len(categories))
	for _, c := range categories {
		if depth >= 2 {
			resolveUser(&c.Owner, users)
		}
		byID[c.ID] = c
	}

	for _, p := range posts {
		resolveUser(&p.Owner, users)
		for i := range p.Categories {
			if c, ok := byID[p.Categories[i].ID]; ok {
				p.Categories[i].Doc = c
			}
		}
	}
	return nil
}

func (s *ContentService) expandCategories(ctx context.Context, categories []*core.Category, depth int) error {
	if depth < 1 || len(categories) == 0 {
		return nil
	}

	ownerIDs := make([]string, len(categories))
	for i, c := range categories {
		ownerIDs[i] = c.Owner.ID
	}
	users, err := s.usersByID(ctx, ownerIDs)
	if err != nil {
		return err
	}

	for _, c := range categories {
		resolveUser(&c.Owner, users)
	}
	return nil
}

func (s *ContentService) usersByID(ctx context.Context, ids []string) (map[string]*core.User, error) {
	users, err := s.db.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	m := make(map[string]*core.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m, nil
}

func resolveUser(ref *core.Ref[core.User], users map[string]*core.User) {
	if u, ok := users[ref.ID]; ok {
		ref.Doc = u
	}
}
