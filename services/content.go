package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/logging"
)

const (
	msgSlugExists        = "slug already exists"
	msgUnknownCategories = "one or more categories do not exist"
	msgPostNotFound      = "post not found"
	msgCategoryNotFound  = "category not found"
	msgCreatePostFailed  = "Failed to create post"
	msgCreateCatFailed   = "Failed to create category"
	msgLoadContentFailed = "Failed to load content"
	msgDeleteFailed      = "Failed to delete"
	msgLoginToCreatePost = "You must be logged in to create a post"
	msgLoginToCreateCat  = "You must be logged in to create a category"
	msgLoginToDeletePost = "You must be logged in to delete a post"
	msgLoginToDeleteCat  = "You must be logged in to delete a category"
)

// ContentStorage is the part of the store the content actions use.
type ContentStorage interface {
	core.UserStorage
	core.CategoryStorage
	core.PostStorage
}

// actorResolver resolves a raw session token to the signed-in user.
type actorResolver interface {
	CurrentUser(ctx context.Context, token string) *core.User
}

// ContentService implements the post and category actions. Writes resolve
// the actor from the session and force ownership to it.
type ContentService struct {
	db     ContentStorage
	auth   actorResolver
	logger *zap.Logger
}

var _ core.ContentHandler = (*ContentService)(nil)

func NewContentService(db ContentStorage, auth actorResolver, logger *zap.Logger) *ContentService {
	return &ContentService{
		db:     db,
		auth:   auth,
		logger: logging.OrNop(logger),
	}
}

// prepareSlug derives the slug from title when none is given and
// normalizes it.
func prepareSlug(slug, title string) string {
	if strings.TrimSpace(slug) == "" {
		slug = title
	}
	return core.NormalizeSlug(slug)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ============================================
// POSTS
// ============================================

func (s *ContentService) CreatePost(ctx context.Context, token string, input core.CreatePostInput) (*core.Post, error) {
	actor := s.auth.CurrentUser(ctx, token)
	if actor == nil {
		return nil, core.NewActionError(core.ErrUnauthenticated, msgLoginToCreatePost)
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Slug = prepareSlug(input.Slug, input.Title)
	if msg := validateStruct(input); msg != "" {
		return nil, core.NewActionError(core.ErrValidationFailed, msg)
	}

	post := &core.Post{
		Title:   input.Title,
		Slug:    input.Slug,
		Content: input.Content,
		Owner:   core.RefTo[core.User](actor.ID),
	}
	for _, id := range uniqueIDs(input.Categories) {
		post.Categories = append(post.Categories, core.RefTo[core.Category](id))
	}

	if err := s.db.CreatePost(ctx, post); err != nil {
		switch {
		case errors.Is(err, core.ErrSlugExists):
			return nil, core.NewActionError(core.ErrValidationFailed, msgSlugExists)
		case errors.Is(err, core.ErrInvalidReference):
			return nil, core.NewActionError(core.ErrValidationFailed, msgUnknownCategories)
		}
		s.logger.Error("create post failed", zap.String("user_id", actor.ID), zap.String("slug", post.Slug), zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, msgCreatePostFailed)
	}

	s.logger.Info("post created", zap.String("post_id", post.ID), zap.String("user_id", actor.ID))

	if err := s.expandPosts(ctx, []*core.Post{post}, core.DefaultDepth); err != nil {
		// the post exists; return it unexpanded
		s.logger.Warn("expand created post failed", zap.String("post_id", post.ID), zap.Error(err))
	}
	return post, nil
}

func (s *ContentService) GetPost(ctx context.Context, id string, depth *int) (*core.Post, error) {
	post, err := s.db.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return nil, core.NewActionError(core.ErrNotFound, msgPostNotFound)
		}
		return nil, s.loadFailed("get post", err)
	}

	if err := s.expandPosts(ctx, []*core.Post{post}, core.ClampDepth(depth)); err != nil {
		return nil, s.loadFailed("expand post", err)
	}
	return post, nil
}

func (s *ContentService) ListPosts(ctx context.Context, opts core.ListOptions) (*core.Page[core.Post], error) {
	opts = opts.Normalize()

	posts, total, err := s.db.ListPosts(ctx, opts.Limit, opts.Offset())
	if err != nil {
		return nil, s.loadFailed("list posts", err)
	}
	if err := s.expandPosts(ctx, posts, opts.ExpandDepth()); err != nil {
		return nil, s.loadFailed("expand posts", err)
	}

	docs := make([]core.Post, len(posts))
	for i, p := range posts {
		docs[i] = *p
	}
	return core.NewPage(docs, total, opts), nil
}

// DeletePost removes a post and returns it as it was. Any signed-in user
// may delete any post.
func (s *ContentService) DeletePost(ctx context.Context, token, id string) (*core.Post, error) {
	actor := s.auth.CurrentUser(ctx, token)
	if actor == nil {
		return nil, core.NewActionError(core.ErrUnauthenticated, msgLoginToDeletePost)
	}

	post, err := s.GetPost(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	if err := s.db.DeletePost(ctx, id); err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return nil, core.NewActionError(core.ErrNotFound, msgPostNotFound)
		}
		s.logger.Error("delete post failed", zap.String("post_id", id), zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, msgDeleteFailed)
	}

	s.logger.Info("post deleted", zap.String("post_id", id), zap.String("user_id", actor.ID))
	return post, nil
}

// ============================================
// CATEGORIES
// ============================================

func (s *ContentService) CreateCategory(ctx context.Context, token string, input core.CreateCategoryInput) (*core.Category, error) {
	actor := s.auth.CurrentUser(ctx, token)
	if actor == nil {
		return nil, core.NewActionError(core.ErrUnauthenticated, msgLoginToCreateCat)
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Slug = prepareSlug(input.Slug, input.Title)
	if msg := validateStruct(input); msg != "" {
		return nil, core.NewActionError(core.ErrValidationFailed, msg)
	}

	category := &core.Category{
		Title:   input.Title,
		Slug:    input.Slug,
		Content: input.Content,
		Owner:   core.RefTo[core.User](actor.ID),
	}

	if err := s.db.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, core.ErrSlugExists) {
			return nil, core.NewActionError(core.ErrValidationFailed, msgSlugExists)
		}
		s.logger.Error("create category failed", zap.String("user_id", actor.ID), zap.String("slug", category.Slug), zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, msgCreateCatFailed)
	}

	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("user_id", actor.ID))
	category.Owner.Doc = actor
	return category, nil
}

func (s *ContentService) GetCategory(ctx context.Context, id string, depth *int) (*core.Category, error) {
	category, err := s.db.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			return nil, core.NewActionError(core.ErrNotFound, msgCategoryNotFound)
		}
		return nil, s.loadFailed("get category", err)
	}

	if err := s.expandCategories(ctx, []*core.Category{category}, core.ClampDepth(depth)); err != nil {
		return nil, s.loadFailed("expand category", err)
	}
	return category, nil
}

func (s *ContentService) ListCategories(ctx context.Context, opts core.ListOptions) (*core.Page[core.Category], error) {
	opts = opts.Normalize()

	categories, total, err := s.db.ListCategories(ctx, opts.Limit, opts.Offset())
	if err != nil {
		return nil, s.loadFailed("list categories", err)
	}
	if err := s.expandCategories(ctx, categories, opts.ExpandDepth()); err != nil {
		return nil, s.loadFailed("expand categories", err)
	}

	docs := make([]core.Category, len(categories))
	for i, c := range categories {
		docs[i] = *c
	}
	return core.NewPage(docs, total, opts), nil
}

// DeleteCategory removes a category and detaches it from every post.
func (s *ContentService) DeleteCategory(ctx context.Context, token, id string) (*core.Category, error) {
	actor := s.auth.CurrentUser(ctx, token)
	if actor == nil {
		return nil, core.NewActionError(core.ErrUnauthenticated, msgLoginToDeleteCat)
	}

	category, err := s.GetCategory(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	if err := s.db.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			return nil, core.NewActionError(core.ErrNotFound, msgCategoryNotFound)
		}
		s.logger.Error("delete category failed", zap.String("category_id", id), zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, msgDeleteFailed)
	}

	s.logger.Info("category deleted", zap.String("category_id", id), zap.String("user_id", actor.ID))
	return category, nil
}

func (s *ContentService) loadFailed(op string, err error) error {
	s.logger.Error(op+" failed", zap.Error(err))
	return core.NewActionError(core.ErrStoreUnavailable, msgLoadContentFailed)
}
