package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/logging"
)

// Demo credentials created by Init and Seed.
const (
	DemoEmail       = "test@test.com"
	DemoPassword    = "test"
	DemoDisplayName = "Test User"
)

type seedCategory struct {
	Title       string
	Slug        string
	Description string
}

var initCategories = []seedCategory{
	{Title: "Technology", Slug: "technology", Description: "Technology related posts"},
	{Title: "Crypto", Slug: "crypto", Description: "Cryptocurrency and blockchain posts"},
}

var seedCategories = []seedCategory{
	{Title: "Technology", Slug: "technology", Description: "Content for Technology category"},
	{Title: "Design", Slug: "design", Description: "Content for Design category"},
	{Title: "Development", Slug: "development", Description: "Content for Development category"},
	{Title: "Marketing", Slug: "marketing", Description: "Content for Marketing category"},
}

// SeedStorage is the part of the store the seeder writes to.
type SeedStorage interface {
	core.UserStorage
	core.CategoryStorage
}

// Seeder bootstraps demo data. Every write is an upsert keyed on email or
// slug, so running it repeatedly or concurrently never duplicates records.
type Seeder struct {
	db     SeedStorage
	auth   *AuthService
	logger *zap.Logger
}

var _ core.SeedHandler = (*Seeder)(nil)

func NewSeeder(db SeedStorage, auth *AuthService, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		auth:   auth,
		logger: logging.OrNop(logger),
	}
}

// Init ensures the demo user and the two starter categories exist.
func (s *Seeder) Init(ctx context.Context) (*core.SeedResult, error) {
	result, err := s.run(ctx, initCategories)
	if err != nil {
		s.logger.Error("init failed", zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, "Failed to initialize")
	}

	if result.UserCreated {
		result.Message = "Test user and categories created successfully"
	} else {
		result.Message = "Test user already exists"
	}
	return result, nil
}

// Seed ensures the demo user and the sample categories exist.
func (s *Seeder) Seed(ctx context.Context) (*core.SeedResult, error) {
	result, err := s.run(ctx, seedCategories)
	if err != nil {
		s.logger.Error("seed failed", zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, "Failed to seed database")
	}

	result.Message = "Seed completed successfully"
	return result, nil
}

func (s *Seeder) run(ctx context.Context, categories []seedCategory) (*core.SeedResult, error) {
	owner, created, err := s.ensureDemoUser(ctx)
	if err != nil {
		return nil, err
	}

	result := &core.SeedResult{
		Email:       owner.Email,
		UserCreated: created,
		Categories:  make([]string, 0, len(categories)),
		Created:     []string{},
	}

	for _, sc := range categories {
		created, err := s.ensureCategory(ctx, owner, sc)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", sc.Slug, err)
		}
		result.Categories = append(result.Categories, sc.Title)
		if created {
			result.Created = append(result.Created, sc.Title)
		}
	}

	s.logger.Info("demo data ensured",
		zap.Bool("user_created", result.UserCreated),
		zap.Strings("categories_created", result.Created),
	)
	return result, nil
}

func (s *Seeder) ensureDemoUser(ctx context.Context) (*core.User, bool, error) {
	user, err := s.db.GetUserByEmail(ctx, DemoEmail)
	if err == nil {
		if _, err := s.auth.ensureCredential(ctx, user, DemoPassword); err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return nil, false, err
	}

	user, err = s.auth.createUser(ctx, core.SignUpInput{
		Email:       DemoEmail,
		Password:    DemoPassword,
		DisplayName: DemoDisplayName,
	})
	if errors.Is(err, core.ErrUserExists) {
		// lost a race with a concurrent seed
		user, err = s.db.GetUserByEmail(ctx, DemoEmail)
		return user, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *Seeder) ensureCategory(ctx context.Context, owner *core.User, sc seedCategory) (bool, error) {
	_, err := s.db.GetCategoryBySlug(ctx, sc.Slug)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrCategoryNotFound) {
		return false, err
	}

	content, err := paragraph(sc.Description)
	if err != nil {
		return false, err
	}

	err = s.db.CreateCategory(ctx, &core.Category{
		Title:   sc.Title,
		Slug:    sc.Slug,
		Content: content,
		Owner:   core.RefTo[core.User](owner.ID),
	})
	if errors.Is(err, core.ErrSlugExists) {
		return false, nil
	}
	return err == nil, err
}

// paragraph builds a rich text document holding a single paragraph.
func paragraph(text string) (core.RichText, error) {
	doc := map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{
					"type": "paragraph",
					"children": []any{
						map[string]any{"type": "text", "text": text, "format": 0},
					},
					"direction": "ltr",
					"format":    "",
					"indent":    0,
					"version":   1,
				},
			},
			"direction": "ltr",
			"format":    "",
			"indent":    0,
			"version":   1,
		},
	}
	return json.Marshal(doc)
}
