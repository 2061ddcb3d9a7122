package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// ACTION HANDLERS (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	SignUp(ctx context.Context, input SignUpInput) (*User, error)
	SignIn(ctx context.Context, input SignInInput, ipAddress, userAgent string) (*SignInResult, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*SessionData, error)
	CurrentUser(ctx context.Context, token string) *User
	ListUsers(ctx context.Context, token string, opts ListOptions) (*Page[User], error)
}

// ContentHandler provides the post and category actions. Writes take the
// caller's raw session token and resolve the actor themselves.
type ContentHandler interface {
	CreatePost(ctx context.Context, token string, input CreatePostInput) (*Post, error)
	GetPost(ctx context.Context, id string, depth *int) (*Post, error)
	ListPosts(ctx context.Context, opts ListOptions) (*Page[Post], error)
	DeletePost(ctx context.Context, token, id string) (*Post, error)

	CreateCategory(ctx context.Context, token string, input CreateCategoryInput) (*Category, error)
	GetCategory(ctx context.Context, id string, depth *int) (*Category, error)
	ListCategories(ctx context.Context, opts ListOptions) (*Page[Category], error)
	DeleteCategory(ctx context.Context, token, id string) (*Category, error)
}

// SeedHandler bootstraps demo data. Both operations are idempotent.
type SeedHandler interface {
	Init(ctx context.Context) (*SeedResult, error)
	Seed(ctx context.Context) (*SeedResult, error)
}

// ============================================
// HTTP PORT
// ============================================

// Handlers is everything an HTTP adapter needs to expose the API.
type Handlers struct {
	Auth      AuthHandler
	Content   ContentHandler
	Seeder    SeedHandler
	Endpoints []*Endpoint
	BasePath  string
	Cookie    CookieConfig
	Gate      *RouteGate
}

type HTTPAdapter interface {
	RegisterRoutes(h Handlers) error
}
