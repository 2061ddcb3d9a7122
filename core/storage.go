package core

import "context"

// Storage ports. Adapters translate driver failures into the sentinel
// errors of this package so callers never inspect driver types.

type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error

	// Query methods
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)

	// Delete methods
	DeleteSessionByHash(ctx context.Context, tokenHash string) error

	// Cleanup
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

type UserStorage interface {
	// CreateUser assigns ID and timestamps. Returns ErrUserExists when the
	// email is taken.
	CreateUser(ctx context.Context, u *User) error

	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error)
}

type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error

	GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*Account, error)
}

type CategoryStorage interface {
	// CreateCategory returns ErrSlugExists on slug collision and
	// ErrInvalidReference when the owner does not exist.
	CreateCategory(ctx context.Context, c *Category) error

	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) ([]*Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)

	// DeleteCategory also detaches the category from every post.
	DeleteCategory(ctx context.Context, id string) error
}

type PostStorage interface {
	// CreatePost returns ErrSlugExists on slug collision and
	// ErrInvalidReference when the owner or any category does not exist.
	CreatePost(ctx context.Context, p *Post) error

	GetPostByID(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*Post, int, error)
	DeletePost(ctx context.Context, id string) error
}

type AuthStorage interface {
	UserStorage
	AccountStorage
	SessionStorage

	// CreateUserWithAccount stores u and its account in one step: either
	// both exist afterwards or neither does. acc.UserID is set to the new
	// user id. Returns ErrUserExists when the email is taken.
	CreateUserWithAccount(ctx context.Context, u *User, acc *Account) error
}

type StorageAdapter interface {
	AuthStorage
	CategoryStorage
	PostStorage
}
