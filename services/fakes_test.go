package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lborres/inkwell/adapters/memory"
	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/cache"
	"github.com/lborres/inkwell/pkg/crypto"
)

// faultyStore wraps the in-memory adapter and fails the named methods with
// the configured error.
type faultyStore struct {
	*memory.Adapter

	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		Adapter: memory.New(),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *faultyStore) failWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *faultyStore) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *faultyStore) check(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.fail[method]
}

func (f *faultyStore) CreateUser(ctx context.Context, u *core.User) error {
	if err := f.check("CreateUser"); err != nil {
		return err
	}
	return f.Adapter.CreateUser(ctx, u)
}

// CreateUserWithAccount fails as a whole, the way the real adapters roll
// back when either insert fails.
func (f *faultyStore) CreateUserWithAccount(ctx context.Context, u *core.User, acc *core.Account) error {
	if err := f.check("CreateUserWithAccount"); err != nil {
		return err
	}
	return f.Adapter.CreateUserWithAccount(ctx, u, acc)
}

func (f *faultyStore) CreateAccount(ctx context.Context, acc *core.Account) error {
	if err := f.check("CreateAccount"); err != nil {
		return err
	}
	return f.Adapter.CreateAccount(ctx, acc)
}

func (f *faultyStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	if err := f.check("GetUserByEmail"); err != nil {
		return nil, err
	}
	return f.Adapter.GetUserByEmail(ctx, email)
}

func (f *faultyStore) GetUsersByIDs(ctx context.Context, ids []string) ([]*core.User, error) {
	if err := f.check("GetUsersByIDs"); err != nil {
		return nil, err
	}
	return f.Adapter.GetUsersByIDs(ctx, ids)
}

func (f *faultyStore) CreateSession(ctx context.Context, s *core.Session) error {
	if err := f.check("CreateSession"); err != nil {
		return err
	}
	return f.Adapter.CreateSession(ctx, s)
}

func (f *faultyStore) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	if err := f.check("GetSessionByHash"); err != nil {
		return nil, err
	}
	return f.Adapter.GetSessionByHash(ctx, tokenHash)
}

func (f *faultyStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	if err := f.check("DeleteExpiredSessions"); err != nil {
		return 0, err
	}
	return f.Adapter.DeleteExpiredSessions(ctx)
}

func (f *faultyStore) CreateCategory(ctx context.Context, c *core.Category) error {
	if err := f.check("CreateCategory"); err != nil {
		return err
	}
	return f.Adapter.CreateCategory(ctx, c)
}

func (f *faultyStore) GetCategoryBySlug(ctx context.Context, slug string) (*core.Category, error) {
	if err := f.check("GetCategoryBySlug"); err != nil {
		return nil, err
	}
	return f.Adapter.GetCategoryBySlug(ctx, slug)
}

func (f *faultyStore) CreatePost(ctx context.Context, p *core.Post) error {
	if err := f.check("CreatePost"); err != nil {
		return err
	}
	return f.Adapter.CreatePost(ctx, p)
}

func (f *faultyStore) ListPosts(ctx context.Context, limit, offset int) ([]*core.Post, int, error) {
	if err := f.check("ListPosts"); err != nil {
		return nil, 0, err
	}
	return f.Adapter.ListPosts(ctx, limit, offset)
}

// testArgon2 keeps password hashing cheap in tests.
func testArgon2() *crypto.Argon2 {
	return &crypto.Argon2{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	store    *faultyStore
	cache    *cache.InMemoryCache
	sessions *SessionManager
	auth     *AuthService
	content  *ContentService
	seeder   *Seeder
	logs     *observer.ObservedLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(obsCore)

	store := newFaultyStore()
	c := cache.NewInMemoryCache(coreCacheConfig())
	sessions := NewSessionManager(sessionConfig(), store, c, crypto.NewTokenHasher(testSecret), logger)
	auth := NewAuthService(store, testArgon2(), sessions, logger)

	return &testEnv{
		store:    store,
		cache:    c,
		sessions: sessions,
		auth:     auth,
		content:  NewContentService(store, auth, logger),
		seeder:   NewSeeder(store, auth, logger),
		logs:     logs,
	}
}

func coreCacheConfig() core.CacheConfig {
	return core.CacheConfig{TTL: time.Minute, MaxSize: 100}
}

func sessionConfig() core.SessionConfig {
	return core.SessionConfig{MaxAge: time.Hour}
}

// signedIn registers a user and returns it with a live session token.
func (e *testEnv) signedIn(t *testing.T, email string) (*core.User, string) {
	t.Helper()
	ctx := context.Background()

	user, err := e.auth.SignUp(ctx, core.SignUpInput{Email: email, Password: "secret"})
	if err != nil {
		t.Fatalf("SignUp(%q) error = %v", email, err)
	}
	res, err := e.auth.SignIn(ctx, core.SignInInput{Email: email, Password: "secret"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("SignIn(%q) error = %v", email, err)
	}
	return user, res.Token
}
