// Package inkwell wires the blog backend together: storage, session
// handling, the content actions and an HTTP adapter.
package inkwell

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/cache"
	"github.com/lborres/inkwell/pkg/crypto"
	"github.com/lborres/inkwell/pkg/logging"
	"github.com/lborres/inkwell/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	Cache          = core.Cache
	HTTPAdapter    = core.HTTPAdapter

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
	CookieConfig  = core.CookieConfig
	RouteGate     = core.RouteGate
	ListOptions   = core.ListOptions
)

type (
	User        = core.User
	Session     = core.Session
	SessionData = core.SessionData
	Post        = core.Post
	Category    = core.Category
)

const (
	DefaultBasePath = core.DefaultAPIPath
	MinSecretLength = 32
)

var (
	ErrUnauthenticated  = core.ErrUnauthenticated
	ErrValidationFailed = core.ErrValidationFailed
	ErrStoreUnavailable = core.ErrStoreUnavailable
	ErrNotFound         = core.ErrNotFound
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

type Config struct {
	// Secret keys the session token hashes. At least MinSecretLength
	// characters.
	Secret   string
	Database StorageAdapter
	HTTP     HTTPAdapter

	// Optional
	CacheAdapter   Cache
	DisableCache   bool
	CacheConfig    *CacheConfig
	SessionConfig  *SessionConfig
	Cookie         *CookieConfig
	PasswordHasher PasswordHandler
	// Gate defaults to DefaultRouteGate for BasePath; DisableGate turns
	// it off.
	Gate        *RouteGate
	DisableGate bool
	BasePath    string
	Logger      *zap.Logger
}

// Inkwell holds the constructed services. Routes are registered on the
// HTTP adapter by New.
type Inkwell struct {
	Sessions  *services.SessionManager
	Auth      *services.AuthService
	Content   *services.ContentService
	Seeder    *services.Seeder
	Endpoints *services.EndpointRegistry
	Cache     Cache
	BasePath  string
}

func New(config Config) (*Inkwell, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	logger := logging.OrNop(config.Logger)

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheConfig := CacheConfig{TTL: cache.DefaultTTL, MaxSize: cache.DefaultMaxSize}
		if config.CacheConfig != nil {
			cacheConfig = *config.CacheConfig
		}
		cacheAdapter = cache.NewInMemoryCache(cacheConfig)
	}

	sessionConfig := core.DefaultSessionConfig()
	if config.SessionConfig != nil {
		sessionConfig = *config.SessionConfig
	}

	cookie := core.DefaultCookieConfig(sessionConfig.MaxAge, false)
	if config.Cookie != nil {
		cookie = *config.Cookie
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}

	gate := config.Gate
	switch {
	case config.DisableGate:
		gate = nil
	case gate == nil:
		gate = core.DefaultRouteGate(basePath)
	}

	sessions := services.NewSessionManager(
		sessionConfig,
		config.Database,
		cacheAdapter,
		crypto.NewTokenHasher(config.Secret),
		logger.Named("sessions"),
	)
	auth := services.NewAuthService(config.Database, passwordHasher, sessions, logger.Named("auth"))
	content := services.NewContentService(config.Database, auth, logger.Named("content"))
	seeder := services.NewSeeder(config.Database, auth, logger.Named("seed"))
	registry := services.NewEndpointRegistry()

	iw := &Inkwell{
		Sessions:  sessions,
		Auth:      auth,
		Content:   content,
		Seeder:    seeder,
		Endpoints: registry,
		Cache:     cacheAdapter,
		BasePath:  basePath,
	}

	err := config.HTTP.RegisterRoutes(core.Handlers{
		Auth:      auth,
		Content:   content,
		Seeder:    seeder,
		Endpoints: registry.Endpoints(),
		BasePath:  basePath,
		Cookie:    cookie,
		Gate:      gate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return iw, nil
}
