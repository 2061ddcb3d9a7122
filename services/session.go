package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/crypto"
	"github.com/lborres/inkwell/pkg/logging"
)

// CreateSessionResult pairs a stored session with the raw token handed to
// the client. Only the token's hash is persisted.
type CreateSessionResult struct {
	Session *core.Session
	Token   string
}

type SessionManager struct {
	config  core.SessionConfig
	storage core.SessionStorage
	cache   core.Cache // optional, can be nil if caching is disabled
	tokens  *crypto.TokenHasher
	nanoid  *crypto.NanoIDGenerator
	logger  *zap.Logger
	now     func() time.Time
}

func NewSessionManager(config core.SessionConfig, storage core.SessionStorage, cache core.Cache, tokens *crypto.TokenHasher, logger *zap.Logger) *SessionManager {
	if config.MaxAge <= 0 {
		config = core.DefaultSessionConfig()
	}
	return &SessionManager{
		config:  config,
		storage: storage,
		cache:   cache,
		tokens:  tokens,
		nanoid:  crypto.MustNanoID(),
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
}

func (sm *SessionManager) Create(ctx context.Context, userID, ip, userAgent string) (*CreateSessionResult, error) {
	pair, err := sm.tokens.Generate(crypto.DefaultTokenLength)
	if err != nil {
		return nil, err
	}

	sessionID, err := sm.nanoid.Generate(0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := sm.now()
	session := &core.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: pair.Hash,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if sm.cache != nil {
		_ = sm.cache.Set(pair.Hash, session)
	}

	return &CreateSessionResult{Session: session, Token: pair.Token}, nil
}

// Verify resolves token to a live session, consulting the cache before the
// store. Expired sessions are evicted and reported as ErrSessionExpired.
func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := sm.tokens.Hash(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil {
			if sm.now().After(session.ExpiresAt) {
				_ = sm.cache.Delete(tokenHash)
				return nil, core.ErrSessionExpired
			}
			return session, nil
		}
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if sm.now().After(session.ExpiresAt) {
		if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
			sm.logger.Warn("failed to delete expired session", zap.String("session_id", session.ID), zap.Error(err))
		}
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

// Destroy revokes the session behind token. An unknown token reports
// ErrSessionNotFound after the cache entry is dropped.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}

	tokenHash := sm.tokens.Hash(token)

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}

	return sm.storage.DeleteSessionByHash(ctx, tokenHash)
}

// PurgeExpired deletes every expired session record.
func (sm *SessionManager) PurgeExpired(ctx context.Context) (int, error) {
	n, err := sm.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	if n > 0 {
		sm.logger.Info("purged expired sessions", zap.Int("count", n))
	}
	return n, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done.
func (sm *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sm.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				sm.logger.Error("session purge failed", zap.Error(err))
			}
		}
	}
}
