package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/crypto"
	"github.com/lborres/inkwell/pkg/logging"
)

// Messages returned to clients. Store details never leak into them.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgNotAuthenticated   = "Not authenticated"
	msgEmailTaken         = "email already registered"
	msgCreateUserFailed   = "Failed to create user"
	msgListUsersFailed    = "Failed to list users"
	msgSessionFailed      = "Failed to load session"
)

type AuthService struct {
	db             core.AuthStorage
	passwordHasher crypto.PasswordHandler
	sessionManager *SessionManager
	logger         *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(db core.AuthStorage, passwordHasher crypto.PasswordHandler, sessionManager *SessionManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		logger:         logging.OrNop(logger),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new user with email and password.
func (s *AuthService) SignUp(ctx context.Context, input core.SignUpInput) (*core.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if msg := validateStruct(input); msg != "" {
		return nil, core.NewActionError(core.ErrValidationFailed, msg)
	}

	user, err := s.createUser(ctx, input)
	if err != nil {
		if errors.Is(err, core.ErrUserExists) {
			return nil, core.NewActionError(core.ErrValidationFailed, msgEmailTaken)
		}
		s.logger.Error("sign up failed", zap.String("email", input.Email), zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, msgCreateUserFailed)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// createUser stores a user and its credential account atomically. Store
// errors are returned unchanged.
func (s *AuthService) createUser(ctx context.Context, input core.SignUpInput) (*core.User, error) {
	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &core.User{
		Email:       input.Email,
		DisplayName: input.DisplayName,
	}
	account := &core.Account{
		ProviderID: core.CredentialProvider,
		Password:   &hashedPassword,
	}
	if err := s.db.CreateUserWithAccount(ctx, user, account); err != nil {
		return nil, err
	}

	return user, nil
}

// ensureCredential gives user a password credential when it has none.
// It reports whether one was created.
func (s *AuthService) ensureCredential(ctx context.Context, user *core.User, password string) (bool, error) {
	accounts, err := s.db.GetAccountByUserAndProvider(ctx, user.ID, core.CredentialProvider)
	if err != nil {
		return false, err
	}
	for _, acc := range accounts {
		if acc.Password != nil && *acc.Password != "" {
			return false, nil
		}
	}

	hashedPassword, err := s.passwordHasher.Hash(password)
	if err != nil {
		return false, err
	}
	err = s.db.CreateAccount(ctx, &core.Account{
		UserID:     user.ID,
		ProviderID: core.CredentialProvider,
		AccountID:  user.ID,
		Password:   &hashedPassword,
	})
	if err != nil {
		return false, err
	}
	s.logger.Warn("created missing credential", zap.String("user_id", user.ID))
	return true, nil
}

// SignIn authenticates a user with email and password and opens a new
// session. Every failure, including store errors, is reported as invalid
// credentials.
func (s *AuthService) SignIn(ctx context.Context, input core.SignInInput, ipAddress, userAgent string) (*core.SignInResult, error) {
	invalid := core.NewActionError(core.ErrUnauthenticated, msgInvalidCredentials)

	input.Email = normalizeEmail(input.Email)
	if msg := validateStruct(input); msg != "" {
		return nil, invalid
	}

	user, hash, err := s.lookupCredential(ctx, input.Email)
	if err != nil {
		s.logger.Error("sign in lookup failed", zap.Error(err))
		return nil, invalid
	}

	if hash == "" {
		// unknown email: spend the same time as a real verification
		_, _ = s.passwordHasher.Verify(input.Password, s.dummyPasswordHash())
		s.logger.Debug("sign in rejected", zap.String("reason", "unknown credential"))
		return nil, invalid
	}

	valid, err := s.passwordHasher.Verify(input.Password, hash)
	if err != nil {
		s.logger.Error("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, invalid
	}
	if !valid {
		s.logger.Debug("sign in rejected", zap.String("reason", "wrong password"), zap.String("user_id", user.ID))
		return nil, invalid
	}

	result, err := s.sessionManager.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		s.logger.Error("failed to create session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, invalid
	}

	return &core.SignInResult{
		User:    user,
		Session: result.Session,
		Token:   result.Token,
	}, nil
}

// lookupCredential returns the user and password hash for email. A missing
// user or credential yields an empty hash and no error.
func (s *AuthService) lookupCredential(ctx context.Context, email string) (*core.User, string, error) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	accounts, err := s.db.GetAccountByUserAndProvider(ctx, user.ID, core.CredentialProvider)
	if err != nil {
		return nil, "", err
	}
	for _, acc := range accounts {
		if acc.Password != nil && *acc.Password != "" {
			return user, *acc.Password, nil
		}
	}
	return user, "", nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.passwordHasher.Hash("inkwell-timing-equalizer")
		if err != nil {
			s.logger.Warn("failed to build dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// SignOut revokes the session behind token. Unknown tokens are not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessionManager.Destroy(ctx, token)
	if err == nil || errors.Is(err, core.ErrSessionNotFound) {
		return nil
	}
	s.logger.Error("failed to revoke session", zap.Error(err))
	return core.NewActionError(core.ErrStoreUnavailable, "Failed to sign out")
}

// GetSession resolves token to the signed-in user and session.
func (s *AuthService) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	session, err := s.sessionManager.Verify(ctx, token)
	if err != nil {
		return nil, s.sessionError(err)
	}

	user, err := s.db.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, s.sessionError(err)
	}

	return &core.SessionData{
		User:    user,
		Session: session,
	}, nil
}

func (s *AuthService) sessionError(err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrUserNotFound):
		return core.NewActionError(core.ErrUnauthenticated, msgNotAuthenticated)
	default:
		s.logger.Error("session lookup failed", zap.Error(err))
		return core.NewActionError(core.ErrStoreUnavailable, msgSessionFailed)
	}
}

// CurrentUser returns the user behind token, or nil when there is none.
// Failures are logged and never surfaced.
func (s *AuthService) CurrentUser(ctx context.Context, token string) *core.User {
	if token == "" {
		return nil
	}
	data, err := s.GetSession(ctx, token)
	if err != nil {
		s.logger.Debug("no current user", zap.Error(err))
		return nil
	}
	return data.User
}

// ListUsers pages through every user. The caller must be signed in.
func (s *AuthService) ListUsers(ctx context.Context, token string, opts core.ListOptions) (*core.Page[core.User], error) {
	if s.CurrentUser(ctx, token) == nil {
		return nil, core.NewActionError(core.ErrUnauthenticated, msgNotAuthenticated)
	}

	opts = opts.Normalize()
	users, total, err := s.db.ListUsers(ctx, opts.Limit, opts.Offset())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, core.NewActionError(core.ErrStoreUnavailable, msgListUsersFailed)
	}

	docs := make([]core.User, len(users))
	for i, u := range users {
		docs[i] = *u
	}
	return core.NewPage(docs, total, opts), nil
}
