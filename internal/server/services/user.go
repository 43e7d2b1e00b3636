// Package services contains server-side business logic. This file implements
// UserService: registration, password login, session token issuance and the
// account maintenance flows behind the authenticated endpoints.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

// TokenTypeBearer is the token_type reported with every session.
const TokenTypeBearer = "bearer"

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, plain, hash string) bool
	VerifyDummy(ctx context.Context, plain string)
}

// TokenCodec is satisfied by *auth.Codec.
type TokenCodec interface {
	Issue(claims map[string]any, ttl time.Duration) (string, error)
	VerifyAndDecode(token string) (map[string]any, error)
}

// Recorder receives auth outcomes. *metrics.Collector implements it.
type Recorder interface {
	RecordLogin(result string)
	RecordRegistration(result string)
	RecordTokenVerification(result string)
	RecordHashLatency(d time.Duration)
}

// Session is what a successful login hands back to the client.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type registration struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required"`
}

type emailChange struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

// UserService wires the hasher, the token codec and the users repository.
// It holds no mutable state and is safe for concurrent use.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenCodec
	resolver    *auth.Resolver

	accessTokenValidityDuration time.Duration
	tokenFallbackDuration       time.Duration

	logger  logging.Logger
	metrics Recorder
}

type Option func(*UserService)

func WithLogger(l logging.Logger) Option {
	return func(s *UserService) { s.logger = l.With("module", "users") }
}

func WithMetrics(r Recorder) Option {
	return func(s *UserService) { s.metrics = r }
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenCodec, cfg *config.Config, opts ...Option) *UserService {
	s := &UserService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		tokens:                      tokens,
		resolver:                    auth.NewResolver(tokens, m.Users(db)),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		tokenFallbackDuration:       cfg.TokenFallbackDuration,
		logger:                      logging.Nop{},
		metrics:                     nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate checks username and password. An unknown user and a wrong
// password both yield (nil, false, nil); an error means the lookup itself
// failed.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(ctx, password)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error looking up user: %w", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, false, nil
	}
	return user, true, nil
}

// Register validates input, hashes the password and stores a new active
// user. Email uniqueness is checked before username uniqueness. Nothing is
// persisted unless every step succeeds.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validation.Struct(registration{Username: username, Email: email, Password: password}); err != nil {
		s.metrics.RecordRegistration(metrics.ResultInvalid)
		return nil, err
	}

	start := time.Now()
	hash, err := s.hasher.Hash(ctx, password)
	s.metrics.RecordHashLatency(time.Since(start))
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			s.metrics.RecordRegistration(metrics.ResultInvalid)
		} else {
			s.metrics.RecordRegistration(metrics.ResultError)
		}
		return nil, err
	}

	user := &models.User{UserName: username, Email: email, PasswordHash: hash, Active: true}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if err := ensureAbsent(repo.GetUserByEmail(ctx, email)); err != nil {
			return checkDuplicate(err, common.ErrDuplicateEmail)
		}
		if err := ensureAbsent(repo.GetUserByLogin(ctx, username)); err != nil {
			return checkDuplicate(err, common.ErrDuplicateUsername)
		}

		created, err := repo.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		user = created
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrDuplicateUsername) {
			s.metrics.RecordRegistration(metrics.ResultDuplicate)
		} else {
			s.metrics.RecordRegistration(metrics.ResultError)
			s.logger.Error(ctx, "registration failed", "username", username, "error", err)
		}
		return nil, err
	}

	s.metrics.RecordRegistration(metrics.ResultSuccess)
	s.logger.Info(ctx, "user registered", "username", user.UserName, "id", user.ID)
	return user, nil
}

// errExists marks a lookup that found a row.
var errExists = errors.New("exists")

func ensureAbsent(_ *models.User, err error) error {
	switch {
	case err == nil:
		return errExists
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

func checkDuplicate(err, dup error) error {
	if errors.Is(err, errExists) {
		return dup
	}
	return fmt.Errorf("error looking up user: %w", err)
}

// IssueSessionToken signs a token whose subject is the username.
func (s *UserService) IssueSessionToken(user *models.User) (string, error) {
	token, err := s.tokens.Issue(map[string]any{auth.ClaimSubject: user.UserName}, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *UserService) newSession(user *models.User) (*Session, error) {
	token, err := s.IssueSessionToken(user)
	if err != nil {
		return nil, err
	}

	ttl := s.accessTokenValidityDuration
	if ttl == 0 {
		ttl = s.tokenFallbackDuration
	}
	if ttl == 0 {
		ttl = auth.DefaultFallbackTTL
	}

	return &Session{AccessToken: token, TokenType: TokenTypeBearer, ExpiresIn: int64(ttl / time.Second)}, nil
}

// Login authenticates and returns a new session. Bad credentials of any
// kind are common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.metrics.RecordLogin(metrics.ResultError)
		s.logger.Error(ctx, "login lookup failed", "username", username, "error", err)
		return nil, err
	}
	if !ok {
		s.metrics.RecordLogin(metrics.ResultFailure)
		s.logger.Info(ctx, "login rejected", "username", username)
		return nil, common.ErrorUnauthorized
	}

	session, err := s.newSession(user)
	if err != nil {
		s.metrics.RecordLogin(metrics.ResultError)
		return nil, err
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	return session, nil
}

// RegisterAndIssue registers a user and opens a session for it. No token is
// issued unless the user was stored.
func (s *UserService) RegisterAndIssue(ctx context.Context, username, email, password string) (*models.User, *Session, error) {
	user, err := s.Register(ctx, username, email, password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// ResolveIdentity maps a bearer token to its user without checking that the
// account is active.
func (s *UserService) ResolveIdentity(ctx context.Context, token string) (*models.User, error) {
	user, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		if auth.IsUnauthenticated(err) {
			s.metrics.RecordTokenVerification(metrics.ResultInvalid)
			s.logger.Info(ctx, "token rejected", "reason", err.Error())
		} else {
			s.metrics.RecordTokenVerification(metrics.ResultError)
		}
		return nil, err
	}

	s.metrics.RecordTokenVerification(metrics.ResultSuccess)
	return user, nil
}

// CurrentUser resolves token and requires the account to be active.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	user, err := s.ResolveIdentity(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.resolver.RequireActive(user)
}

// RequireActive rejects inactive accounts with common.ErrInactiveAccount.
func (s *UserService) RequireActive(user *models.User) (*models.User, error) {
	return s.resolver.RequireActive(user)
}

// Update applies patch to the user with the given id.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrValidation)
	}
	if patch.Email != nil {
		if err := validation.Struct(emailChange{Email: *patch.Email}); err != nil {
			return nil, err
		}
	}

	user, err := s.repomanager.Users(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	s.logger.Info(ctx, "user updated", "id", id)
	return user, nil
}

// Delete removes the user with the given id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "id", id)
	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecordLogin(string)             {}
func (nopRecorder) RecordRegistration(string)      {}
func (nopRecorder) RecordTokenVerification(string) {}
func (nopRecorder) RecordHashLatency(time.Duration) {}
