package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/lib/job"
	"github.com/deppfellow/budgetbud/internal/lib/token"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	errInvalidCredentials = errs.Unauthorized(errs.CodeInvalidCredentials, "Invalid username or password")
	errInvalidToken       = errs.Unauthorized(errs.CodeInvalidToken, "Invalid or expired token")
)

// AuthService registers users and manages their token pairs. Refresh tokens
// are rotated on every use; used and logged out refresh tokens are revoked
// until they expire.
type AuthService struct {
	users   repository.UserRepository
	revoked repository.TokenStore
	tokens  *token.Manager
	jobs    TaskEnqueuer
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewAuthService(users repository.UserRepository, revoked repository.TokenStore, tokens *token.Manager, jobs TaskEnqueuer, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		revoked: revoked,
		tokens:  tokens,
		jobs:    jobs,
		logger:  logger,
		now:     time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) Register(ctx context.Context, p *model.RegisterPayload) (*model.User, *token.Pair, error) {
	hash, err := hashPassword(p.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Username:     strings.TrimSpace(p.Username),
		Email:        model.NormalizeEmail(p.Email),
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.enqueueWelcome(ctx, user)

	return user, pair, nil
}

func (s *AuthService) enqueueWelcome(ctx context.Context, user *model.User) {
	log := loggerFrom(ctx, s.logger)

	task, err := job.NewWelcomeEmailTask(user.Email, user.DisplayName())
	if err != nil {
		log.Error().Err(err).Msg("failed to build welcome email task")
		return
	}
	if _, err := s.jobs.EnqueueContext(ctx, task); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to enqueue welcome email")
	}
}

// Login accepts the username or the e-mail address.
func (s *AuthService) Login(ctx context.Context, p *model.LoginPayload) (*model.User, *token.Pair, error) {
	identifier := strings.TrimSpace(p.Username)

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, model.NormalizeEmail(identifier))
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, &errs.HTTPError{}) {
			return nil, nil, errInvalidCredentials
		}
		return nil, nil, err
	}

	if !checkPassword(user.PasswordHash, p.Password) {
		return nil, nil, errInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Authenticate verifies an access token and returns its user id.
func (s *AuthService) Authenticate(raw string) (uuid.UUID, error) {
	claims, err := s.tokens.Parse(raw, token.TypeAccess)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	return claims.UserID()
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*model.User, *token.Pair, error) {
	if raw == "" {
		return nil, nil, errInvalidToken
	}
	claims, err := s.tokens.Parse(raw, token.TypeRefresh)
	if err != nil {
		return nil, nil, errInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, errInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, errInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, &errs.HTTPError{}) {
			return nil, nil, errInvalidToken
		}
		return nil, nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the refresh token, if it is still valid.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	claims, err := s.tokens.Parse(raw, token.TypeRefresh)
	if err != nil {
		return nil
	}
	return s.revoke(ctx, claims)
}

func (s *AuthService) revoke(ctx context.Context, claims *token.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now()))
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
