package auth

import (
	"context"
	"errors"
	"time"

	"github.com/opencivic/infrawatch/pkg/logging"
)

// Service implements signup, login, token verification and logout.
type Service struct {
	users     UserRepository
	tokens    TokenStore
	whitelist *Whitelist
	logger    *logging.Logger
}

// NewService creates the auth service.
func NewService(users UserRepository, tokens TokenStore, whitelist *Whitelist, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{users: users, tokens: tokens, whitelist: whitelist, logger: logger}
}

// Signup registers a new account. The role comes from the admin whitelist.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         s.whitelist.RoleFor(email),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "email", email, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an opaque session token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, *User, error) {
	if NormalizeEmail(req.Email) == "" || req.Password == "" {
		return "", nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !VerifyPassword(req.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Not worth failing the login over.
		s.logger.Warn("failed to record last login", "error", err, "user_id", user.ID)
	}

	token, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}
	session := &Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: now,
	}
	if err := s.tokens.Set(ctx, token, session); err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Verify resolves a session token.
func (s *Service) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	return s.tokens.Get(ctx, token)
}

// Logout invalidates a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Delete(ctx, token)
}
