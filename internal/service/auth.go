package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veyra/adaptive-auth/internal/auth"
	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AttemptRecorder persists login attempt outcomes. The attempt history is
// what the risk engine later reads as the failed-attempts signal.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, userID *uuid.UUID, email, ip, location string, success bool) error
}

// AuthService handles user registration and login.
type AuthService struct {
	pool     *pgxpool.Pool
	users    repository.UserRepository
	attempts AttemptRecorder
	jwtMgr   *auth.JWTManager
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	attempts AttemptRecorder,
	jwtMgr *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		pool:     pool,
		users:    users,
		attempts: attempts,
		jwtMgr:   jwtMgr,
		logger:   logger,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput holds the login request fields, plus the request-derived
// context the attempt history records.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
	Location string `json:"-"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if err := s.users.Create(ctx, s.pool, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, UserID: user.ID, Email: user.Email}, nil
}

// Login authenticates a user and returns a JWT. Every attempt, successful or
// not, lands in the attempt history.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		s.recordAttempt(ctx, nil, input, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordAttempt(ctx, &user.ID, input, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	s.recordAttempt(ctx, &user.ID, input, true)

	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, UserID: user.ID, Email: user.Email}, nil
}

// recordAttempt is best-effort: a failed write must not turn a valid login
// into an error, it only costs one history data point.
func (s *AuthService) recordAttempt(ctx context.Context, userID *uuid.UUID, input LoginInput, success bool) {
	if err := s.attempts.RecordAttempt(ctx, userID, input.Email, input.IP, input.Location, success); err != nil {
		s.logger.Warn("record login attempt failed", "email", input.Email, "error", err)
	}
}
