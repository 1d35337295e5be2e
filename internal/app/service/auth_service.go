package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/rhinoeg/rhino-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenRevoker remembers revoked token ids until the tokens expire
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
}

// AuthResult is a user with a freshly signed access token
type AuthResult struct {
	User        *model.User
	AccessToken string
	ExpiresAt   time.Time
}

type AuthService interface {
	Register(input RegisterInput) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Logout(ctx context.Context, claims *util.Claims) error
	GetUser(id uint) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	revoker      TokenRevoker
	jwtSecret    string
	accessExpiry time.Duration
}

// NewAuthService builds the account service. Without a revoker, logout is a
// client-side operation only.
func NewAuthService(
	userRepo repository.UserRepository,
	revoker TokenRevoker,
	jwtSecret string,
	accessExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		revoker:      revoker,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": email,
			})
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return s.issueToken(user)
}

func (s *authService) Login(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *model.User) (*AuthResult, error) {
	token, claims, err := util.GenerateAccessToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || s.revoker == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.RemainingLifetime(time.Now())); err != nil {
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id":  claims.UserID,
		"token_id": claims.ID,
	})
	return nil
}

func (s *authService) GetUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
