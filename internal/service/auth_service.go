package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/repository"
	"github.com/fyd-app/fyd-api/internal/utils"
	"github.com/fyd-app/fyd-api/internal/validation"
)

// AuthConfig is the immutable token and hashing configuration.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// AuthService registers users and issues tokens.
type AuthService struct {
	cfg      AuthConfig
	users    repository.UserStore
	validate *validation.Validator
	logger   *zap.Logger
}

func NewAuthService(cfg AuthConfig, users repository.UserStore, v *validation.Validator, logger *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, users: users, validate: v, logger: logger}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
	Age       *int     `json:"age" validate:"omitnil,gte=0,lte=150"`
}

// AuthResult carries the authenticated user and the issued tokens.
// RefreshToken is empty after registration.
type AuthResult struct {
	User         model.User
	AccessToken  string
	RefreshToken string
}

// Register creates a user with role "user" and returns an access token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = repository.NormalizeEmail(in.Email)
	if err := s.validate.Validate(&in); err != nil {
		return AuthResult{}, err
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Age:          in.Age,
		City:         in.City,
		Role:         model.RoleUser,
		IsActive:     true,
		Interests:    in.Interests,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, validation.Errorf("email already registered")
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, identityOf(u), s.cfg.AccessTTL)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID.Hex()))
	return AuthResult{User: u, AccessToken: access.Token}, nil
}

// Login checks the credentials and returns a fresh token pair.  The refresh
// token digest replaces any previously stored one.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) || !u.IsActive {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issuePair(ctx, u)
}

// Refresh exchanges a valid refresh token for a new pair.  The presented
// token must be the last one issued to the user; it is rotated.
func (s *AuthService) Refresh(ctx context.Context, raw string) (AuthResult, error) {
	id, err := utils.ParseToken(s.cfg.JWTSecret, raw, utils.TokenTypeRefresh)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	u, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive || u.RefreshToken == "" || u.RefreshToken != utils.HashRefreshRaw(raw) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issuePair(ctx, u)
}

// Logout forgets the user's refresh token.  Unknown users are ignored.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	err := s.users.SetRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, u model.User) (AuthResult, error) {
	id := identityOf(u)
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, id, s.cfg.AccessTTL)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.JWTSecret, id, s.cfg.RefreshTTL)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}
	hash := utils.HashRefreshRaw(refresh.Token)
	if err := s.users.SetRefreshToken(ctx, id.UserID, hash); err != nil {
		return AuthResult{}, fmt.Errorf("save refresh token: %w", err)
	}
	u.RefreshToken = hash
	return AuthResult{User: u, AccessToken: access.Token, RefreshToken: refresh.Token}, nil
}

func identityOf(u model.User) utils.Identity {
	return utils.Identity{UserID: u.ID.Hex(), Email: u.Email, Role: u.Role}
}
