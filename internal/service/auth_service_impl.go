package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/pkg/auth"
)

// AuthServiceImpl は AuthService の実装
type AuthServiceImpl struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewAuthService は AuthServiceImpl を生成する（DI: UserRepository と TokenIssuer を注入）
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   slog.Default().With("component", "auth_service"),
	}
}

func (s *AuthServiceImpl) Signup(ctx context.Context, in SignupInput) (*model.User, string, error) {
	if _, err := s.userRepo.FindByUsername(ctx, in.Username); err == nil {
		s.logger.Warn("signup with existing username", "username", in.Username)
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MobileNo:     in.MobileNo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("admin user created", "user_id", u.ID)
	return u, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.Warn("login with wrong password", "username", username)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}
