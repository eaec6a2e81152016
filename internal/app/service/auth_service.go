package service

import (
	"context"
	"errors"
	"fmt"

	"gradebox/internal/common"
	"gradebox/internal/common/security"
	"gradebox/internal/domain/model"
	"gradebox/internal/domain/repository"

	"github.com/google/uuid"
)

const defaultNameChanges = 2

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:              uuid.NewString(),
		Username:        req.Username,
		HashedPassword:  hashedPassword,
		DisplayName:     req.DisplayName,
		NameChangesLeft: defaultNameChanges,
		Role:            model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// ChangeDisplayName renames the user. Each account gets a limited number of
// renames; the judge keeps the old snapshot on past submissions.
func (s *AuthService) ChangeDisplayName(ctx context.Context, userID, displayName string) (*model.User, error) {
	if displayName == "" {
		return nil, common.ErrBadRequest
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.NameChangesLeft <= 0 {
		return nil, fmt.Errorf("no display name changes left: %w", common.ErrForbidden)
	}
	if err := s.userRepo.UpdateDisplayName(ctx, userID, displayName, user.NameChangesLeft-1); err != nil {
		return nil, err
	}
	user.DisplayName = displayName
	user.NameChangesLeft--
	user.HashedPassword = ""
	return user, nil
}
