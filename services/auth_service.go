package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogapi/common"
	"blogapi/models"
	"blogapi/repository"
	"blogapi/security"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	users  repository.UserRepository
	tokens *security.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens *security.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is the body returned by register and login.
type AuthResult struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Token string             `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrDuplicateUser
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hashed,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.result(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.BurnPasswordCheck(in.Password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(in.Password, user.Password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.result(user)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user.Public(), nil
}

// Authenticate resolves a bearer token to the current user document, so
// role changes apply without re-issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, common.NewError(common.ErrUnauthorized, "Not authorized, token failed")
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, common.NewError(common.ErrUnauthorized, "Not authorized, token failed")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrUnauthorized, "Not authorized, user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) result(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}
