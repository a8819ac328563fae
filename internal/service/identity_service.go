package service

import (
	"context"
	"fmt"

	"agrimarket/internal/auth"
	"agrimarket/internal/models"
	"agrimarket/internal/util"

	"go.uber.org/zap"
)

// UserStore is the persistence surface the identity service needs
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// IdentityService handles registration and login
type IdentityService struct {
	store  UserStore
	tokens *auth.Manager
	logger *zap.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(store UserStore, tokens *auth.Manager) *IdentityService {
	return &IdentityService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterRequest represents a registration form
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

// Register creates a new account. The role is fixed at creation; there is
// no way to change it afterwards. A duplicate email fails with ErrConflict.
func (s *IdentityService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", models.ErrValidation)
	}
	if !models.ValidRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, models.ErrValidation)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)
	}

	token, err := s.tokens.IssueToken(auth.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}
