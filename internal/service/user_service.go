package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserService handles directory and profile operations.
type UserService struct {
	users repository.UserRepository
	cfg   config.AuthConfig
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository) *UserService {
	return &UserService{users: users, cfg: cfg}
}

// UserCreateInput describes admin-driven account creation.
type UserCreateInput struct {
	Email      string
	Password   string
	Name       string
	Role       domain.UserRole
	Department *string
	Phone      *string
}

// UserPatch applies optional profile fields. Role changes by non-admin
// callers are ignored, mirroring the assignee rule on tickets.
type UserPatch struct {
	Name       *string
	Department *string
	Phone      *string
	Role       *domain.UserRole
}

// List returns all users; admin only.
func (s *UserService) List(ctx context.Context, caller *domain.User) ([]domain.User, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAccessDenied()
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return users, nil
}

// Get returns one user: self, or anyone for admins.
func (s *UserService) Get(ctx context.Context, caller *domain.User, id int64) (*domain.User, error) {
	if !caller.IsAdmin() && caller.ID != id {
		return nil, apperrors.NewAccessDenied()
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return user, nil
}

// Create adds an account with a caller-chosen role; admin only.
func (s *UserService) Create(ctx context.Context, caller *domain.User, input UserCreateInput) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAccessDenied()
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || input.Password == "" || name == "" {
		return nil, apperrors.NewValidationError("email, password, and name are required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Department:   input.Department,
		Phone:        input.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewValidationError("email already exists", map[string]any{"email": email})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return user, nil
}

// Update patches a profile: self, or anyone for admins. Role changes only
// apply when the caller is admin; otherwise they are dropped silently.
func (s *UserService) Update(ctx context.Context, caller *domain.User, id int64, patch UserPatch) error {
	if !caller.IsAdmin() && caller.ID != id {
		return apperrors.NewAccessDenied()
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.NewStoreError(err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return apperrors.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if patch.Department != nil {
		user.Department = patch.Department
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	if patch.Role != nil && caller.IsAdmin() {
		if !domain.ValidRole(*patch.Role) {
			return apperrors.NewValidationError("invalid role", map[string]any{"role": *patch.Role})
		}
		user.Role = *patch.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
