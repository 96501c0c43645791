package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
	"github.com/cableflow/cableflow-backend/pkg/redis"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params) ([]models.User, string, error)
}

// Service manages the local mirror of identity-provider accounts.
type Service interface {
	Resolve(ctx context.Context, identity Identity) (*models.User, error)
	Me(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params) (*types.Page[UserDTO], error)
	Logout(ctx context.Context, tokenID string, remaining time.Duration) error
}

type service struct {
	repo    userRepository
	revoked redis.RevocationStore
}

// NewService wires the users service.
func NewService(repo userRepository, revoked redis.RevocationStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if revoked == nil {
		return nil, fmt.Errorf("revocation store required")
	}
	return &service{repo: repo, revoked: revoked}, nil
}

// Resolve returns the user for the token subject, creating it on first access.
// Email and role follow the token; names are only seeded once since users edit
// them locally.
func (s *service) Resolve(ctx context.Context, identity Identity) (*models.User, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token subject missing")
	}

	user, err := s.repo.FindBySubject(ctx, subject)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, createErr := s.repo.Create(ctx, identity.toModel())
		if createErr == nil {
			return created, nil
		}
		if !pkgerrors.IsUniqueViolation(createErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create user")
		}
		// concurrent first request created it
		user, err = s.repo.FindBySubject(ctx, subject)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		return user, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	want := identity.toModel()
	updates := map[string]any{}
	if want.Email != "" && want.Email != user.Email {
		updates["email"] = want.Email
		user.Email = want.Email
	}
	if identity.Role.IsValid() && identity.Role != user.Role {
		updates["role"] = identity.Role
		user.Role = identity.Role
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, user.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync user")
		}
	}
	return user, nil
}

func (s *service) Me(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"first_name": first, "last_name": last}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return s.Me(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params) (*types.Page[UserDTO], error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &types.Page[UserDTO]{Items: items, NextCursor: next}, nil
}

// Logout revokes the token id for the rest of its lifetime.
func (s *service) Logout(ctx context.Context, tokenID string, remaining time.Duration) error {
	if strings.TrimSpace(tokenID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token has no id")
	}
	if err := s.revoked.RevokeToken(ctx, tokenID, remaining); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
	}
	return nil
}
