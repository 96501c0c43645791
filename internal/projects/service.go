package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

type projectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.Project, error)
	Save(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Project, string, error)
}

// Service exposes owner-scoped project CRUD.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.Page[ProjectDTO], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*ProjectDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input ProjectInput) (*ProjectDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input ProjectInput) (*ProjectDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo projectRepository
}

func NewService(repo projectRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.Page[ProjectDTO], error) {
	rows, next, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	items := make([]ProjectDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &types.Page[ProjectDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*ProjectDTO, error) {
	project, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(project), nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input ProjectInput) (*ProjectDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	project := &models.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Attributes:  input.Attributes,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}
	return FromModel(project), nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input ProjectInput) (*ProjectDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	project, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	project.Name = strings.TrimSpace(input.Name)
	project.Description = strings.TrimSpace(input.Description)
	project.Attributes = input.Attributes
	if err := s.repo.Save(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
	}
	return FromModel(project), nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

func validateInput(input ProjectInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "project name is required")
	}
	if tr := input.Attributes.TempRange; tr != nil {
		if tr.Min > tr.Max {
			return pkgerrors.New(pkgerrors.CodeValidation, "temperature range min must not exceed max")
		}
		if !tr.Unit.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "temperature unit must be C or F")
		}
	}
	return nil
}
