package projects

import (
	"time"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

// ProjectDTO is the transport shape of a project.
type ProjectDTO struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Attributes  types.ProjectAttributes `json:"attributes"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ProjectInput is the create/update payload.
type ProjectInput struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Description string                  `json:"description" validate:"max=2000"`
	Attributes  types.ProjectAttributes `json:"attributes"`
}

func FromModel(p *models.Project) *ProjectDTO {
	if p == nil {
		return nil
	}
	return &ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Attributes:  p.Attributes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
