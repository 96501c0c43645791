package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

// Service is the read side of orders. Orders are never edited once created.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.Page[OrderDTO], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.Page[OrderDTO], error) {
	rows, next, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &types.Page[OrderDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := FromModel(order)
	return &dto, nil
}
