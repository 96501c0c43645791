package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/db/dbtest"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t).DB()))
	require.NoError(t, err)
	return svc
}

func boolPtr(v bool) *bool { return &v }
func strPtr(v string) *string { return &v }

func TestProjectCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, ProjectInput{
		Name: " Rover harness ",
		Attributes: types.ProjectAttributes{
			TempRange:       &types.TempRange{Min: -40, Max: 85, Unit: enums.TemperatureUnitCelsius},
			IPRating:        strPtr("67"),
			PositiveLocking: boolPtr(true),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rover harness", created.Name)

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Attributes.TempRange)
	assert.Equal(t, 85, got.Attributes.TempRange.Max)
	assert.Equal(t, "67", *got.Attributes.IPRating)
	assert.Nil(t, got.Attributes.Shielding)

	updated, err := svc.Update(ctx, owner, created.ID, ProjectInput{
		Name:       "Rover harness v2",
		Attributes: types.ProjectAttributes{Shielding: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rover harness v2", updated.Name)
	assert.Nil(t, updated.Attributes.TempRange)

	page, err := svc.List(ctx, owner, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, *page.Items[0].Attributes.Shielding)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	_, err = svc.Get(ctx, owner, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestProjectsAreOwnerScoped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	created, err := svc.Create(ctx, owner, ProjectInput{Name: "Private"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, other, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	err = svc.Delete(ctx, other, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	page, err := svc.List(ctx, other, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestProjectValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), ProjectInput{Name: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, uuid.New(), ProjectInput{
		Name:       "Bad range",
		Attributes: types.ProjectAttributes{TempRange: &types.TempRange{Min: 100, Max: 0, Unit: enums.TemperatureUnitFahrenheit}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
