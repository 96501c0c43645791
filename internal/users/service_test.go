package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/db/dbtest"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
)

type stubRevocations struct {
	revoked map[string]time.Duration
}

func (s *stubRevocations) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	if s.revoked == nil {
		s.revoked = map[string]time.Duration{}
	}
	s.revoked[tokenID] = ttl
	return nil
}

func (s *stubRevocations) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := s.revoked[tokenID]
	return ok, nil
}

func newTestService(t *testing.T) (Service, *stubRevocations) {
	t.Helper()
	client := dbtest.Open(t)
	revocations := &stubRevocations{}
	svc, err := NewService(NewRepository(client.DB()), revocations)
	require.NoError(t, err)
	return svc, revocations
}

func TestResolveCreatesThenSyncs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, Identity{
		Subject:   "auth0|abc",
		Email:     "Ada@Example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, enums.UserRoleCustomer, first.Role)

	_, err = svc.UpdateProfile(ctx, first.ID, UpdateProfileInput{FirstName: "Augusta", LastName: "King"})
	require.NoError(t, err)

	again, err := svc.Resolve(ctx, Identity{
		Subject:   "auth0|abc",
		Email:     "ada@cableflow.test",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "ada@cableflow.test", again.Email)
	assert.Equal(t, enums.UserRoleAdmin, again.Role)
	assert.Equal(t, "Augusta", again.FirstName)

	me, err := svc.Me(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "King", me.LastName)
	assert.Equal(t, enums.UserRoleAdmin, me.Role)
}

func TestResolveRequiresSubject(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Resolve(context.Background(), Identity{Email: "x@y.z"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestMeNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Me(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, sub := range []string{"a", "b", "c"} {
		_, err := svc.Resolve(ctx, Identity{Subject: sub, Email: sub + "@cableflow.test"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := svc.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c@cableflow.test", page.Items[0].Email)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "a@cableflow.test", rest.Items[0].Email)
	assert.Empty(t, rest.NextCursor)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, revocations := newTestService(t)
	require.NoError(t, svc.Logout(context.Background(), "jti-1", time.Minute))
	assert.Equal(t, time.Minute, revocations.revoked["jti-1"])

	err := svc.Logout(context.Background(), "", time.Minute)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
