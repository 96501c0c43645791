package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/internal/users"
	"github.com/cableflow/cableflow-backend/pkg/auth"
	"github.com/cableflow/cableflow-backend/pkg/config"
	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "https://auth.cableflow.test/", ExpirationMinutes: 60}

type stubResolver struct {
	seen []users.Identity
}

func (s *stubResolver) Resolve(_ context.Context, identity users.Identity) (*models.User, error) {
	s.seen = append(s.seen, identity)
	return &models.User{ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(identity.Subject)), Email: identity.Email, Role: identity.Role}, nil
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) RevokeToken(context.Context, string, time.Duration) error { return nil }

func (s stubRevocations) IsTokenRevoked(_ context.Context, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[id], nil
}

func mintTestToken(t *testing.T, role enums.UserRole, jti string) string {
	t.Helper()
	token, err := auth.MintToken(testJWT, time.Now(), auth.TokenPayload{
		Subject: "auth0|42",
		Email:   "buyer@cableflow.test",
		Role:    role,
		JTI:     jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func serveAuth(t *testing.T, revocations stubRevocations, header string) (*httptest.ResponseRecorder, context.Context) {
	t.Helper()
	var captured context.Context
	handler := Auth(testJWT, revocations, &stubResolver{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Context()
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/cables", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp, captured
}

func TestAuthRejectsMissingToken(t *testing.T) {
	resp, _ := serveAuth(t, stubRevocations{}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	resp, _ := serveAuth(t, stubRevocations{}, "Bearer invalid")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	token := mintTestToken(t, enums.UserRoleAdmin, "jti-1")
	resp, ctx := serveAuth(t, stubRevocations{}, "Bearer "+token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if UserIDFromContext(ctx) == uuid.Nil {
		t.Fatal("expected user id in context")
	}
	if RoleFromContext(ctx) != enums.UserRoleAdmin {
		t.Fatalf("expected admin role got %s", RoleFromContext(ctx))
	}
	id, until := TokenFromContext(ctx)
	if id != "jti-1" || until.IsZero() {
		t.Fatalf("expected token id and expiry, got %q %v", id, until)
	}
}

func TestAuthDefaultsRoleToCustomer(t *testing.T) {
	token := mintTestToken(t, "", "jti-2")
	_, ctx := serveAuth(t, stubRevocations{}, "Bearer "+token)
	if RoleFromContext(ctx) != enums.UserRoleCustomer {
		t.Fatalf("expected customer role got %s", RoleFromContext(ctx))
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	token := mintTestToken(t, enums.UserRoleCustomer, "jti-3")
	resp, _ := serveAuth(t, stubRevocations{revoked: map[string]bool{"jti-3": true}}, "Bearer "+token)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	resp, _ = serveAuth(t, stubRevocations{err: errors.New("redis down")}, "Bearer "+token)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(enums.UserRoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/cables/x/quote", nil)
	req = req.WithContext(WithUser(req.Context(), uuid.New(), enums.UserRoleCustomer, ""))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = req.WithContext(WithUser(req.Context(), uuid.New(), enums.UserRoleAdmin, ""))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
