package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key], _ = value.(string)
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key], _ = value.(string)
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

var buyerID = uuid.MustParse("3b1f6c2e-8d55-4c1e-9d38-0d3d5f1f6a11")

func keyedRequest(method, path, key, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req.WithContext(WithUser(req.Context(), buyerID, enums.UserRoleCustomer, "buyer@cableflow.test"))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestReplayTTLSelection(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		method string
		path   string
		want   time.Duration
		ok     bool
	}{
		{http.MethodPost, "/api/checkout", checkoutReplayTTL, true},
		{http.MethodPost, "/api/cables", standardReplayTTL, true},
		{http.MethodPost, "/api/cables/", standardReplayTTL, true},
		{http.MethodPost, "/api/cables/" + id + "/requote", standardReplayTTL, true},
		{http.MethodPost, "/api/cart", standardReplayTTL, true},
		{http.MethodPost, "/api/admin/cables/" + id + "/quote", standardReplayTTL, true},
		{http.MethodPost, "/api/cables//requote", 0, false},
		{http.MethodPost, "/api/admin/cables/" + id + "/status", 0, false},
		{http.MethodDelete, "/api/cart/" + id, 0, false},
		{http.MethodGet, "/api/cables", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := replayTTL(tt.method, tt.path)
		assert.Equal(t, tt.ok, ok, "%s %s", tt.method, tt.path)
		if ok {
			assert.Equal(t, tt.want, ttl, "%s %s", tt.method, tt.path)
		}
	}
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	store := newFakeStore()
	calls := 0
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/cart", "", `{"quantity":1}`))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"extended_id":"ORD-1001"}}`))
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, keyedRequest(http.MethodPost, "/api/checkout", "abc", `{}`))
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(replayedHeader))

	replay := httptest.NewRecorder()
	h.ServeHTTP(replay, keyedRequest(http.MethodPost, "/api/checkout", "abc", `{}`))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "true", replay.Header().Get(replayedHeader))
	assert.JSONEq(t, `{"data":{"extended_id":"ORD-1001"}}`, replay.Body.String())
	assert.Equal(t, 1, calls)
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newFakeStore()
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	h.ServeHTTP(httptest.NewRecorder(), keyedRequest(http.MethodPost, "/api/checkout", "retry-me", `{}`))
	assert.Empty(t, store.data)
}

func TestIdempotencyReleasesKeyWhenHandlerPanics(t *testing.T) {
	store := newFakeStore()
	calls := 0
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		w.WriteHeader(http.StatusCreated)
	}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), keyedRequest(http.MethodPost, "/api/checkout", "panicky", `{}`))
	})
	assert.Empty(t, store.data)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/checkout", "panicky", `{}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	store := newFakeStore()
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), keyedRequest(http.MethodPost, "/api/cart", "xyz", `{"quantity":1}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/cart", "xyz", `{"quantity":2}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))
}

func TestIdempotencyRejectsKeyInFlight(t *testing.T) {
	store := newFakeStore()
	var inner *httptest.ResponseRecorder
	var h http.Handler
	h = Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		inner = httptest.NewRecorder()
		h.ServeHTTP(inner, keyedRequest(http.MethodPost, "/api/checkout", "dup", `{}`))
		w.WriteHeader(http.StatusCreated)
	}))

	outer := httptest.NewRecorder()
	h.ServeHTTP(outer, keyedRequest(http.MethodPost, "/api/checkout", "dup", `{}`))
	assert.Equal(t, http.StatusCreated, outer.Code)
	require.NotNil(t, inner)
	assert.Equal(t, http.StatusConflict, inner.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, inner))
}
