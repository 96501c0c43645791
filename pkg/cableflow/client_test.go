package cableflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/enums"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL+"/", WithUserAgent("storefront-test"))
	require.NoError(t, err)
	return client
}

func writeData(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}

func TestAddCartItemSendsTokenAndBody(t *testing.T) {
	cableID := uuid.New()
	lineID := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/cart", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "storefront-test", r.Header.Get("User-Agent"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, cableID.String(), body["cable_id"])
		assert.Equal(t, float64(100), body["quantity"])
		assert.Equal(t, "700", body["price"])

		writeData(t, w, http.StatusCreated, map[string]any{
			"id": lineID, "cable_id": cableID, "quantity": 100, "price": "700.00", "unit_price": "7",
		})
	})

	line, err := client.AddCartItem(context.Background(), "tok", AddCartItemInput{
		CableID: cableID, Quantity: 100, Price: decimal.NewFromInt(700),
	})
	require.NoError(t, err)
	assert.Equal(t, lineID, line.ID)
	assert.True(t, decimal.NewFromInt(700).Equal(line.Price))
}

func TestErrorEnvelopeBecomesNetworkFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":"NOT_FOUND","message":"cart item not found"}}`)
	})

	err := client.DeleteCartItem(context.Background(), "tok", uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsCode(err, "NOT_FOUND"))

	var failure *NetworkFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, http.StatusNotFound, failure.StatusCode)
	assert.Equal(t, "cart item not found", failure.Message)
}

func TestPlainErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	_, err := client.Me(context.Background(), "tok")
	var failure *NetworkFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, http.StatusBadGateway, failure.StatusCode)
	assert.Equal(t, "upstream exploded", failure.Message)
	assert.False(t, IsNotFound(err))
}

func TestWithTimeoutLeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: 5 * time.Second}

	client, err := New("https://api.example.com", WithHTTPClient(shared), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, shared.Timeout)
	assert.Equal(t, time.Second, client.httpClient.Timeout)
	assert.NotSame(t, shared, client.httpClient)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := New(url, WithTimeout(time.Second))
	require.NoError(t, err)
	_, err = client.ListCartItems(context.Background(), "tok")
	var failure *NetworkFailure
	require.True(t, errors.As(err, &failure))
	assert.Zero(t, failure.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestCreateCableMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		var meta CableMetadata
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &meta))
		assert.Equal(t, "Main harness", meta.CableName)
		assert.Equal(t, []int{5, 25, 100}, meta.Quantities)

		f, header, err := r.FormFile("drawing")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "harness.pdf", header.Filename)
		raw, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF-1.7", string(raw))

		_, _, err = r.FormFile("bom")
		assert.Error(t, err)

		writeData(t, w, http.StatusCreated, map[string]any{
			"id": uuid.New(), "code": "CBL-1001", "status": enums.CableStatusQuoteRequested,
		})
	})

	cable, err := client.CreateCable(context.Background(), "tok", CreateCableInput{
		Metadata: CableMetadata{CableName: "Main harness", Quantities: []int{5, 25, 100}},
		Files:    []FileUpload{{Kind: enums.FileKindDrawing, FileName: "../harness.pdf", Body: []byte("%PDF-1.7")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CBL-1001", cable.Code)
	assert.Equal(t, enums.CableStatusQuoteRequested, cable.Status)
}

func TestListCablesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Quote Ready", r.URL.Query().Get("status"))
		assert.Equal(t, "harness", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeData(t, w, http.StatusOK, map[string]any{
			"items":       []map[string]any{{"id": uuid.New(), "code": "CBL-1001", "status": "Quote Ready"}},
			"next_cursor": "abc",
		})
	})

	page, err := client.ListCables(context.Background(), "tok", CableFilters{
		PageOptions: PageOptions{Limit: 10},
		Status:      enums.CableStatusQuoteReady,
		Query:       "harness",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "abc", page.NextCursor)
	assert.Equal(t, enums.CableStatusQuoteReady, page.Items[0].Quote().Status)
}

func TestNoContentResponses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, client.DeleteProject(context.Background(), "tok", uuid.New()))
	require.NoError(t, client.DeleteCable(context.Background(), "tok", uuid.New()))
}
