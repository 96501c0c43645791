package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/internal/cables"
	"github.com/cableflow/cableflow-backend/internal/cart"
	"github.com/cableflow/cableflow-backend/internal/checkout"
	"github.com/cableflow/cableflow-backend/internal/files"
	"github.com/cableflow/cableflow-backend/internal/notifications"
	"github.com/cableflow/cableflow-backend/internal/orders"
	"github.com/cableflow/cableflow-backend/internal/projects"
	"github.com/cableflow/cableflow-backend/internal/users"
	"github.com/cableflow/cableflow-backend/pkg/auth"
	"github.com/cableflow/cableflow-backend/pkg/cableflow"
	"github.com/cableflow/cableflow-backend/pkg/config"
	"github.com/cableflow/cableflow-backend/pkg/db/dbtest"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
	"github.com/cableflow/cableflow-backend/pkg/storage/memory"
	"github.com/cableflow/cableflow-backend/pkg/storefront"
	"github.com/cableflow/cableflow-backend/pkg/stripe"
)

const drawingPDF = "%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevocations) RevokeToken(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryRevocations) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type stubPayments struct{}

func (stubPayments) CreateCheckoutSession(_ context.Context, _ stripe.CheckoutRequest) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/c/cs_test_1"}, nil
}

type stack struct {
	cfg    *config.Config
	server *httptest.Server
	client *cableflow.Client
}

func newStack(t *testing.T) *stack {
	t.Helper()

	cfg := &config.Config{
		App:   config.AppConfig{Env: config.AppEnvDev, AllowedOrigins: "http://localhost:5173"},
		JWT:   config.JWTConfig{Secret: "router-test-secret", Issuer: "https://auth.cableflow.test/", ExpirationMinutes: 60},
		Files: config.FilesConfig{MaxUploadMB: 5},
	}
	logg := logger.Nop()
	client := dbtest.Open(t)
	revocations := &memoryRevocations{revoked: map[string]bool{}}

	usersSvc, err := users.NewService(users.NewRepository(client.DB()), revocations)
	require.NoError(t, err)

	projectRepo := projects.NewRepository(client.DB())
	projectsSvc, err := projects.NewService(projectRepo)
	require.NoError(t, err)

	fileSvc, err := files.NewService(memory.New(), "cables", cfg.Files.MaxUploadBytes())
	require.NoError(t, err)

	cableRepo := cables.NewRepository(client.DB())
	cablesSvc, err := cables.NewService(cables.ServiceParams{
		Repo:      cableRepo,
		Projects:  projectRepo,
		Files:     fileSvc,
		Publisher: notifications.NewLogPublisher(logg),
		Logger:    logg,
	})
	require.NoError(t, err)

	cartRepo := cart.NewRepository(client.DB())
	cartSvc, err := cart.NewService(cartRepo, cableRepo, nil)
	require.NoError(t, err)

	ordersRepo := orders.NewRepository(client.DB())
	ordersSvc, err := orders.NewService(ordersRepo)
	require.NoError(t, err)

	checkoutSvc, err := checkout.NewService(client, cartRepo, ordersRepo, cableRepo, stubPayments{}, logg, nil)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, Dependencies{
		DB:          client,
		Revocations: revocations,
		Users:       usersSvc,
		Cables:      cablesSvc,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Orders:      ordersSvc,
		Projects:    projectsSvc,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := cableflow.New(server.URL)
	require.NoError(t, err)
	return &stack{cfg: cfg, server: server, client: api}
}

func (s *stack) token(t *testing.T, subject string, role enums.UserRole) string {
	t.Helper()
	token, err := auth.MintToken(s.cfg.JWT, time.Now(), auth.TokenPayload{
		Subject:   subject,
		Email:     subject + "@cableflow.test",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		JTI:       uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func (s *stack) postJSON(t *testing.T, path, token string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthLiveIsPublic(t *testing.T) {
	s := newStack(t)

	resp, err := s.server.Client().Get(s.server.URL + "/health/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.AppEnvDev, resp.Header.Get("X-CableFlow-Env"))
}

func TestAPIRequiresBearerToken(t *testing.T) {
	s := newStack(t)

	_, err := s.client.ListCables(context.Background(), "", cableflow.CableFilters{})
	require.Error(t, err)
	assert.True(t, cableflow.IsCode(err, "UNAUTHORIZED"))
}

func TestQuoteToOrderFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	customer := s.token(t, "cust-1", enums.UserRoleCustomer)
	admin := s.token(t, "admin-1", enums.UserRoleAdmin)

	cable, err := s.client.CreateCable(ctx, customer, cableflow.CreateCableInput{
		Metadata: cableflow.CableMetadata{CableName: "Harness A", Quantities: []int{100, 500}},
		Files: []cableflow.FileUpload{
			{Kind: enums.FileKindDrawing, FileName: "harness-a.pdf", Body: []byte(drawingPDF)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.CableStatusQuoteRequested, cable.Status)
	assert.Equal(t, "CBL-1001", cable.Code)
	assert.False(t, cable.PricingEnabled)

	quote := cables.QuoteInput{Tiers: []pricing.QuoteTier{
		{Quantity: 100, UnitPrice: decimal.NewFromInt(7), ExtendedPrice: decimal.NewFromInt(700), LeadTime: "3 weeks"},
		{Quantity: 500, UnitPrice: decimal.RequireFromString("5.6"), ExtendedPrice: decimal.NewFromInt(2800), LeadTime: "5 weeks"},
	}}
	quotePath := "/api/admin/cables/" + cable.ID.String() + "/quote"

	forbidden := s.postJSON(t, quotePath, customer, quote)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	published := s.postJSON(t, quotePath, admin, quote)
	require.Equal(t, http.StatusOK, published.StatusCode)

	cable, err = s.client.GetCable(ctx, customer, cable.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CableStatusQuoteReady, cable.Status)
	assert.True(t, cable.PricingEnabled)
	require.Len(t, cable.QuoteTiers, 2)

	session, err := storefront.NewSession(ctx, s.client, customer)
	require.NoError(t, err)
	assert.Equal(t, "cust-1@cableflow.test", session.User().Email)

	selection := storefront.NewQuoteSelection(*cable)
	selection.SelectTier(0)
	line, err := selection.AddToCart(ctx, session.Cart(), time.Now())
	require.NoError(t, err)
	assert.True(t, line.Price.Equal(decimal.NewFromInt(700)))
	assert.True(t, session.Cart().Subtotal().Equal(decimal.NewFromInt(700)))

	_, err = s.client.AddCartItem(ctx, customer, cableflow.AddCartItemInput{
		CableID:  cable.ID,
		Quantity: 100,
		Price:    decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, cableflow.IsCode(err, "VALIDATION_ERROR"))

	_, err = s.client.AddCartItem(ctx, customer, cableflow.AddCartItemInput{
		CableID:  cable.ID,
		Quantity: 50,
		Price:    decimal.NewFromInt(350),
	})
	require.Error(t, err)
	assert.True(t, cableflow.IsCode(err, "NOT_QUOTABLE"))

	result, err := s.client.Checkout(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", result.Order.ExtendedID)
	assert.True(t, result.Order.TotalPrice.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, "https://checkout.stripe.test/c/cs_test_1", result.CheckoutURL)

	count, err := s.client.CartCount(ctx, customer)
	require.NoError(t, err)
	assert.Zero(t, count)

	page, err := s.client.ListOrders(ctx, customer, cableflow.PageOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, result.Order.ID, page.Items[0].ID)

	require.NoError(t, s.client.Logout(ctx, customer))
	_, err = s.client.Me(ctx, customer)
	require.Error(t, err)
	assert.True(t, cableflow.IsCode(err, "UNAUTHORIZED"))
}

func TestUserDirectoryIsAdminOnly(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	customer := s.token(t, "cust-2", enums.UserRoleCustomer)
	admin := s.token(t, "admin-2", enums.UserRoleAdmin)

	_, err := s.client.ListUsers(ctx, customer, cableflow.PageOptions{})
	require.Error(t, err)
	assert.True(t, cableflow.IsCode(err, "FORBIDDEN"))

	page, err := s.client.ListUsers(ctx, admin, cableflow.PageOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, page.Items)
}
