package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cableflow/cableflow-backend/internal/cart"
	"github.com/cableflow/cableflow-backend/internal/orders"
	"github.com/cableflow/cableflow-backend/pkg/db/models"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/lifecycle"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
	"github.com/cableflow/cableflow-backend/pkg/stripe"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cableLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cable, error)
}

type sessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req stripe.CheckoutRequest) (*stripe.CheckoutSession, error)
}

// Customer identifies who is checking out.
type Customer struct {
	UserID uuid.UUID
	Email  string
}

// Result is returned by POST /api/checkout.
type Result struct {
	Order       orders.OrderDTO `json:"order"`
	CheckoutURL string          `json:"checkout_url"`
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, customer Customer) (*Result, error)
}

type service struct {
	tx       txRunner
	cartRepo cart.CartRepository
	orders   orders.Repository
	cables   cableLoader
	payments sessionCreator
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service. now may be nil.
func NewService(
	tx txRunner,
	cartRepo cart.CartRepository,
	ordersRepo orders.Repository,
	cables cableLoader,
	payments sessionCreator,
	logg *logger.Logger,
	now func() time.Time,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cables == nil {
		return nil, fmt.Errorf("cable loader required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment session creator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:       tx,
		cartRepo: cartRepo,
		orders:   ordersRepo,
		cables:   cables,
		payments: payments,
		logg:     logg,
		now:      now,
	}, nil
}

// Execute turns the cart into an order and opens the payment session for it.
// The order and the cart clear commit together; the session is created after.
func (s *service) Execute(ctx context.Context, customer Customer) (*Result, error) {
	if customer.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	lines, err := s.cartRepo.List(ctx, customer.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := s.checkQuotes(ctx, lines); err != nil {
		return nil, err
	}

	order := buildOrder(customer.UserID, lines)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.cartRepo.WithTx(tx).Clear(ctx, customer.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ExtendedID, "user_id": customer.UserID.String()})
	s.logg.Info(logCtx, "order created")

	session, err := s.payments.CreateCheckoutSession(ctx, checkoutRequest(customer, order))
	if err != nil {
		s.logg.Error(logCtx, "failed to create checkout session", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session").
			WithDetails(map[string]any{"order_id": order.ID, "extended_id": order.ExtendedID})
	}
	if err := s.orders.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		s.logg.Error(logCtx, "failed to record checkout session", err)
	} else {
		order.CheckoutSessionID = &session.ID
	}

	return &Result{Order: orders.FromModel(order), CheckoutURL: session.URL}, nil
}

// checkQuotes rejects the checkout when a line's cable was removed or its
// quote has expired since the line was added.
func (s *service) checkQuotes(ctx context.Context, lines []models.CartItem) error {
	now := s.now()
	checked := map[uuid.UUID]bool{}
	var stale []uuid.UUID
	for _, line := range lines {
		ok, seen := checked[line.CableID]
		if !seen {
			cable, err := s.cables.FindByID(ctx, line.CableID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				ok = false
			case err != nil:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cable")
			default:
				ok = !lifecycle.IsExpired(lifecycle.Quote{Status: cable.Status, Expiration: cable.QuoteExpiration}, now)
			}
			checked[line.CableID] = ok
		}
		if !ok {
			stale = append(stale, line.ID)
		}
	}
	if len(stale) > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "some cart lines have expired quotes").
			WithDetails(map[string]any{"lines": stale})
	}
	return nil
}

func buildOrder(userID uuid.UUID, lines []models.CartItem) *models.Order {
	prices := make([]decimal.Decimal, 0, len(lines))
	leadTimes := make([]string, 0, len(lines))
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		prices = append(prices, line.Price)
		leadTimes = append(leadTimes, line.LeadTime)
		items = append(items, models.OrderItem{
			CableID:   line.CableID,
			CableCode: line.CableCode,
			CableName: line.CableName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Price:     line.Price,
		})
	}
	return &models.Order{
		UserID:     userID,
		TotalPrice: pricing.Subtotal(prices...),
		LeadTime:   pricing.LongestLeadTime(leadTimes...),
		Items:      items,
	}
}

func checkoutRequest(customer Customer, order *models.Order) stripe.CheckoutRequest {
	lines := make([]stripe.CheckoutLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, stripe.CheckoutLine{
			Name:     fmt.Sprintf("%s %s", item.CableCode, item.CableName),
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return stripe.CheckoutRequest{
		OrderID:    order.ID.String(),
		OrderCode:  order.ExtendedID,
		CustomerID: customer.UserID.String(),
		Email:      customer.Email,
		Lines:      lines,
	}
}
