package controllers

import (
	"net/http"

	"github.com/cableflow/cableflow-backend/api/middleware"
	"github.com/cableflow/cableflow-backend/api/responses"
	checkoutsvc "github.com/cableflow/cableflow-backend/internal/checkout"
	"github.com/cableflow/cableflow-backend/pkg/logger"
)

// Checkout turns the caller's cart into an order and returns the payment URL.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), checkoutsvc.Customer{
			UserID: userID,
			Email:  middleware.EmailFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"order_id":    result.Order.ID,
				"extended_id": result.Order.ExtendedID,
				"total_price": result.Order.TotalPrice.StringFixed(2),
			})
			logg.Info(ctx, "checkout.completed")
		}
		responses.WriteCreated(w, result)
	}
}
