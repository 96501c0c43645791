package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxRole       contextKey = "actor_role"
	ctxEmail      contextKey = "email"
	ctxTokenID    contextKey = "token_id"
	ctxTokenUntil contextKey = "token_expires_at"
	ctxLogCarrier contextKey = "log_carrier"
)

// logContext lets Logging pick up the request-scoped logger fields that
// handlers deeper in the chain attached.
type logContext struct {
	ctx context.Context
}

func withLogContext(ctx context.Context, carrier *logContext) context.Context {
	return context.WithValue(ctx, ctxLogCarrier, carrier)
}

func publishLogContext(ctx context.Context) {
	if carrier, ok := ctx.Value(ctxLogCarrier).(*logContext); ok {
		carrier.ctx = ctx
	}
}

// UserIDFromContext returns the local user id resolved by Auth.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

// TokenFromContext returns the bearer token id and its expiry.
func TokenFromContext(ctx context.Context) (string, time.Time) {
	if ctx == nil {
		return "", time.Time{}
	}
	id, _ := ctx.Value(ctxTokenID).(string)
	until, _ := ctx.Value(ctxTokenUntil).(time.Time)
	return id, until
}

// WithUser injects the caller into the context. Auth uses it; tests can too.
func WithUser(ctx context.Context, userID uuid.UUID, role enums.UserRole, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return context.WithValue(ctx, ctxEmail, email)
}

func withToken(ctx context.Context, id string, until time.Time) context.Context {
	ctx = context.WithValue(ctx, ctxTokenID, id)
	return context.WithValue(ctx, ctxTokenUntil, until)
}
