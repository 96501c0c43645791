package storefront

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cableflow/cableflow-backend/pkg/cableflow"
)

var errTokenRequired = errors.New("storefront: token is required")

// Session is the state of one signed-in customer. It is created on
// authentication and closed on logout.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *cableflow.User
	cart  *Cart
}

// NewSession loads the profile and the cart for token.
func NewSession(ctx context.Context, gateway Gateway, token string, opts ...CartOption) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errTokenRequired
	}
	user, err := gateway.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	cart := NewCart(gateway, token, opts...)
	if err := cart.Refresh(ctx); err != nil {
		return nil, err
	}
	return &Session{token: token, user: user, cart: cart}, nil
}

// User returns the signed-in user, or nil after Close.
func (s *Session) User() *cableflow.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the bearer token, or "" after Close.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Cart returns the signed-in user's cart.
func (s *Session) Cart() *Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Close forgets the user and empties the cart.
func (s *Session) Close() {
	s.mu.Lock()
	cart := s.cart
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	if cart != nil {
		cart.Clear()
	}
}
