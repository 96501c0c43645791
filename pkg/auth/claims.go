package auth

import (
	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// TokenPayload captures the identity fields placed in a bearer token.
type TokenPayload struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Role      enums.UserRole
	JTI       string
}

// Claims is the typed JWT issued by the identity provider. The subject is the
// provider's user id; the backend keys its user rows on it.
type Claims struct {
	Email     string         `json:"email"`
	FirstName string         `json:"given_name,omitempty"`
	LastName  string         `json:"family_name,omitempty"`
	Role      enums.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// EffectiveRole falls back to customer when the provider sends no role.
func (c *Claims) EffectiveRole() enums.UserRole {
	if c == nil || !c.Role.IsValid() {
		return enums.UserRoleCustomer
	}
	return c.Role
}
