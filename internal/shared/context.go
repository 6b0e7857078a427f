package shared

import "context"

// Role names carried in session tokens.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Principal describes the authenticated caller of a request.
type Principal struct {
	UserID int64
	Email  string
	Role   string
	// TokenID is the jti of the session token that authenticated the request.
	TokenID string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// RoleFor maps the stored admin flag to a role name.
func RoleFor(isAdmin bool) string {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
