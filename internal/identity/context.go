package identity

import (
	"context"
	"strings"
)

const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleSales     = "sales"
	RoleInventory = "inventory"
	RoleViewer    = "viewer"
)

// Principal is the authenticated caller as carried by the bearer token.
type Principal struct {
	UserID       string   `json:"id"`
	Username     string   `json:"username"`
	Roles        []string `json:"roles"`
	DepartmentID string   `json:"departmentId,omitempty"`
	Designation  string   `json:"designation,omitempty"`
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type ctxKey string

const ctxPrincipalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	roles := append([]string(nil), p.Roles...)
	p.Roles = roles
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(Principal)
	return p, ok
}

func UserID(ctx context.Context) (string, bool) {
	p, ok := FromContext(ctx)
	if !ok || p.UserID == "" {
		return "", false
	}
	return p.UserID, true
}

func HasRole(ctx context.Context, role string) bool {
	p, ok := FromContext(ctx)
	return ok && p.HasRole(role)
}

func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, RoleAdmin)
}
