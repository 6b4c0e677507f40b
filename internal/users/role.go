package users

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/identity"
)

var knownRoles = map[string]struct{}{
	identity.RoleAdmin:     {},
	identity.RoleManager:   {},
	identity.RoleSales:     {},
	identity.RoleInventory: {},
	identity.RoleViewer:    {},
}

func ValidRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}

// NormalizeRoles lowercases, deduplicates and sorts roles. An empty input
// yields the viewer role.
func NormalizeRoles(roles []string) ([]string, error) {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !ValidRole(r) {
			return nil, fmt.Errorf("invalid role: %q", r)
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return []string{identity.RoleViewer}, nil
	}
	sort.Strings(out)
	return out, nil
}
