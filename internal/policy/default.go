package policy

import "github.com/PabloPavan/pharmaerp_api/internal/identity"

// Default is the route policy of the ERP API.
func Default() Policy {
	admin := []string{identity.RoleAdmin}
	salesDesk := []string{identity.RoleAdmin, identity.RoleSales, identity.RoleManager}

	return New(
		Rule{Pattern: "/v1/users/**", Roles: admin},
		Rule{Pattern: "/v1/users/me"},

		Rule{Methods: Writes, Pattern: "/v1/departments/**", Roles: admin},
		Rule{Methods: Writes, Pattern: "/v1/divisions/**", Roles: admin},
		Rule{Methods: Writes, Pattern: "/v1/dosages/**", Roles: admin},

		Rule{Pattern: "/v1/customers/**", Roles: salesDesk},
		Rule{Pattern: "/v1/sales-orders/**", Roles: salesDesk},
		Rule{Methods: Writes, Pattern: "/v1/items/**", Roles: []string{identity.RoleAdmin, identity.RoleInventory}},

		Rule{Pattern: "/v1/dashboard/**", Roles: []string{identity.RoleAdmin, identity.RoleManager}},
	)
}
