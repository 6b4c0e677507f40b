package users

import (
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Roles        []string  `json:"roles"`
	DepartmentID string    `json:"departmentId,omitempty"`
	Designation  string    `json:"designation"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the identity carried in the access token for u.
func (u *User) Principal() identity.Principal {
	return identity.Principal{
		UserID:       u.ID,
		Username:     u.Username,
		Roles:        u.Roles,
		DepartmentID: u.DepartmentID,
		Designation:  u.Designation,
	}
}

type CreateUserRequest struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	Roles        []string
	DepartmentID string
	Designation  string
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	ID           string
	Email        *string
	PasswordHash *string
	FullName     *string
	Designation  *string
	DepartmentID *string
	Roles        []string
	IsActive     *bool
}

func (r *UpdateUserRequest) empty() bool {
	return r.Email == nil && r.PasswordHash == nil && r.FullName == nil &&
		r.Designation == nil && r.DepartmentID == nil && r.Roles == nil && r.IsActive == nil
}

type ListFilter struct {
	paging.Filter
	Role         string
	DepartmentID string
	IsActive     *bool
}
