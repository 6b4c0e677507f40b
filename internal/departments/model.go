package departments

import (
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

type Department struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Division is a unit inside a department.
type Division struct {
	ID             string    `json:"id"`
	DepartmentID   string    `json:"departmentId"`
	DepartmentName string    `json:"departmentName,omitempty"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type DepartmentInput struct {
	Code string
	Name string
}

type DivisionInput struct {
	DepartmentID string
	Code         string
	Name         string
}

type DivisionFilter struct {
	paging.Filter
	DepartmentID string
}
