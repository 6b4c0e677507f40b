package customers

import (
	"net/url"
	"strconv"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

type CustomerType string

const (
	TypeRetail      CustomerType = "retail"
	TypeWholesale   CustomerType = "wholesale"
	TypeHospital    CustomerType = "hospital"
	TypeDistributor CustomerType = "distributor"
)

func (t CustomerType) Valid() bool {
	switch t {
	case TypeRetail, TypeWholesale, TypeHospital, TypeDistributor:
		return true
	default:
		return false
	}
}

type Customer struct {
	ID               string       `json:"id"`
	Code             string       `json:"code"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone"`
	Address          string       `json:"address"`
	City             string       `json:"city"`
	CustomerType     CustomerType `json:"customerType"`
	CreditLimitCents int64        `json:"creditLimitCents"`
	IsActive         bool         `json:"isActive"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

type CustomerInput struct {
	Code             string
	Name             string
	Email            string
	Phone            string
	Address          string
	City             string
	CustomerType     CustomerType
	CreditLimitCents int64
	IsActive         *bool
}

type ListFilter struct {
	paging.Filter
	City         string
	CustomerType CustomerType
	IsActive     *bool
}

// Values is the canonical form of f, used as the list cache key.
func (f ListFilter) Values() url.Values {
	v := f.Filter.Values()
	if f.City != "" {
		v.Set("city", f.City)
	}
	if f.CustomerType != "" {
		v.Set("customerType", string(f.CustomerType))
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	return v
}
