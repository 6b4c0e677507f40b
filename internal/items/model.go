package items

import (
	"net/url"
	"strconv"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

type Item struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	GenericName    string    `json:"genericName"`
	DosageID       string    `json:"dosageId,omitempty"`
	DosageName     string    `json:"dosageName,omitempty"`
	Strength       string    `json:"strength"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	ReorderLevel   int       `json:"reorderLevel"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ItemInput struct {
	Code           string
	Name           string
	GenericName    string
	DosageID       string
	Strength       string
	UnitPriceCents int64
	ReorderLevel   int
	IsActive       *bool
}

type ListFilter struct {
	paging.Filter
	DosageID string
	IsActive *bool
}

func (f ListFilter) Values() url.Values {
	v := f.Filter.Values()
	if f.DosageID != "" {
		v.Set("dosageId", f.DosageID)
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	return v
}
