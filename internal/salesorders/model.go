package salesorders

import (
	"net/url"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

const dateLayout = "2006-01-02"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusShipped, StatusCancelled:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
}

// CanTransition reports whether an order in from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string    `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	CustomerID      string    `json:"customerId"`
	CustomerCode    string    `json:"customerCode,omitempty"`
	CustomerName    string    `json:"customerName,omitempty"`
	CustomerAddress string    `json:"customerAddress,omitempty"`
	CustomerCity    string    `json:"customerCity,omitempty"`
	Status          Status    `json:"status"`
	OrderDate       time.Time `json:"orderDate"`
	Notes           string    `json:"notes"`
	TotalCents      int64     `json:"totalCents"`
	CreatedBy       string    `json:"createdBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Lines           []Line    `json:"lines,omitempty"`
}

type Line struct {
	LineNo         int    `json:"lineNo"`
	ItemID         string `json:"itemId"`
	ItemCode       string `json:"itemCode"`
	ItemName       string `json:"itemName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

type LineInput struct {
	ItemID   string
	Quantity int
}

type CreateOrderInput struct {
	CustomerID string
	OrderDate  time.Time
	Notes      string
	Lines      []LineInput
}

type ListFilter struct {
	paging.Filter
	CustomerID string
	Status     Status
	DateFrom   *time.Time
	DateTo     *time.Time
}

func (f ListFilter) Values() url.Values {
	v := f.Filter.Values()
	if f.CustomerID != "" {
		v.Set("customerId", f.CustomerID)
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.DateFrom != nil {
		v.Set("dateFrom", f.DateFrom.Format(dateLayout))
	}
	if f.DateTo != nil {
		v.Set("dateTo", f.DateTo.Format(dateLayout))
	}
	return v
}

// ItemPrice is the current catalogue data an order line is priced from.
type ItemPrice struct {
	ID             string
	Code           string
	Name           string
	UnitPriceCents int64
	IsActive       bool
}
