package httpapi

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/PabloPavan/pharmaerp_api/internal/salesorders"
	"github.com/go-chi/chi/v5"
)

type SalesOrdersService interface {
	Create(ctx context.Context, in salesorders.CreateOrderInput) (*salesorders.Order, error)
	GetByID(ctx context.Context, id string) (*salesorders.Order, error)
	List(ctx context.Context, f salesorders.ListFilter) (paging.Result[salesorders.Order], error)
	Transition(ctx context.Context, id string, to salesorders.Status) (*salesorders.Order, error)
	Invoice(ctx context.Context, id string) ([]byte, string, error)
}

type SalesOrdersHandler struct {
	Service SalesOrdersService
}

// List SalesOrder
// @Summary List sales orders
// @Tags sales-orders
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches order number or customer name"
// @Param sortBy query string false "orderDate | orderNumber | total | createdAt"
// @Param sortDescending query bool false "descending order"
// @Param customerId query string false "customer id"
// @Param status query string false "draft | confirmed | shipped | cancelled"
// @Param dateFrom query string false "first order date (YYYY-MM-DD)"
// @Param dateTo query string false "last order date (YYYY-MM-DD)"
// @Success 200 {object} paging.Result[salesorders.Order]
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /sales-orders [get]
func (h *SalesOrdersHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page, err := paging.FromQuery(q)
	if err != nil {
		return err
	}
	from, err := queryDate(q, "dateFrom")
	if err != nil {
		return err
	}
	to, err := queryDate(q, "dateTo")
	if err != nil {
		return err
	}

	res, err := h.Service.List(r.Context(), salesorders.ListFilter{
		Filter:     page,
		CustomerID: strings.TrimSpace(q.Get("customerId")),
		Status:     salesorders.Status(strings.TrimSpace(q.Get("status"))),
		DateFrom:   from,
		DateTo:     to,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetByID SalesOrder
// @Summary Get sales order with lines
// @Tags sales-orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {object} salesorders.Order
// @Failure 404 {object} ErrorResponse
// @Router /sales-orders/{id} [get]
func (h *SalesOrdersHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	o, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, o)
	return nil
}

// Create SalesOrder
// @Summary Create sales order
// @Description Lines are priced from current item prices; the order starts as draft.
// @Tags sales-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SalesOrderCreateDTO true "order"
// @Success 201 {object} salesorders.Order
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sales-orders [post]
func (h *SalesOrdersHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req SalesOrderCreateDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	in := salesorders.CreateOrderInput{
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
		Lines:      make([]salesorders.LineInput, 0, len(req.Lines)),
	}
	if req.OrderDate != "" {
		// validated by the DTO
		in.OrderDate, _ = time.Parse("2006-01-02", req.OrderDate)
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, salesorders.LineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	o, err := h.Service.Create(r.Context(), in)
	if err != nil {
		return err
	}
	w.Header().Set("Location", "/v1/sales-orders/"+o.ID)
	writeJSON(w, http.StatusCreated, o)
	return nil
}

// UpdateStatus SalesOrder
// @Summary Change sales order status
// @Description draft -> confirmed -> shipped; draft or confirmed -> cancelled.
// @Tags sales-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Param body body SalesOrderStatusDTO true "new status"
// @Success 200 {object} salesorders.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sales-orders/{id}/status [patch]
func (h *SalesOrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) error {
	var req SalesOrderStatusDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	o, err := h.Service.Transition(r.Context(), chi.URLParam(r, "id"), salesorders.Status(req.Status))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, o)
	return nil
}

// Invoice SalesOrder
// @Summary Download invoice PDF
// @Description Draft orders render as a proforma invoice.
// @Tags sales-orders
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sales-orders/{id}/invoice.pdf [get]
func (h *SalesOrdersHandler) Invoice(w http.ResponseWriter, r *http.Request) error {
	pdf, filename, err := h.Service.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
	return nil
}
