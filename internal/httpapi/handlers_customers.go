package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/customers"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/go-chi/chi/v5"
)

type CustomersService interface {
	Create(ctx context.Context, in customers.CustomerInput) (*customers.Customer, error)
	GetByID(ctx context.Context, id string) (*customers.Customer, error)
	List(ctx context.Context, f customers.ListFilter) (paging.Result[customers.Customer], error)
	Update(ctx context.Context, id string, in customers.CustomerInput) (*customers.Customer, error)
	Delete(ctx context.Context, id string) error
}

type CustomersHandler struct {
	Service CustomersService
}

// List Customer
// @Summary List customers
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches code, name, email or phone"
// @Param sortBy query string false "code | name | city | createdAt"
// @Param sortDescending query bool false "descending order"
// @Param city query string false "city (case-insensitive exact match)"
// @Param customerType query string false "retail | wholesale | hospital | distributor"
// @Param isActive query bool false "active flag"
// @Success 200 {object} paging.Result[customers.Customer]
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /customers [get]
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page, err := paging.FromQuery(q)
	if err != nil {
		return err
	}
	active, err := queryBool(q, "isActive")
	if err != nil {
		return err
	}

	res, err := h.Service.List(r.Context(), customers.ListFilter{
		Filter:       page,
		City:         strings.TrimSpace(q.Get("city")),
		CustomerType: customers.CustomerType(strings.TrimSpace(q.Get("customerType"))),
		IsActive:     active,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetByID Customer
// @Summary Get customer
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "customer id"
// @Success 200 {object} customers.Customer
// @Failure 404 {object} ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomersHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	c, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

// Create Customer
// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CustomerDTO true "customer"
// @Success 201 {object} customers.Customer
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /customers [post]
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req CustomerDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	c, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, c)
	return nil
}

// Update Customer
// @Summary Update customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "customer id"
// @Param body body CustomerDTO true "customer"
// @Success 200 {object} customers.Customer
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /customers/{id} [put]
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req CustomerDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	c, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

// Delete Customer
// @Summary Delete customer
// @Tags customers
// @Security BearerAuth
// @Param id path string true "customer id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /customers/{id} [delete]
func (h *CustomersHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *CustomerDTO) input() customers.CustomerInput {
	return customers.CustomerInput{
		Code:             r.Code,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		City:             r.City,
		CustomerType:     customers.CustomerType(r.CustomerType),
		CreditLimitCents: r.CreditLimitCents,
		IsActive:         r.IsActive,
	}
}
