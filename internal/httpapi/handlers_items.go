package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/items"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/go-chi/chi/v5"
)

type ItemsService interface {
	Create(ctx context.Context, in items.ItemInput) (*items.Item, error)
	GetByID(ctx context.Context, id string) (*items.Item, error)
	List(ctx context.Context, f items.ListFilter) (paging.Result[items.Item], error)
	Update(ctx context.Context, id string, in items.ItemInput) (*items.Item, error)
	Delete(ctx context.Context, id string) error
}

type ItemsHandler struct {
	Service ItemsService
}

// List Item
// @Summary List items
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches code, name or generic name"
// @Param sortBy query string false "code | name | unitPrice | createdAt"
// @Param sortDescending query bool false "descending order"
// @Param dosageId query string false "dosage form id"
// @Param isActive query bool false "active flag"
// @Success 200 {object} paging.Result[items.Item]
// @Failure 400 {object} ErrorResponse
// @Router /items [get]
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page, err := paging.FromQuery(q)
	if err != nil {
		return err
	}
	active, err := queryBool(q, "isActive")
	if err != nil {
		return err
	}

	res, err := h.Service.List(r.Context(), items.ListFilter{
		Filter:   page,
		DosageID: strings.TrimSpace(q.Get("dosageId")),
		IsActive: active,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetByID Item
// @Summary Get item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Success 200 {object} items.Item
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [get]
func (h *ItemsHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	it, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, it)
	return nil
}

// Create Item
// @Summary Create item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ItemDTO true "item"
// @Success 201 {object} items.Item
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /items [post]
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req ItemDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	it, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, it)
	return nil
}

// Update Item
// @Summary Update item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Param body body ItemDTO true "item"
// @Success 200 {object} items.Item
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [put]
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req ItemDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	it, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, it)
	return nil
}

// Delete Item
// @Summary Delete item
// @Tags items
// @Security BearerAuth
// @Param id path string true "item id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *ItemDTO) input() items.ItemInput {
	return items.ItemInput{
		Code:           r.Code,
		Name:           r.Name,
		GenericName:    r.GenericName,
		DosageID:       r.DosageID,
		Strength:       r.Strength,
		UnitPriceCents: r.UnitPriceCents,
		ReorderLevel:   r.ReorderLevel,
		IsActive:       r.IsActive,
	}
}
