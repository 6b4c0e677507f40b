package httpapi

import (
	"context"
	"net/http"

	"github.com/PabloPavan/pharmaerp_api/internal/dosages"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/go-chi/chi/v5"
)

type DosagesService interface {
	Create(ctx context.Context, in dosages.DosageInput) (*dosages.Dosage, error)
	GetByID(ctx context.Context, id string) (*dosages.Dosage, error)
	List(ctx context.Context, f paging.Filter) (paging.Result[dosages.Dosage], error)
	Update(ctx context.Context, id string, in dosages.DosageInput) (*dosages.Dosage, error)
	Delete(ctx context.Context, id string) error
}

type DosagesHandler struct {
	Service DosagesService
}

// List Dosage
// @Summary List dosage forms
// @Tags dosages
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches code or name"
// @Param sortBy query string false "code | name | createdAt"
// @Param sortDescending query bool false "descending order"
// @Success 200 {object} paging.Result[dosages.Dosage]
// @Failure 400 {object} ErrorResponse
// @Router /dosages [get]
func (h *DosagesHandler) List(w http.ResponseWriter, r *http.Request) error {
	page, err := paging.FromQuery(r.URL.Query())
	if err != nil {
		return err
	}
	res, err := h.Service.List(r.Context(), page)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetByID Dosage
// @Summary Get dosage form
// @Tags dosages
// @Produce json
// @Security BearerAuth
// @Param id path string true "dosage id"
// @Success 200 {object} dosages.Dosage
// @Failure 404 {object} ErrorResponse
// @Router /dosages/{id} [get]
func (h *DosagesHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	d, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// Create Dosage
// @Summary Create dosage form (admin)
// @Tags dosages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DosageDTO true "dosage"
// @Success 201 {object} dosages.Dosage
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /dosages [post]
func (h *DosagesHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req DosageDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	d, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, d)
	return nil
}

// Update Dosage
// @Summary Update dosage form (admin)
// @Tags dosages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "dosage id"
// @Param body body DosageDTO true "dosage"
// @Success 200 {object} dosages.Dosage
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /dosages/{id} [put]
func (h *DosagesHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var req DosageDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	d, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// Delete Dosage
// @Summary Delete dosage form (admin)
// @Tags dosages
// @Security BearerAuth
// @Param id path string true "dosage id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /dosages/{id} [delete]
func (h *DosagesHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *DosageDTO) input() dosages.DosageInput {
	return dosages.DosageInput{Code: r.Code, Name: r.Name, Description: r.Description}
}
