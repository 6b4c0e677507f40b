package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/departments"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/go-chi/chi/v5"
)

type DepartmentsService interface {
	CreateDepartment(ctx context.Context, in departments.DepartmentInput) (*departments.Department, error)
	GetDepartment(ctx context.Context, id string) (*departments.Department, error)
	ListDepartments(ctx context.Context, f paging.Filter) (paging.Result[departments.Department], error)
	UpdateDepartment(ctx context.Context, id string, in departments.DepartmentInput) (*departments.Department, error)
	DeleteDepartment(ctx context.Context, id string) error

	CreateDivision(ctx context.Context, in departments.DivisionInput) (*departments.Division, error)
	GetDivision(ctx context.Context, id string) (*departments.Division, error)
	ListDivisions(ctx context.Context, f departments.DivisionFilter) (paging.Result[departments.Division], error)
	UpdateDivision(ctx context.Context, id string, in departments.DivisionInput) (*departments.Division, error)
	DeleteDivision(ctx context.Context, id string) error
}

type DepartmentsHandler struct {
	Service DepartmentsService
}

// ListDepartments Department
// @Summary List departments
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches code or name"
// @Param sortBy query string false "code | name | createdAt"
// @Param sortDescending query bool false "descending order"
// @Success 200 {object} paging.Result[departments.Department]
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /departments [get]
func (h *DepartmentsHandler) ListDepartments(w http.ResponseWriter, r *http.Request) error {
	page, err := paging.FromQuery(r.URL.Query())
	if err != nil {
		return err
	}
	res, err := h.Service.ListDepartments(r.Context(), page)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetDepartment Department
// @Summary Get department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "department id"
// @Success 200 {object} departments.Department
// @Failure 404 {object} ErrorResponse
// @Router /departments/{id} [get]
func (h *DepartmentsHandler) GetDepartment(w http.ResponseWriter, r *http.Request) error {
	d, err := h.Service.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// CreateDepartment Department
// @Summary Create department (admin)
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DepartmentDTO true "department"
// @Success 201 {object} departments.Department
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /departments [post]
func (h *DepartmentsHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) error {
	var req DepartmentDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	d, err := h.Service.CreateDepartment(r.Context(), departments.DepartmentInput{Code: req.Code, Name: req.Name})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, d)
	return nil
}

// UpdateDepartment Department
// @Summary Update department (admin)
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "department id"
// @Param body body DepartmentDTO true "department"
// @Success 200 {object} departments.Department
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /departments/{id} [put]
func (h *DepartmentsHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) error {
	var req DepartmentDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	d, err := h.Service.UpdateDepartment(r.Context(), chi.URLParam(r, "id"), departments.DepartmentInput{Code: req.Code, Name: req.Name})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// DeleteDepartment Department
// @Summary Delete department (admin)
// @Tags departments
// @Security BearerAuth
// @Param id path string true "department id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /departments/{id} [delete]
func (h *DepartmentsHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) error {
	if err := h.Service.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ListDivisions Division
// @Summary List divisions
// @Tags divisions
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches code or name"
// @Param sortBy query string false "code | name | createdAt"
// @Param sortDescending query bool false "descending order"
// @Param departmentId query string false "department id"
// @Success 200 {object} paging.Result[departments.Division]
// @Failure 400 {object} ErrorResponse
// @Router /divisions [get]
func (h *DepartmentsHandler) ListDivisions(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page, err := paging.FromQuery(q)
	if err != nil {
		return err
	}
	res, err := h.Service.ListDivisions(r.Context(), departments.DivisionFilter{
		Filter:       page,
		DepartmentID: strings.TrimSpace(q.Get("departmentId")),
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetDivision Division
// @Summary Get division
// @Tags divisions
// @Produce json
// @Security BearerAuth
// @Param id path string true "division id"
// @Success 200 {object} departments.Division
// @Failure 404 {object} ErrorResponse
// @Router /divisions/{id} [get]
func (h *DepartmentsHandler) GetDivision(w http.ResponseWriter, r *http.Request) error {
	d, err := h.Service.GetDivision(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// CreateDivision Division
// @Summary Create division (admin)
// @Tags divisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DivisionDTO true "division"
// @Success 201 {object} departments.Division
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /divisions [post]
func (h *DepartmentsHandler) CreateDivision(w http.ResponseWriter, r *http.Request) error {
	var req DivisionDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	d, err := h.Service.CreateDivision(r.Context(), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, d)
	return nil
}

// UpdateDivision Division
// @Summary Update division (admin)
// @Tags divisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "division id"
// @Param body body DivisionDTO true "division"
// @Success 200 {object} departments.Division
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /divisions/{id} [put]
func (h *DepartmentsHandler) UpdateDivision(w http.ResponseWriter, r *http.Request) error {
	var req DivisionDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	d, err := h.Service.UpdateDivision(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// DeleteDivision Division
// @Summary Delete division (admin)
// @Tags divisions
// @Security BearerAuth
// @Param id path string true "division id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /divisions/{id} [delete]
func (h *DepartmentsHandler) DeleteDivision(w http.ResponseWriter, r *http.Request) error {
	if err := h.Service.DeleteDivision(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *DivisionDTO) input() departments.DivisionInput {
	return departments.DivisionInput{DepartmentID: r.DepartmentID, Code: r.Code, Name: r.Name}
}
