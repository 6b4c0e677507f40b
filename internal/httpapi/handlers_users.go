package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/PabloPavan/pharmaerp_api/internal/users"
	"github.com/go-chi/chi/v5"
)

type UsersService interface {
	Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
	GetByID(ctx context.Context, userID string) (*users.User, error)
	Me(ctx context.Context) (*users.User, error)
	List(ctx context.Context, f users.ListFilter) (paging.Result[users.User], error)
	UpdateSelf(ctx context.Context, input users.UpdateUserInput) (*users.User, error)
	UpdateByID(ctx context.Context, targetID string, input users.UpdateUserInput) (*users.User, error)
	DeleteByID(ctx context.Context, targetID string) error
}

type UsersHandler struct {
	Service UsersService
}

// Create User
// @Summary Create user (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UserCreateDTO true "user"
// @Success 201 {object} users.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [post]
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req UserCreateDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	u, err := h.Service.Create(r.Context(), users.CreateUserRequest{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Roles:        req.Roles,
		DepartmentID: req.DepartmentID,
		Designation:  req.Designation,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, u)
	return nil
}

// List Users
// @Summary List users (admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "page number (1-based)"
// @Param pageSize query int false "page size (max 100)"
// @Param search query string false "matches username, full name or email"
// @Param sortBy query string false "username | fullName | createdAt"
// @Param sortDescending query bool false "descending order"
// @Param role query string false "role"
// @Param departmentId query string false "department id"
// @Param isActive query bool false "active flag"
// @Success 200 {object} paging.Result[users.User]
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [get]
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page, err := paging.FromQuery(q)
	if err != nil {
		return err
	}
	active, err := queryBool(q, "isActive")
	if err != nil {
		return err
	}

	res, err := h.Service.List(r.Context(), users.ListFilter{
		Filter:       page,
		Role:         strings.TrimSpace(q.Get("role")),
		DepartmentID: strings.TrimSpace(q.Get("departmentId")),
		IsActive:     active,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, res)
	return nil
}

// GetByID User
// @Summary Get user (admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 200 {object} users.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UsersHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	u, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, u)
	return nil
}

// Me User
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/me [get]
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) error {
	u, err := h.Service.Me(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, u)
	return nil
}

// UpdateMe User
// @Summary Update current user
// @Description Non-admins may change email, password, full name and designation.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UserUpdateDTO true "fields to change"
// @Success 200 {object} users.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/me [put]
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) error {
	var req UserUpdateDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	u, err := h.Service.UpdateSelf(r.Context(), req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, u)
	return nil
}

// Update User
// @Summary Update user (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param body body UserUpdateDTO true "fields to change"
// @Success 200 {object} users.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}

	var req UserUpdateDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	u, err := h.Service.UpdateByID(r.Context(), id, req.input())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, u)
	return nil
}

// Delete User
// @Summary Delete user (admin)
// @Tags users
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.Service.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *UserUpdateDTO) input() users.UpdateUserInput {
	return users.UpdateUserInput{
		Email:        r.Email,
		Password:     r.Password,
		FullName:     r.FullName,
		Designation:  r.Designation,
		DepartmentID: r.DepartmentID,
		Roles:        r.Roles,
		IsActive:     r.IsActive,
	}
}
