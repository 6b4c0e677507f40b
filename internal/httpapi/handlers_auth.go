package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/auth"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
)

type LoginService interface {
	Login(ctx context.Context, input auth.LoginInput) (auth.LoginResult, error)
}

type AuthHandler struct {
	Service LoginService
}

// Login Auth
// @Summary Login
// @Description Exchanges credentials for a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginDTO true "credentials"
// @Success 200 {object} auth.LoginResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	if h.Service == nil {
		return apperrors.New(apperrors.KindInternal, "auth not configured")
	}

	var req LoginDTO
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	res, err := h.Service.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientIP: clientIP(r),
	})
	if err != nil {
		return err
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, res)
	return nil
}

// Me Auth
// @Summary Current principal
// @Description Returns the identity carried by the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} identity.Principal
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	p, ok := identity.FromContext(r.Context())
	if !ok {
		return apperrors.New(apperrors.KindUnauthorized, msgUnauthorized)
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// clientIP expects middleware.RealIP to have normalized RemoteAddr.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
