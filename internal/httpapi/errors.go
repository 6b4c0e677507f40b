package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
	"github.com/go-chi/chi/v5/middleware"
	otelLog "go.opentelemetry.io/otel/log"
)

const (
	msgNotFound     = "The requested resource was not found."
	msgUnauthorized = "Unauthorized."
	msgForbidden    = "You do not have permission to access this resource."
	msgInternal     = "An unexpected error occurred."
)

type ErrorResponse struct {
	Status  string `json:"status" example:"Error"`
	Message string `json:"message"`
}

// handle adapts a handler that returns an error. Any error is written by
// writeAppError.
func handle(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeAppError(w, r, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.KindInternal, "", err)
	}

	status := statusFromKind(appErr.Kind)
	logAppError(r, status, appErr)

	if appErr.Kind == apperrors.KindRateLimited && appErr.RetryAfter > 0 {
		seconds := int(appErr.RetryAfter.Seconds())
		if seconds <= 0 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	writeJSON(w, status, ErrorResponse{Status: "Error", Message: errorMessage(appErr)})
}

func statusFromKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the text shown to the client. Internal failures and
// lookups never expose their own message.
func errorMessage(appErr *apperrors.Error) string {
	switch appErr.Kind {
	case apperrors.KindNotFound:
		return msgNotFound
	case apperrors.KindForbidden:
		return msgForbidden
	case apperrors.KindUnauthorized:
		if appErr.Message != "" {
			return appErr.Message
		}
		return msgUnauthorized
	case apperrors.KindInvalidInput:
		if appErr.Message != "" {
			return appErr.Message
		}
		return "invalid request"
	case apperrors.KindConflict:
		if appErr.Message != "" {
			return appErr.Message
		}
		return "conflict"
	case apperrors.KindRateLimited:
		if appErr.Message != "" {
			return appErr.Message
		}
		return "too many requests"
	default:
		return msgInternal
	}
}

func logAppError(r *http.Request, status int, appErr *apperrors.Error) {
	if r == nil {
		return
	}
	ctx := r.Context()
	attrs := []otelLog.KeyValue{
		telemetry.LogString("event", "http.error"),
		telemetry.LogString("error.kind", string(appErr.Kind)),
		telemetry.LogErr(appErr),
		telemetry.LogInt("http.status_code", status),
		telemetry.LogString("http.method", r.Method),
		telemetry.LogString("http.path", r.URL.Path),
	}
	if id := middleware.GetReqID(ctx); id != "" {
		attrs = append(attrs, telemetry.LogString("request.id", id))
	}
	if status >= http.StatusInternalServerError {
		telemetry.LogError(ctx, "request failed", attrs...)
		return
	}
	telemetry.LogWarn(ctx, "request rejected", attrs...)
}

// Recoverer turns a panic anywhere below it into a 500 error envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			telemetry.LogError(r.Context(), "panic recovered",
				telemetry.LogString("event", "http.panic"),
				telemetry.LogString("panic", fmt.Sprint(rec)),
				telemetry.LogString("stack", string(debug.Stack())),
				telemetry.LogString("http.method", r.Method),
				telemetry.LogString("http.path", r.URL.Path),
			)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Status: "Error", Message: msgInternal})
		}()
		next.ServeHTTP(w, r)
	})
}
