package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/policy"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
)

type Authenticator interface {
	Authenticate(raw string) (identity.Principal, error)
}

type AuthOptions struct {
	Policy policy.Policy
	// LoginURL and UnauthorizedURL enable redirects for browsers asking for
	// HTML. Empty means always answer with the JSON envelope.
	LoginURL        string
	UnauthorizedURL string
}

// AuthMiddleware authenticates the bearer token and applies the route policy.
// A bad or missing token is 401; a valid token without a permitted role is 403.
func AuthMiddleware(authenticator Authenticator, opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				writeAppError(w, r, apperrors.New(apperrors.KindInternal, "auth not configured"))
				return
			}

			raw := bearerToken(r)
			if raw == "" {
				telemetry.RecordAuthDecision(r.Context(), "missing_token")
				deny(w, r, opts.LoginURL, apperrors.New(apperrors.KindUnauthorized, msgUnauthorized))
				return
			}

			principal, err := authenticator.Authenticate(raw)
			if err != nil {
				if apperrors.Is(err, apperrors.KindUnauthorized) {
					telemetry.RecordAuthDecision(r.Context(), "invalid_token")
					deny(w, r, opts.LoginURL, err)
					return
				}
				writeAppError(w, r, err)
				return
			}

			if opts.Policy.Evaluate(r.Method, r.URL.Path, principal.Roles) == policy.Deny {
				telemetry.RecordAuthDecision(r.Context(), "forbidden")
				deny(w, r, opts.UnauthorizedURL, apperrors.New(apperrors.KindForbidden, "forbidden"))
				return
			}

			telemetry.RecordAuthDecision(r.Context(), "allowed")
			ctx := identity.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, redirectURL string, err error) {
	if redirectURL != "" && wantsHTML(r) {
		http.Redirect(w, r, withReturnURL(redirectURL, r.URL.RequestURI()), http.StatusFound)
		return
	}
	writeAppError(w, r, err)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "text/html")
}

func withReturnURL(target, returnURL string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("returnUrl", returnURL)
	u.RawQuery = q.Encode()
	return u.String()
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	parts := strings.Fields(auth)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
