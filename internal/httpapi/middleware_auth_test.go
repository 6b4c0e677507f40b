package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/auth"
	"github.com/PabloPavan/pharmaerp_api/internal/dashboard"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/policy"
	"github.com/PabloPavan/pharmaerp_api/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type dashboardStub struct {
	calls int
}

func (d *dashboardStub) Summary(ctx context.Context) (dashboard.Summary, error) {
	d.calls++
	return dashboard.Summary{Customers: 3, Month: "2026-03"}, nil
}

func newTokenManager(now time.Time) *token.Manager {
	return &token.Manager{
		Secret:   []byte(testSecret),
		Issuer:   "pharmaerp-api",
		Audience: "pharmaerp-web",
		TTL:      time.Hour,
		Now:      func() time.Time { return now },
	}
}

func issue(t *testing.T, m *token.Manager, roles ...string) string {
	t.Helper()
	raw, _, err := m.Issue(identity.Principal{UserID: "usr_1", Username: "alice", Roles: roles})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

func newGateRouter(dash *dashboardStub, opts AuthOptions) http.Handler {
	if opts.Policy.Rules == nil {
		opts.Policy = policy.Default()
	}
	return NewRouter(&App{
		ServiceName:   "pharmaerp-api-test",
		Auth:          &AuthHandler{},
		Dashboard:     &DashboardHandler{Service: dash},
		Authenticator: &auth.Service{Tokens: newTokenManager(time.Now())},
		AuthOptions:   opts,
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestGateMissingToken(t *testing.T) {
	dash := &dashboardStub{}
	rec := httptest.NewRecorder()
	newGateRouter(dash, AuthOptions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Status != "Error" || body.Message == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if dash.calls != 0 {
		t.Fatal("handler must not run without a token")
	}
}

func TestGateExpiredTokenIsUnauthorized(t *testing.T) {
	dash := &dashboardStub{}
	expired := issue(t, newTokenManager(time.Now().Add(-2*time.Hour)), identity.RoleSales)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	newGateRouter(dash, AuthOptions{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token must be 401 even for a role-restricted route, got %d", rec.Code)
	}
	if dash.calls != 0 {
		t.Fatal("handler must not run with an expired token")
	}
}

func TestGateRoleDenied(t *testing.T) {
	dash := &dashboardStub{}
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, newTokenManager(time.Now()), identity.RoleSales))
	rec := httptest.NewRecorder()
	newGateRouter(dash, AuthOptions{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != msgForbidden {
		t.Fatalf("unexpected message: %q", body.Message)
	}
	if dash.calls != 0 {
		t.Fatal("handler must not run when the role is denied")
	}
}

func TestGateAllowed(t *testing.T) {
	dash := &dashboardStub{}
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "bearer "+issue(t, newTokenManager(time.Now()), "MANAGER"))
	rec := httptest.NewRecorder()
	newGateRouter(dash, AuthOptions{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sum dashboard.Summary
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Customers != 3 || dash.calls != 1 {
		t.Fatalf("unexpected summary: %+v calls=%d", sum, dash.calls)
	}
}

func TestGateAttachesPrincipal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, newTokenManager(time.Now()), identity.RoleViewer))
	newGateRouter(&dashboardStub{}, AuthOptions{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p identity.Principal
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.UserID != "usr_1" || p.Username != "alice" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestGateHTMLRedirects(t *testing.T) {
	opts := AuthOptions{LoginURL: "https://erp.example.com/login", UnauthorizedURL: "https://erp.example.com/unauthorized"}
	router := newGateRouter(&dashboardStub{}, opts)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard?tab=1", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Path != "/login" || loc.Query().Get("returnUrl") != "/v1/dashboard?tab=1" {
		t.Fatalf("unexpected location: %s", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Authorization", "Bearer "+issue(t, newTokenManager(time.Now()), identity.RoleViewer))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), opts.UnauthorizedURL) {
		t.Fatalf("expected redirect to unauthorized page, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGateJSONClientsGetEnvelopeEvenWithRedirects(t *testing.T) {
	opts := AuthOptions{LoginURL: "/login"}
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	newGateRouter(&dashboardStub{}, opts).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer   abc  ": "abc",
		"Basic dXNlcjpw": "",
		"Bearer":         "",
		"Bearer a b":     "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := bearerToken(req); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
