package policy

import (
	"net/http"
	"testing"
)

func TestEvaluateDefault(t *testing.T) {
	p := Default()

	cases := []struct {
		name   string
		method string
		path   string
		roles  []string
		want   Decision
	}{
		{"unrestricted route", http.MethodGet, "/v1/auth/me", []string{"viewer"}, Open},
		{"catalog read is open", http.MethodGet, "/v1/items", []string{"viewer"}, Open},
		{"catalog write denied", http.MethodPost, "/v1/items", []string{"sales"}, Deny},
		{"catalog write allowed", http.MethodPut, "/v1/items/itm_1", []string{"inventory"}, Allow},
		{"users list needs admin", http.MethodGet, "/v1/users", []string{"manager"}, Deny},
		{"users by id needs admin", http.MethodDelete, "/v1/users/usr_2", []string{"sales"}, Deny},
		{"admin on users", http.MethodGet, "/v1/users", []string{"ADMIN"}, Allow},
		{"self endpoint open to everyone", http.MethodPut, "/v1/users/me", []string{"viewer"}, Allow},
		{"dashboard manager", http.MethodGet, "/v1/dashboard", []string{"manager"}, Allow},
		{"dashboard sales", http.MethodGet, "/v1/dashboard", []string{"sales"}, Deny},
		{"orders nested path", http.MethodGet, "/v1/sales-orders/so_1/invoice.pdf", []string{"sales"}, Allow},
		{"orders no roles", http.MethodGet, "/v1/sales-orders", nil, Deny},
		{"trailing slash", http.MethodGet, "/v1/customers/", []string{"viewer"}, Deny},
		{"dosage read open", http.MethodGet, "/v1/dosages/dos_1", nil, Open},
		{"dosage delete admin only", http.MethodDelete, "/v1/dosages/dos_1", []string{"inventory"}, Deny},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Evaluate(tc.method, tc.path, tc.roles); got != tc.want {
				t.Fatalf("Evaluate(%s %s, %v) = %s, want %s", tc.method, tc.path, tc.roles, got, tc.want)
			}
		})
	}
}

func TestEvaluateSpecificity(t *testing.T) {
	p := New(
		Rule{Pattern: "/v1/reports/**", Roles: []string{"manager"}},
		Rule{Pattern: "/v1/reports/*/public"},
		Rule{Methods: []string{http.MethodGet}, Pattern: "/v1/reports/**", Roles: []string{"viewer"}},
	)

	if got := p.Evaluate(http.MethodGet, "/v1/reports/42", []string{"viewer"}); got != Allow {
		t.Fatalf("method-scoped rule should win on equal literals, got %s", got)
	}
	if got := p.Evaluate(http.MethodPost, "/v1/reports/42", []string{"viewer"}); got != Deny {
		t.Fatalf("any-method rule should apply to POST, got %s", got)
	}
	if got := p.Evaluate(http.MethodPost, "/v1/reports/42/public", nil); got != Allow {
		t.Fatalf("more literal segments should win, got %s", got)
	}
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{"/a/**", "/a", true},
		{"/a/**", "/a/b/c", true},
		{"/a/*", "/a", false},
		{"/a/*", "/a/b", true},
		{"/a/*", "/a/b/c", false},
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/c", false},
	}
	for _, tc := range cases {
		_, ok := matchPattern(splitPath(tc.pattern), splitPath(tc.path))
		if ok != tc.ok {
			t.Fatalf("matchPattern(%q, %q) = %v, want %v", tc.pattern, tc.path, ok, tc.ok)
		}
	}
}
