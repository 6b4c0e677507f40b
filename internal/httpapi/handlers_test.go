package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/auth"
	"github.com/PabloPavan/pharmaerp_api/internal/customers"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/PabloPavan/pharmaerp_api/internal/salesorders"
	"github.com/go-chi/chi/v5"
)

type loginStub struct {
	input auth.LoginInput
}

func (s *loginStub) Login(ctx context.Context, input auth.LoginInput) (auth.LoginResult, error) {
	s.input = input
	if input.Password != "correct horse" {
		return auth.LoginResult{}, apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	}
	return auth.LoginResult{AccessToken: "tok", TokenType: auth.TokenType}, nil
}

func TestLoginHandler(t *testing.T) {
	svc := &loginStub{}
	h := handle((&AuthHandler{Service: svc}).Login)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"alice","password":"correct horse"}`))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input.ClientIP != "203.0.113.7" {
		t.Fatalf("unexpected client ip: %q", svc.input.ClientIP)
	}
	var res auth.LoginResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.AccessToken != "tok" || res.TokenType != "Bearer" {
		t.Fatalf("unexpected result: %+v", res)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginHandlerBadBody(t *testing.T) {
	h := handle((&AuthHandler{Service: &loginStub{}}).Login)

	for _, body := range []string{``, `{`, `{"username":" ","password":"x"}`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

type customersStub struct {
	CustomersService
	listFn func(ctx context.Context, f customers.ListFilter) (paging.Result[customers.Customer], error)
}

func (s *customersStub) List(ctx context.Context, f customers.ListFilter) (paging.Result[customers.Customer], error) {
	return s.listFn(ctx, f)
}

func TestCustomersListParsesQuery(t *testing.T) {
	var got customers.ListFilter
	svc := &customersStub{listFn: func(ctx context.Context, f customers.ListFilter) (paging.Result[customers.Customer], error) {
		got = f
		return paging.NewResult[customers.Customer](nil, 45, f.Filter), nil
	}}
	h := handle((&CustomersHandler{Service: svc}).List)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/v1/customers?pageNumber=3&pageSize=20&search=shifa&sortBy=city&sortOrder=desc&city=Multan&customerType=hospital&isActive=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.PageNumber != 3 || got.PageSize != 20 || got.Search != "shifa" || got.SortBy != "city" || !got.SortDescending {
		t.Fatalf("unexpected paging: %+v", got.Filter)
	}
	if got.City != "Multan" || got.CustomerType != customers.TypeHospital || got.IsActive == nil || !*got.IsActive {
		t.Fatalf("unexpected filter: %+v", got)
	}

	var res paging.Result[customers.Customer]
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 || res.TotalItems != 45 || res.TotalPages != 3 {
		t.Fatalf("unexpected page: %+v", res)
	}
}

func TestCustomersListBadQuery(t *testing.T) {
	h := handle((&CustomersHandler{Service: &customersStub{}}).List)

	for _, q := range []string{"pageNumber=0", "pageSize=abc", "isActive=maybe", "sortOrder=up"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/customers?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

type salesOrdersStub struct {
	SalesOrdersService
	created   salesorders.CreateOrderInput
	invoiceFn func(ctx context.Context, id string) ([]byte, string, error)
}

func (s *salesOrdersStub) Create(ctx context.Context, in salesorders.CreateOrderInput) (*salesorders.Order, error) {
	s.created = in
	return &salesorders.Order{ID: "so_1", Status: salesorders.StatusDraft, TotalCents: 1250}, nil
}

func (s *salesOrdersStub) Invoice(ctx context.Context, id string) ([]byte, string, error) {
	return s.invoiceFn(ctx, id)
}

func TestSalesOrderCreateHandler(t *testing.T) {
	svc := &salesOrdersStub{}
	h := handle((&SalesOrdersHandler{Service: svc}).Create)

	body, _ := json.Marshal(map[string]any{
		"customerId": "cus_1",
		"orderDate":  "2026-03-02",
		"lines":      []map[string]any{{"itemId": "itm_a", "quantity": 3}},
	})
	ctx := identity.WithPrincipal(context.Background(), identity.Principal{UserID: "usr_1", Roles: []string{identity.RoleSales}})
	req := httptest.NewRequest(http.MethodPost, "/v1/sales-orders", bytes.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Location") != "/v1/sales-orders/so_1" {
		t.Fatalf("unexpected location: %s", rec.Header().Get("Location"))
	}
	if !svc.created.OrderDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected order date: %v", svc.created.OrderDate)
	}
	if len(svc.created.Lines) != 1 || svc.created.Lines[0].Quantity != 3 {
		t.Fatalf("unexpected lines: %+v", svc.created.Lines)
	}
}

func TestSalesOrderCreateValidation(t *testing.T) {
	h := handle((&SalesOrdersHandler{Service: &salesOrdersStub{}}).Create)

	tests := []struct {
		body string
		want string
	}{
		{
			body: `{"lines":[{"itemId":"itm_a","quantity":1}]}`,
			want: "customerId is required",
		},
		{
			body: `{"customerId":"cus_1","lines":[]}`,
			want: "at least one line is required",
		},
		{
			body: `{"customerId":"cus_1","lines":[{"itemId":"itm_a","quantity":0}]}`,
			want: "quantity must be between 1 and 1000000",
		},
		{
			body: `{"customerId":"cus_1","orderDate":"02/03/2026","lines":[{"itemId":"itm_a","quantity":1}]}`,
			want: "orderDate must be YYYY-MM-DD",
		},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sales-orders", strings.NewReader(tt.body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tt.body, rec.Code)
		}
		if msg := decodeError(t, rec).Message; msg != tt.want {
			t.Fatalf("%s: unexpected message %q", tt.body, msg)
		}
	}
}

func TestSalesOrderInvoiceHandler(t *testing.T) {
	svc := &salesOrdersStub{invoiceFn: func(ctx context.Context, id string) ([]byte, string, error) {
		if id != "so_1" {
			return nil, "", apperrors.New(apperrors.KindNotFound, "sales order not found")
		}
		return []byte("%PDF-1.3 test"), "invoice-so-1.pdf", nil
	}}
	r := chi.NewRouter()
	r.Get("/v1/sales-orders/{id}/invoice.pdf", handle((&SalesOrdersHandler{Service: svc}).Invoice))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sales-orders/so_1/invoice.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type: %s", rec.Header().Get("Content-Type"))
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=invoice-so-1.pdf" {
		t.Fatalf("unexpected disposition: %s", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sales-orders/so_x/invoice.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

type pingStub struct{ err error }

func (p pingStub) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthHandler{DB: pingStub{}, Redis: pingStub{}}).Get(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	(&HealthHandler{DB: pingStub{}, Redis: pingStub{err: context.DeadlineExceeded}}).Get(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "degraded" || body.Redis != "down" || body.DB != "ok" {
		t.Fatalf("unexpected health: %+v", body)
	}
}
