package customers

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5/pgconn"
)

type storeStub struct {
	createFn func(ctx context.Context, c *Customer) error
	getFn    func(ctx context.Context, id string) (*Customer, error)
	listFn   func(ctx context.Context, f ListFilter) (paging.Result[Customer], error)
	updateFn func(ctx context.Context, c *Customer) error
	deleteFn func(ctx context.Context, id string) error
}

func (s *storeStub) Create(ctx context.Context, c *Customer) error {
	if s.createFn != nil {
		return s.createFn(ctx, c)
	}
	return nil
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*Customer, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *storeStub) List(ctx context.Context, f ListFilter) (paging.Result[Customer], error) {
	if s.listFn != nil {
		return s.listFn(ctx, f)
	}
	return paging.NewResult[Customer](nil, 0, f.Filter), nil
}

func (s *storeStub) Update(ctx context.Context, c *Customer) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, c)
	}
	return nil
}

func (s *storeStub) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

// memCache mimics the generation-keyed page cache in memory.
type memCache struct {
	gen     int
	pages   map[string]paging.Result[Customer]
	fetches int
	hits    int
}

func (m *memCache) Fetch(ctx context.Context, v url.Values, load func(ctx context.Context) (paging.Result[Customer], error)) (paging.Result[Customer], error) {
	m.fetches++
	if m.pages == nil {
		m.pages = map[string]paging.Result[Customer]{}
	}
	key := string(rune('0'+m.gen)) + v.Encode()
	if res, ok := m.pages[key]; ok {
		m.hits++
		return res, nil
	}
	res, err := load(ctx)
	if err != nil {
		return res, err
	}
	m.pages[key] = res
	return res, nil
}

func (m *memCache) Invalidate(ctx context.Context) error {
	m.gen++
	return nil
}

func TestServiceCreateDefaults(t *testing.T) {
	store := &storeStub{}
	cache := &memCache{}
	svc := &Service{Store: store, Cache: cache, IDGenerator: func() string { return "cus_test" }}

	c, err := svc.Create(context.Background(), CustomerInput{Code: " c-001 ", Name: "City Pharmacy", Email: "Orders@City.PK"})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if c.ID != "cus_test" || c.Code != "C-001" || c.Email != "orders@city.pk" {
		t.Fatalf("unexpected customer: %+v", c)
	}
	if c.CustomerType != TypeRetail || !c.IsActive {
		t.Fatalf("unexpected defaults: type=%s active=%v", c.CustomerType, c.IsActive)
	}
	if cache.gen != 1 {
		t.Fatalf("create must invalidate list cache, gen=%d", cache.gen)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	tests := []CustomerInput{
		{Name: "No Code"},
		{Code: "C1", Name: "Bad Type", CustomerType: "vip"},
		{Code: "C1", Name: "Negative", CreditLimitCents: -1},
	}
	for _, in := range tests {
		_, err := svc.Create(context.Background(), in)
		assertKind(t, err, apperrors.KindInvalidInput)
	}
}

func TestServiceCreateDuplicateCode(t *testing.T) {
	store := &storeStub{createFn: func(ctx context.Context, c *Customer) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "customers_code_key"}
	}}
	svc := &Service{Store: store}

	_, err := svc.Create(context.Background(), CustomerInput{Code: "C1", Name: "Dup"})
	assertKind(t, err, apperrors.KindConflict)
}

func TestServiceListCachedUntilWrite(t *testing.T) {
	store := &storeStub{}
	cache := &memCache{}
	svc := &Service{Store: store, Cache: cache}

	loads := 0
	store.listFn = func(ctx context.Context, f ListFilter) (paging.Result[Customer], error) {
		loads++
		return paging.NewResult([]Customer{{ID: "cus_1"}}, 1, f.Filter), nil
	}

	f := ListFilter{City: "Lahore", Filter: paging.Filter{PageSize: 10}}
	first, err := svc.List(context.Background(), f)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	second, _ := svc.List(context.Background(), f)
	if loads != 1 || cache.hits != 1 {
		t.Fatalf("expected one load and one hit, loads=%d hits=%d", loads, cache.hits)
	}
	if first.TotalItems != second.TotalItems || len(first.Items) != len(second.Items) {
		t.Fatalf("cached page differs: %+v vs %+v", first, second)
	}

	if err := svc.Delete(context.Background(), "cus_1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := svc.List(context.Background(), f); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if loads != 2 {
		t.Fatalf("write must invalidate cached pages, loads=%d", loads)
	}
}

func TestServiceListInvalidType(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	_, err := svc.List(context.Background(), ListFilter{CustomerType: "vip"})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestServiceDeleteWithOrders(t *testing.T) {
	store := &storeStub{deleteFn: func(ctx context.Context, id string) error {
		return &pgconn.PgError{Code: "23503", ConstraintName: "sales_orders_customer_id_fkey"}
	}}
	svc := &Service{Store: store}

	err := svc.Delete(context.Background(), "cus_1")
	assertKind(t, err, apperrors.KindConflict)
}

func TestListFilterValues(t *testing.T) {
	active := false
	f := ListFilter{City: "Karachi", CustomerType: TypeHospital, IsActive: &active}
	got := f.Values().Encode()
	want := "city=Karachi&customerType=hospital&isActive=false&pageNumber=1&pageSize=20"
	if got != want {
		t.Fatalf("unexpected values:\n got %s\nwant %s", got, want)
	}
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error kind %s", kind)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got: %v", err)
	}
	if appErr.Kind != kind {
		t.Fatalf("unexpected kind: %s", appErr.Kind)
	}
}
