package items

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
	createFn func(ctx context.Context, it *Item) error
	listFn   func(ctx context.Context, f ListFilter) (paging.Result[Item], error)
	updateFn func(ctx context.Context, it *Item) error
	deleteFn func(ctx context.Context, id string) error
}

func (s *storeStub) Create(ctx context.Context, it *Item) error {
	if s.createFn != nil {
		return s.createFn(ctx, it)
	}
	return nil
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*Item, error) {
	return nil, ErrNotFound
}

func (s *storeStub) List(ctx context.Context, f ListFilter) (paging.Result[Item], error) {
	if s.listFn != nil {
		return s.listFn(ctx, f)
	}
	return paging.NewResult[Item](nil, 0, f.Filter), nil
}

func (s *storeStub) Update(ctx context.Context, it *Item) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, it)
	}
	return nil
}

func (s *storeStub) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type cacheStub struct {
	invalidations int
	keys          []string
}

func (c *cacheStub) Fetch(ctx context.Context, v url.Values, load func(ctx context.Context) (paging.Result[Item], error)) (paging.Result[Item], error) {
	c.keys = append(c.keys, v.Encode())
	return load(ctx)
}

func (c *cacheStub) Invalidate(ctx context.Context) error {
	c.invalidations++
	return errors.New("redis down")
}

func TestServiceCreate(t *testing.T) {
	cache := &cacheStub{}
	svc := &Service{Store: &storeStub{}, Cache: cache, IDGenerator: func() string { return "itm_test" }}

	it, err := svc.Create(context.Background(), ItemInput{
		Code:           "pcm-500",
		Name:           "Paracetamol 500",
		DosageID:       " dos_tab ",
		UnitPriceCents: 1250,
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if it.ID != "itm_test" || it.Code != "PCM-500" || it.DosageID != "dos_tab" || !it.IsActive {
		t.Fatalf("unexpected item: %+v", it)
	}
	if cache.invalidations != 1 {
		t.Fatalf("expected cache invalidation, got %d", cache.invalidations)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	tests := []ItemInput{
		{Name: "No code"},
		{Code: "X", Name: "Negative price", UnitPriceCents: -5},
		{Code: "X", Name: "Negative reorder", ReorderLevel: -1},
	}
	for _, in := range tests {
		_, err := svc.Create(context.Background(), in)
		assertKind(t, err, apperrors.KindInvalidInput)
	}
}

func TestServiceCreateUnknownDosage(t *testing.T) {
	store := &storeStub{createFn: func(ctx context.Context, it *Item) error {
		return &pgconn.PgError{Code: "23503", ConstraintName: "items_dosage_id_fkey"}
	}}
	svc := &Service{Store: store}

	_, err := svc.Create(context.Background(), ItemInput{Code: "X", Name: "Item", DosageID: "dos_missing"})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestServiceUpdateDuplicateCode(t *testing.T) {
	store := &storeStub{updateFn: func(ctx context.Context, it *Item) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "items_code_key"}
	}}
	svc := &Service{Store: store}

	_, err := svc.Update(context.Background(), "itm_1", ItemInput{Code: "X", Name: "Item"})
	assertKind(t, err, apperrors.KindConflict)
}

func TestServiceListUsesCanonicalKey(t *testing.T) {
	cache := &cacheStub{}
	svc := &Service{Store: &storeStub{}, Cache: cache}

	active := true
	res, err := svc.List(context.Background(), ListFilter{DosageID: "dos_tab", IsActive: &active, Filter: paging.Filter{PageSize: 500}})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if res.Items == nil {
		t.Fatal("items must not be nil")
	}
	want := "dosageId=dos_tab&isActive=true&pageNumber=1&pageSize=100"
	if len(cache.keys) != 1 || cache.keys[0] != want {
		t.Fatalf("unexpected cache keys: %v", cache.keys)
	}
}

func TestServiceDeleteNotFound(t *testing.T) {
	store := &storeStub{deleteFn: func(ctx context.Context, id string) error {
		return ErrNotFound
	}}
	svc := &Service{Store: store}

	err := svc.Delete(context.Background(), "itm_missing")
	assertKind(t, err, apperrors.KindNotFound)
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
