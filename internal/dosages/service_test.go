package dosages

import (
	"context"
	"errors"
	"testing"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5/pgconn"
)

type storeStub struct {
	createFn func(ctx context.Context, d *Dosage) error
	getFn    func(ctx context.Context, id string) (*Dosage, error)
	updateFn func(ctx context.Context, d *Dosage) error
	deleteFn func(ctx context.Context, id string) error
}

func (s *storeStub) Create(ctx context.Context, d *Dosage) error {
	if s.createFn != nil {
		return s.createFn(ctx, d)
	}
	return nil
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*Dosage, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *storeStub) List(ctx context.Context, f paging.Filter) (paging.Result[Dosage], error) {
	return paging.NewResult[Dosage](nil, 0, f), nil
}

func (s *storeStub) Update(ctx context.Context, d *Dosage) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, d)
	}
	return nil
}

func (s *storeStub) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func TestServiceCreate(t *testing.T) {
	store := &storeStub{}
	svc := &Service{Store: store, IDGenerator: func() string { return "dos_test" }}

	d, err := svc.Create(context.Background(), DosageInput{Code: "tab", Name: " Tablet "})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if d.ID != "dos_test" || d.Code != "TAB" || d.Name != "Tablet" {
		t.Fatalf("unexpected dosage: %+v", d)
	}

	_, err = svc.Create(context.Background(), DosageInput{Name: "Syrup"})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestServiceGetNotFound(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	_, err := svc.GetByID(context.Background(), "dos_missing")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestServiceUpdateConflict(t *testing.T) {
	store := &storeStub{updateFn: func(ctx context.Context, d *Dosage) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "dosages_code_key"}
	}}
	svc := &Service{Store: store}

	_, err := svc.Update(context.Background(), "dos_1", DosageInput{Code: "TAB", Name: "Tablet"})
	assertKind(t, err, apperrors.KindConflict)
}

func TestServiceDeleteInUse(t *testing.T) {
	store := &storeStub{deleteFn: func(ctx context.Context, id string) error {
		return &pgconn.PgError{Code: "23503", ConstraintName: "items_dosage_id_fkey"}
	}}
	svc := &Service{Store: store}

	err := svc.Delete(context.Background(), "dos_1")
	assertKind(t, err, apperrors.KindConflict)
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

type invalidatorStub struct {
	calls int
	err   error
}

func (i *invalidatorStub) Invalidate(ctx context.Context) error {
	i.calls++
	return i.err
}

func TestServiceWritesInvalidateItemLists(t *testing.T) {
	lists := &invalidatorStub{}
	svc := &Service{Store: &storeStub{}, ItemLists: lists}

	if _, err := svc.Update(context.Background(), "dos_1", DosageInput{Code: "TAB", Name: "Film-coated tablet"}); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if lists.calls != 1 {
		t.Fatalf("expected item lists invalidated after rename, got %d calls", lists.calls)
	}

	if err := svc.Delete(context.Background(), "dos_1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if lists.calls != 2 {
		t.Fatalf("expected item lists invalidated after delete, got %d calls", lists.calls)
	}
}

func TestServiceFailedWriteKeepsItemLists(t *testing.T) {
	lists := &invalidatorStub{}
	store := &storeStub{updateFn: func(ctx context.Context, d *Dosage) error { return ErrNotFound }}
	svc := &Service{Store: store, ItemLists: lists}

	_, err := svc.Update(context.Background(), "dos_missing", DosageInput{Code: "TAB", Name: "Tablet"})
	assertKind(t, err, apperrors.KindNotFound)
	if lists.calls != 0 {
		t.Fatalf("unexpected invalidation on failed update: %d", lists.calls)
	}
}

func TestServiceInvalidationErrorIsNotFatal(t *testing.T) {
	lists := &invalidatorStub{err: errors.New("redis down")}
	svc := &Service{Store: &storeStub{}, ItemLists: lists}

	if _, err := svc.Update(context.Background(), "dos_1", DosageInput{Code: "TAB", Name: "Tablet"}); err != nil {
		t.Fatalf("update should succeed when invalidation fails: %v", err)
	}
}
