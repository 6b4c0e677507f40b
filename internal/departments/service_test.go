package departments

import (
	"context"
	"errors"
	"testing"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5/pgconn"
)

type storeStub struct {
	createDepFn func(ctx context.Context, d *Department) error
	getDepFn    func(ctx context.Context, id string) (*Department, error)
	listDepFn   func(ctx context.Context, f paging.Filter) (paging.Result[Department], error)
	updateDepFn func(ctx context.Context, d *Department) error
	deleteDepFn func(ctx context.Context, id string) error

	createDivFn func(ctx context.Context, v *Division) error
	listDivFn   func(ctx context.Context, f DivisionFilter) (paging.Result[Division], error)
	deleteDivFn func(ctx context.Context, id string) error
}

func (s *storeStub) CreateDepartment(ctx context.Context, d *Department) error {
	if s.createDepFn != nil {
		return s.createDepFn(ctx, d)
	}
	return nil
}

func (s *storeStub) GetDepartment(ctx context.Context, id string) (*Department, error) {
	if s.getDepFn != nil {
		return s.getDepFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *storeStub) ListDepartments(ctx context.Context, f paging.Filter) (paging.Result[Department], error) {
	if s.listDepFn != nil {
		return s.listDepFn(ctx, f)
	}
	return paging.NewResult[Department](nil, 0, f), nil
}

func (s *storeStub) UpdateDepartment(ctx context.Context, d *Department) error {
	if s.updateDepFn != nil {
		return s.updateDepFn(ctx, d)
	}
	return nil
}

func (s *storeStub) DeleteDepartment(ctx context.Context, id string) error {
	if s.deleteDepFn != nil {
		return s.deleteDepFn(ctx, id)
	}
	return nil
}

func (s *storeStub) CreateDivision(ctx context.Context, v *Division) error {
	if s.createDivFn != nil {
		return s.createDivFn(ctx, v)
	}
	return nil
}

func (s *storeStub) GetDivision(ctx context.Context, id string) (*Division, error) {
	return nil, ErrNotFound
}

func (s *storeStub) ListDivisions(ctx context.Context, f DivisionFilter) (paging.Result[Division], error) {
	if s.listDivFn != nil {
		return s.listDivFn(ctx, f)
	}
	return paging.NewResult[Division](nil, 0, f.Filter), nil
}

func (s *storeStub) UpdateDivision(ctx context.Context, v *Division) error {
	return nil
}

func (s *storeStub) DeleteDivision(ctx context.Context, id string) error {
	if s.deleteDivFn != nil {
		return s.deleteDivFn(ctx, id)
	}
	return nil
}

func fixedID(prefix string) string { return prefix + "test" }

func TestCreateDepartmentNormalizes(t *testing.T) {
	store := &storeStub{}
	svc := &Service{Store: store, IDGenerator: fixedID}

	var got *Department
	store.createDepFn = func(ctx context.Context, d *Department) error {
		got = d
		return nil
	}

	d, err := svc.CreateDepartment(context.Background(), DepartmentInput{Code: " qa ", Name: " Quality Assurance "})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if d.ID != "dep_test" || got.Code != "QA" || got.Name != "Quality Assurance" {
		t.Fatalf("unexpected department: %+v", got)
	}
}

func TestCreateDepartmentValidation(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	_, err := svc.CreateDepartment(context.Background(), DepartmentInput{Code: "QA"})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestCreateDepartmentConflict(t *testing.T) {
	store := &storeStub{createDepFn: func(ctx context.Context, d *Department) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "departments_code_key"}
	}}
	svc := &Service{Store: store}

	_, err := svc.CreateDepartment(context.Background(), DepartmentInput{Code: "QA", Name: "Quality"})
	assertKind(t, err, apperrors.KindConflict)
}

func TestGetDepartmentNotFound(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	_, err := svc.GetDepartment(context.Background(), "dep_missing")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestDeleteDepartmentWithDivisions(t *testing.T) {
	store := &storeStub{deleteDepFn: func(ctx context.Context, id string) error {
		return &pgconn.PgError{Code: "23503", ConstraintName: "divisions_department_id_fkey"}
	}}
	svc := &Service{Store: store}

	err := svc.DeleteDepartment(context.Background(), "dep_1")
	assertKind(t, err, apperrors.KindConflict)
}

func TestCreateDivisionUnknownDepartment(t *testing.T) {
	store := &storeStub{createDivFn: func(ctx context.Context, v *Division) error {
		return &pgconn.PgError{Code: "23503", ConstraintName: "divisions_department_id_fkey"}
	}}
	svc := &Service{Store: store}

	_, err := svc.CreateDivision(context.Background(), DivisionInput{DepartmentID: "dep_x", Code: "N1", Name: "North"})
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = svc.CreateDivision(context.Background(), DivisionInput{Code: "N1", Name: "North"})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestListDivisionsPassesFilter(t *testing.T) {
	store := &storeStub{}
	svc := &Service{Store: store}

	var got DivisionFilter
	store.listDivFn = func(ctx context.Context, f DivisionFilter) (paging.Result[Division], error) {
		got = f
		return paging.NewResult[Division](nil, 0, f.Filter), nil
	}

	_, err := svc.ListDivisions(context.Background(), DivisionFilter{DepartmentID: " dep_1 ", Filter: paging.Filter{PageNumber: 2}})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if got.DepartmentID != "dep_1" || got.PageNumber != 2 {
		t.Fatalf("unexpected filter: %+v", got)
	}
}

func TestListKeepsInvalidSort(t *testing.T) {
	store := &storeStub{listDepFn: func(ctx context.Context, f paging.Filter) (paging.Result[Department], error) {
		return paging.Result[Department]{}, apperrors.New(apperrors.KindInvalidInput, "invalid sortBy: x")
	}}
	svc := &Service{Store: store}

	_, err := svc.ListDepartments(context.Background(), paging.Filter{SortBy: "x"})
	assertKind(t, err, apperrors.KindInvalidInput)

	store.listDepFn = func(ctx context.Context, f paging.Filter) (paging.Result[Department], error) {
		return paging.Result[Department]{}, errors.New("connection reset")
	}
	_, err = svc.ListDepartments(context.Background(), paging.Filter{})
	assertKind(t, err, apperrors.KindInternal)
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
