package departments

import (
	"context"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

type Store interface {
	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context, f paging.Filter) (paging.Result[Department], error)
	UpdateDepartment(ctx context.Context, d *Department) error
	DeleteDepartment(ctx context.Context, id string) error

	CreateDivision(ctx context.Context, v *Division) error
	GetDivision(ctx context.Context, id string) (*Division, error)
	ListDivisions(ctx context.Context, f DivisionFilter) (paging.Result[Division], error)
	UpdateDivision(ctx context.Context, v *Division) error
	DeleteDivision(ctx context.Context, id string) error
}

type Service struct {
	Store       Store
	IDGenerator func(prefix string) string
}

func (s *Service) newID(prefix string) string {
	if s.IDGenerator != nil {
		return s.IDGenerator(prefix)
	}
	return prefix + internal.RandomHex(12)
}

func normalizeDepartment(in DepartmentInput) (DepartmentInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return in, apperrors.New(apperrors.KindInvalidInput, "code and name are required")
	}
	return in, nil
}

func normalizeDivision(in DivisionInput) (DivisionInput, error) {
	in.DepartmentID = strings.TrimSpace(in.DepartmentID)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	if in.DepartmentID == "" {
		return in, apperrors.New(apperrors.KindInvalidInput, "departmentId is required")
	}
	if in.Code == "" || in.Name == "" {
		return in, apperrors.New(apperrors.KindInvalidInput, "code and name are required")
	}
	return in, nil
}

func (s *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (*Department, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	in, err := normalizeDepartment(in)
	if err != nil {
		return nil, err
	}

	d := &Department{ID: s.newID("dep_"), Code: in.Code, Name: in.Name}
	if err := s.Store.CreateDepartment(ctx, d); err != nil {
		if isDuplicateDepartmentCode(err) {
			return nil, apperrors.New(apperrors.KindConflict, "department code already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create department", err)
	}
	return d, nil
}

func (s *Service) GetDepartment(ctx context.Context, id string) (*Department, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	d, err := s.Store.GetDepartment(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "department not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load department", err)
	}
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context, f paging.Filter) (paging.Result[Department], error) {
	if s.Store == nil {
		return paging.Result[Department]{}, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	res, err := s.Store.ListDepartments(ctx, f)
	if err != nil {
		return res, listError("departments", err)
	}
	return res, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id string, in DepartmentInput) (*Department, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	in, err := normalizeDepartment(in)
	if err != nil {
		return nil, err
	}

	d := &Department{ID: id, Code: in.Code, Name: in.Name}
	if err := s.Store.UpdateDepartment(ctx, d); err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "department not found")
		}
		if isDuplicateDepartmentCode(err) {
			return nil, apperrors.New(apperrors.KindConflict, "department code already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update department", err)
	}
	return d, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if err := s.Store.DeleteDepartment(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "department not found")
		}
		if db.IsForeignKeyViolation(err) {
			return apperrors.New(apperrors.KindConflict, "department still has divisions")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete department", err)
	}
	return nil
}

func (s *Service) CreateDivision(ctx context.Context, in DivisionInput) (*Division, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	in, err := normalizeDivision(in)
	if err != nil {
		return nil, err
	}

	v := &Division{ID: s.newID("div_"), DepartmentID: in.DepartmentID, Code: in.Code, Name: in.Name}
	if err := s.Store.CreateDivision(ctx, v); err != nil {
		return nil, divisionWriteError("create", err)
	}
	return v, nil
}

func (s *Service) GetDivision(ctx context.Context, id string) (*Division, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	v, err := s.Store.GetDivision(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "division not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load division", err)
	}
	return v, nil
}

func (s *Service) ListDivisions(ctx context.Context, f DivisionFilter) (paging.Result[Division], error) {
	if s.Store == nil {
		return paging.Result[Division]{}, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	f.DepartmentID = strings.TrimSpace(f.DepartmentID)
	res, err := s.Store.ListDivisions(ctx, f)
	if err != nil {
		return res, listError("divisions", err)
	}
	return res, nil
}

func (s *Service) UpdateDivision(ctx context.Context, id string, in DivisionInput) (*Division, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	in, err := normalizeDivision(in)
	if err != nil {
		return nil, err
	}

	v := &Division{ID: id, DepartmentID: in.DepartmentID, Code: in.Code, Name: in.Name}
	if err := s.Store.UpdateDivision(ctx, v); err != nil {
		return nil, divisionWriteError("update", err)
	}
	return v, nil
}

func (s *Service) DeleteDivision(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "departments store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if err := s.Store.DeleteDivision(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "division not found")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete division", err)
	}
	return nil
}

func divisionWriteError(op string, err error) error {
	switch {
	case IsNotFound(err):
		return apperrors.New(apperrors.KindNotFound, "division not found")
	case isDuplicateDivisionCode(err):
		return apperrors.New(apperrors.KindConflict, "division code already exists")
	case isUnknownDepartment(err):
		return apperrors.New(apperrors.KindInvalidInput, "department does not exist")
	default:
		return apperrors.Wrap(apperrors.KindInternal, "failed to "+op+" division", err)
	}
}

// listError keeps invalid-input errors from the page builder (unknown sort
// field) and wraps everything else.
func listError(entity string, err error) error {
	if apperrors.Is(err, apperrors.KindInvalidInput) {
		return err
	}
	return apperrors.Wrap(apperrors.KindInternal, "failed to list "+entity, err)
}
