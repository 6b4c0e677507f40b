package dosages

import (
	"context"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
)

type Store interface {
	Create(ctx context.Context, d *Dosage) error
	GetByID(ctx context.Context, id string) (*Dosage, error)
	List(ctx context.Context, f paging.Filter) (paging.Result[Dosage], error)
	Update(ctx context.Context, d *Dosage) error
	Delete(ctx context.Context, id string) error
}

// Invalidator drops cached list pages that embed dosage fields.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	Store       Store
	IDGenerator func() string
	// ItemLists is the item list cache; item pages carry the dosage name.
	ItemLists Invalidator
}

func normalize(in DosageInput) (DosageInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Code == "" || in.Name == "" {
		return in, apperrors.New(apperrors.KindInvalidInput, "code and name are required")
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, in DosageInput) (*Dosage, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "dosages store not configured")
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "dos_" + internal.RandomHex(12)
		}
	}

	d := &Dosage{ID: idGen(), Code: in.Code, Name: in.Name, Description: in.Description}
	if err := s.Store.Create(ctx, d); err != nil {
		if db.IsUniqueViolation(err, "dosages_code_key") {
			return nil, apperrors.New(apperrors.KindConflict, "dosage code already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create dosage", err)
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Dosage, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "dosages store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	d, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "dosage not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load dosage", err)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, f paging.Filter) (paging.Result[Dosage], error) {
	if s.Store == nil {
		return paging.Result[Dosage]{}, apperrors.New(apperrors.KindInternal, "dosages store not configured")
	}
	res, err := s.Store.List(ctx, f)
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvalidInput) {
			return res, err
		}
		return res, apperrors.Wrap(apperrors.KindInternal, "failed to list dosages", err)
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, id string, in DosageInput) (*Dosage, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "dosages store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	d := &Dosage{ID: id, Code: in.Code, Name: in.Name, Description: in.Description}
	if err := s.Store.Update(ctx, d); err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "dosage not found")
		}
		if db.IsUniqueViolation(err, "dosages_code_key") {
			return nil, apperrors.New(apperrors.KindConflict, "dosage code already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update dosage", err)
	}
	s.invalidateItems(ctx)
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "dosages store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "dosage not found")
		}
		if db.IsForeignKeyViolation(err) {
			return apperrors.New(apperrors.KindConflict, "dosage is used by items")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete dosage", err)
	}
	s.invalidateItems(ctx)
	return nil
}

func (s *Service) invalidateItems(ctx context.Context) {
	if s.ItemLists == nil {
		return
	}
	if err := s.ItemLists.Invalidate(ctx); err != nil {
		telemetry.LogWarn(ctx, "item list cache invalidation failed",
			telemetry.LogString("cause", "dosage write"),
			telemetry.LogErr(err),
		)
	}
}
