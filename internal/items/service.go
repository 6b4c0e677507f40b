package items

import (
	"context"
	"net/url"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
)

type Store interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, f ListFilter) (paging.Result[Item], error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
}

type ListCache interface {
	Fetch(ctx context.Context, v url.Values, load func(ctx context.Context) (paging.Result[Item], error)) (paging.Result[Item], error)
	Invalidate(ctx context.Context) error
}

type Service struct {
	Store       Store
	Cache       ListCache
	IDGenerator func() string
}

func normalize(in ItemInput) (ItemInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.GenericName = strings.TrimSpace(in.GenericName)
	in.DosageID = strings.TrimSpace(in.DosageID)
	in.Strength = strings.TrimSpace(in.Strength)

	if in.Code == "" || in.Name == "" {
		return in, apperrors.New(apperrors.KindInvalidInput, "code and name are required")
	}
	if in.UnitPriceCents < 0 {
		return in, apperrors.New(apperrors.KindInvalidInput, "unitPriceCents must not be negative")
	}
	if in.ReorderLevel < 0 {
		return in, apperrors.New(apperrors.KindInvalidInput, "reorderLevel must not be negative")
	}
	return in, nil
}

func fromInput(id string, in ItemInput) *Item {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &Item{
		ID:             id,
		Code:           in.Code,
		Name:           in.Name,
		GenericName:    in.GenericName,
		DosageID:       in.DosageID,
		Strength:       in.Strength,
		UnitPriceCents: in.UnitPriceCents,
		ReorderLevel:   in.ReorderLevel,
		IsActive:       active,
	}
}

func writeError(op string, err error) error {
	switch {
	case IsNotFound(err):
		return apperrors.New(apperrors.KindNotFound, "item not found")
	case db.IsUniqueViolation(err, "items_code_key"):
		return apperrors.New(apperrors.KindConflict, "item code already exists")
	case db.IsForeignKeyViolation(err, "items_dosage_id_fkey"):
		return apperrors.New(apperrors.KindInvalidInput, "dosage does not exist")
	default:
		return apperrors.Wrap(apperrors.KindInternal, "failed to "+op+" item", err)
	}
}

func (s *Service) Create(ctx context.Context, in ItemInput) (*Item, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "items store not configured")
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "itm_" + internal.RandomHex(12)
		}
	}

	it := fromInput(idGen(), in)
	if err := s.Store.Create(ctx, it); err != nil {
		return nil, writeError("create", err)
	}

	s.invalidate(ctx)
	return it, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Item, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "items store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	it, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "item not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load item", err)
	}
	return it, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) (paging.Result[Item], error) {
	if s.Store == nil {
		return paging.Result[Item]{}, apperrors.New(apperrors.KindInternal, "items store not configured")
	}
	f.DosageID = strings.TrimSpace(f.DosageID)
	f.Filter = f.Filter.Normalized()

	load := func(ctx context.Context) (paging.Result[Item], error) {
		return s.Store.List(ctx, f)
	}

	var (
		res paging.Result[Item]
		err error
	)
	if s.Cache != nil {
		res, err = s.Cache.Fetch(ctx, f.Values(), load)
	} else {
		res, err = load(ctx)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvalidInput) {
			return paging.Result[Item]{}, err
		}
		return paging.Result[Item]{}, apperrors.Wrap(apperrors.KindInternal, "failed to list items", err)
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, id string, in ItemInput) (*Item, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "items store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	it := fromInput(id, in)
	if err := s.Store.Update(ctx, it); err != nil {
		return nil, writeError("update", err)
	}

	s.invalidate(ctx)
	return it, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "items store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "item not found")
		}
		if db.IsForeignKeyViolation(err) {
			return apperrors.New(apperrors.KindConflict, "item is used by sales orders")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete item", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		telemetry.LogWarn(ctx, "item list cache invalidation failed",
			telemetry.LogErr(err),
		)
	}
}
