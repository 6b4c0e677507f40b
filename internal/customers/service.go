package customers

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
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, f ListFilter) (paging.Result[Customer], error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
}

type ListCache interface {
	Fetch(ctx context.Context, v url.Values, load func(ctx context.Context) (paging.Result[Customer], error)) (paging.Result[Customer], error)
	Invalidate(ctx context.Context) error
}

type Service struct {
	Store       Store
	Cache       ListCache
	IDGenerator func() string
}

func normalize(in CustomerInput) (CustomerInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.CustomerType = CustomerType(strings.ToLower(strings.TrimSpace(string(in.CustomerType))))

	if in.Code == "" || in.Name == "" {
		return in, apperrors.New(apperrors.KindInvalidInput, "code and name are required")
	}
	if in.CustomerType == "" {
		in.CustomerType = TypeRetail
	}
	if !in.CustomerType.Valid() {
		return in, apperrors.New(apperrors.KindInvalidInput, "invalid customerType")
	}
	if in.CreditLimitCents < 0 {
		return in, apperrors.New(apperrors.KindInvalidInput, "creditLimitCents must not be negative")
	}
	return in, nil
}

func fromInput(id string, in CustomerInput) *Customer {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &Customer{
		ID:               id,
		Code:             in.Code,
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		City:             in.City,
		CustomerType:     in.CustomerType,
		CreditLimitCents: in.CreditLimitCents,
		IsActive:         active,
	}
}

func (s *Service) Create(ctx context.Context, in CustomerInput) (*Customer, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "customers store not configured")
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "cus_" + internal.RandomHex(12)
		}
	}

	c := fromInput(idGen(), in)
	if err := s.Store.Create(ctx, c); err != nil {
		if IsUniqueViolationCode(err) {
			return nil, apperrors.New(apperrors.KindConflict, "customer code already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create customer", err)
	}

	s.invalidate(ctx)
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Customer, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "customers store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	c, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "customer not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load customer", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) (paging.Result[Customer], error) {
	if s.Store == nil {
		return paging.Result[Customer]{}, apperrors.New(apperrors.KindInternal, "customers store not configured")
	}
	f.City = strings.TrimSpace(f.City)
	f.CustomerType = CustomerType(strings.ToLower(strings.TrimSpace(string(f.CustomerType))))
	if f.CustomerType != "" && !f.CustomerType.Valid() {
		return paging.Result[Customer]{}, apperrors.New(apperrors.KindInvalidInput, "invalid customerType")
	}
	f.Filter = f.Filter.Normalized()

	load := func(ctx context.Context) (paging.Result[Customer], error) {
		return s.Store.List(ctx, f)
	}

	var (
		res paging.Result[Customer]
		err error
	)
	if s.Cache != nil {
		res, err = s.Cache.Fetch(ctx, f.Values(), load)
	} else {
		res, err = load(ctx)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvalidInput) {
			return paging.Result[Customer]{}, err
		}
		return paging.Result[Customer]{}, apperrors.Wrap(apperrors.KindInternal, "failed to list customers", err)
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "customers store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	c := fromInput(id, in)
	if err := s.Store.Update(ctx, c); err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "customer not found")
		}
		if IsUniqueViolationCode(err) {
			return nil, apperrors.New(apperrors.KindConflict, "customer code already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update customer", err)
	}

	s.invalidate(ctx)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "customers store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "customer not found")
		}
		if db.IsForeignKeyViolation(err) {
			return apperrors.New(apperrors.KindConflict, "customer has sales orders")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete customer", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		telemetry.LogWarn(ctx, "customer list cache invalidation failed",
			telemetry.LogErr(err),
		)
	}
}
