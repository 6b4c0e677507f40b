package salesorders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
	"github.com/google/uuid"
)

const maxLines = 200

type Store interface {
	Create(ctx context.Context, o *Order, lines []LineInput) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListFilter) (paging.Result[Order], error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}

type Service struct {
	Store           Store
	IDGenerator     func() string
	NumberGenerator func(orderDate time.Time) string
	Now             func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// OrderNumber formats a human-facing order number such as SO-20260302-9F1C2A7B.
func OrderNumber(orderDate time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "SO-" + orderDate.Format("20060102") + "-" + suffix
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) Create(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "sales orders store not configured")
	}

	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.CustomerID == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "customerId is required")
	}
	if len(in.Lines) == 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "at least one line is required")
	}
	if len(in.Lines) > maxLines {
		return nil, apperrors.New(apperrors.KindInvalidInput, "too many lines")
	}
	for i := range in.Lines {
		in.Lines[i].ItemID = strings.TrimSpace(in.Lines[i].ItemID)
		if in.Lines[i].ItemID == "" {
			return nil, apperrors.New(apperrors.KindInvalidInput, "itemId is required on every line")
		}
	}

	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}
	orderDate = dateOnly(orderDate)

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "so_" + internal.RandomHex(12)
		}
	}
	numGen := s.NumberGenerator
	if numGen == nil {
		numGen = OrderNumber
	}

	createdBy, _ := identity.UserID(ctx)
	o := &Order{
		ID:          idGen(),
		OrderNumber: numGen(orderDate),
		CustomerID:  in.CustomerID,
		Status:      StatusDraft,
		OrderDate:   orderDate,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   createdBy,
	}

	if err := s.Store.Create(ctx, o, in.Lines); err != nil {
		switch {
		case errors.Is(err, ErrUnknownCustomer), errors.Is(err, ErrInactiveCustomer),
			errors.Is(err, ErrUnknownItem), errors.Is(err, ErrInactiveItem),
			errors.Is(err, ErrNoLines), errors.Is(err, ErrInvalidLine):
			return nil, apperrors.New(apperrors.KindInvalidInput, err.Error())
		case db.IsUniqueViolation(err, "sales_orders_order_number_key"):
			return nil, apperrors.New(apperrors.KindConflict, "order number already exists")
		default:
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create sales order", err)
		}
	}

	telemetry.LogInfo(ctx, "sales order created",
		telemetry.LogString("order.id", o.ID),
		telemetry.LogString("order.number", o.OrderNumber),
		telemetry.LogInt64("order.total_cents", o.TotalCents),
	)
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "sales orders store not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	o, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "sales order not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load sales order", err)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) (paging.Result[Order], error) {
	if s.Store == nil {
		return paging.Result[Order]{}, apperrors.New(apperrors.KindInternal, "sales orders store not configured")
	}
	f.CustomerID = strings.TrimSpace(f.CustomerID)
	f.Status = Status(strings.ToLower(strings.TrimSpace(string(f.Status))))
	if f.Status != "" && !f.Status.Valid() {
		return paging.Result[Order]{}, apperrors.New(apperrors.KindInvalidInput, "invalid status")
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return paging.Result[Order]{}, apperrors.New(apperrors.KindInvalidInput, "dateFrom must not be after dateTo")
	}

	res, err := s.Store.List(ctx, f)
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvalidInput) {
			return paging.Result[Order]{}, err
		}
		return paging.Result[Order]{}, apperrors.Wrap(apperrors.KindInternal, "failed to list sales orders", err)
	}
	return res, nil
}

// Transition moves an order along draft -> confirmed -> shipped, or cancels
// it while it is still draft or confirmed.
func (s *Service) Transition(ctx context.Context, id string, to Status) (*Order, error) {
	to = Status(strings.ToLower(strings.TrimSpace(string(to))))
	if !to.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidInput, "invalid status")
	}

	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, apperrors.New(apperrors.KindInvalidInput,
			"cannot change order status from "+string(o.Status)+" to "+string(to))
	}

	if err := s.Store.UpdateStatus(ctx, o.ID, o.Status, to); err != nil {
		switch {
		case IsNotFound(err):
			return nil, apperrors.New(apperrors.KindNotFound, "sales order not found")
		case errors.Is(err, ErrStatusChanged):
			return nil, apperrors.New(apperrors.KindConflict, "order status was changed by another request")
		default:
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update sales order", err)
		}
	}

	telemetry.LogInfo(ctx, "sales order status changed",
		telemetry.LogString("order.id", o.ID),
		telemetry.LogString("order.from", string(o.Status)),
		telemetry.LogString("order.to", string(to)),
	)

	o.Status = to
	return o, nil
}

// Invoice renders the invoice PDF for an order and returns it with a
// download filename.
func (s *Service) Invoice(ctx context.Context, id string) ([]byte, string, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if o.Status == StatusCancelled {
		return nil, "", apperrors.New(apperrors.KindInvalidInput, "cancelled orders have no invoice")
	}

	_, span := telemetry.StartSpan(ctx, "salesorders.render_invoice")
	pdf, err := RenderInvoice(o, s.now())
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.KindInternal, "failed to render invoice", err)
	}
	return pdf, InvoiceFilename(o), nil
}
