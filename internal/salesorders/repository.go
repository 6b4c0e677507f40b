package salesorders

import (
	"context"
	"errors"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5"
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNoRows(err)
}

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const (
	orderColumns = `o.id, o.order_number, o.customer_id, c.code, c.name, c.address, c.city, o.status,
		o.order_date, o.notes, o.total_cents, COALESCE(o.created_by, ''), o.created_at, o.updated_at`
	orderFrom = `sales_orders o JOIN customers c ON c.id = o.customer_id`
)

const (
	sqlCustomerForOrder = `SELECT code, name, address, city, is_active
		FROM customers
		WHERE id = $1
		FOR SHARE`

	sqlItemPrices = `SELECT id, code, name, unit_price_cents, is_active
		FROM items
		WHERE id = ANY($1::text[])
		FOR SHARE`

	sqlOrderInsert = `INSERT INTO sales_orders
		(id, order_number, customer_id, status, order_date, notes, total_cents, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at`

	sqlOrderLinesInsert = `INSERT INTO sales_order_lines
		(order_id, line_no, item_id, quantity, unit_price_cents, line_total_cents)
		SELECT $1, l.line_no, l.item_id, l.quantity, l.unit_price_cents, l.line_total_cents
		FROM unnest($2::int[], $3::text[], $4::int[], $5::bigint[], $6::bigint[])
			AS l(line_no, item_id, quantity, unit_price_cents, line_total_cents)`

	sqlOrderGet = `SELECT ` + orderColumns + `
		FROM ` + orderFrom + `
		WHERE o.id = $1`

	sqlOrderLines = `SELECT l.line_no, l.item_id, i.code, i.name, l.quantity, l.unit_price_cents, l.line_total_cents
		FROM sales_order_lines l JOIN items i ON i.id = l.item_id
		WHERE l.order_id = $1
		ORDER BY l.line_no`

	sqlOrderUpdateStatus = `UPDATE sales_orders
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`

	sqlOrderExists = `SELECT EXISTS (SELECT 1 FROM sales_orders WHERE id = $1)`
)

var orderPage = db.PageSpec[Order]{
	From:          orderFrom,
	Columns:       orderColumns,
	SearchColumns: []string{"o.order_number", "c.name", "c.code"},
	SortColumns: map[string]string{
		"orderDate":   "o.order_date",
		"orderNumber": "o.order_number",
		"total":       "o.total_cents",
		"createdAt":   "o.created_at",
	},
	DefaultSort:       "orderDate",
	DefaultDescending: true,
	KeyColumn:         "o.id",
	Scan:              scanOrder,
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.CustomerCode,
		&o.CustomerName,
		&o.CustomerAddress,
		&o.CustomerCity,
		&status,
		&o.OrderDate,
		&o.Notes,
		&o.TotalCents,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.Status = Status(status)
	return o, err
}

// Create prices the lines from current item data and stores the order with
// its lines in one transaction. o receives the priced lines and total.
func (r *Repository) Create(ctx context.Context, o *Order, in []LineInput) error {
	return r.base.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		var active bool
		err := q.QueryRow(ctx, sqlCustomerForOrder, o.CustomerID).Scan(
			&o.CustomerCode, &o.CustomerName, &o.CustomerAddress, &o.CustomerCity, &active,
		)
		if db.IsNoRows(err) {
			return ErrUnknownCustomer
		}
		if err != nil {
			return err
		}
		if !active {
			return ErrInactiveCustomer
		}

		prices, err := loadPrices(ctx, q, lineItemIDs(in))
		if err != nil {
			return err
		}
		lines, total, err := PriceLines(in, prices)
		if err != nil {
			return err
		}
		o.Lines = lines
		o.TotalCents = total

		err = q.QueryRow(ctx, sqlOrderInsert,
			o.ID, o.OrderNumber, o.CustomerID, string(o.Status), o.OrderDate, o.Notes, o.TotalCents, o.CreatedBy,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		n := len(lines)
		lineNos := make([]int32, n)
		itemIDs := make([]string, n)
		qtys := make([]int32, n)
		unit := make([]int64, n)
		totals := make([]int64, n)
		for i, l := range lines {
			lineNos[i] = int32(l.LineNo)
			itemIDs[i] = l.ItemID
			qtys[i] = int32(l.Quantity)
			unit[i] = l.UnitPriceCents
			totals[i] = l.LineTotalCents
		}
		_, err = q.Exec(ctx, sqlOrderLinesInsert, o.ID, lineNos, itemIDs, qtys, unit, totals)
		return err
	})
}

func loadPrices(ctx context.Context, q db.Queryer, ids []string) (map[string]ItemPrice, error) {
	rows, err := q.Query(ctx, sqlItemPrices, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]ItemPrice, len(ids))
	for rows.Next() {
		var p ItemPrice
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.UnitPriceCents, &p.IsActive); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.base.ReadTx(ctx, func(ctx context.Context, q db.Queryer) error {
		var err error
		o, err = scanOrder(q.QueryRow(ctx, sqlOrderGet, id))
		if err != nil {
			return err
		}

		rows, err := q.Query(ctx, sqlOrderLines, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		o.Lines = []Line{}
		for rows.Next() {
			var l Line
			if err := rows.Scan(&l.LineNo, &l.ItemID, &l.ItemCode, &l.ItemName, &l.Quantity, &l.UnitPriceCents, &l.LineTotalCents); err != nil {
				return err
			}
			o.Lines = append(o.Lines, l)
		}
		return rows.Err()
	})
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) (paging.Result[Order], error) {
	var w db.Where
	if f.CustomerID != "" {
		w.Add("o.customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		w.Add("o.status = ?", string(f.Status))
	}
	if f.DateFrom != nil {
		w.Add("o.order_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.Add("o.order_date <= ?", *f.DateTo)
	}
	return db.Page(ctx, r.base, orderPage, w, f.Filter)
}

// UpdateStatus moves the order from one status to another. It fails with
// ErrStatusChanged when the stored status is no longer from.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var updatedAt time.Time
	err := r.base.Q().QueryRow(ctx, sqlOrderUpdateStatus, id, string(from), string(to)).Scan(&updatedAt)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	var exists bool
	if err := r.base.Q().QueryRow(ctx, sqlOrderExists, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}
