package customers

import (
	"context"
	"errors"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("customer not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNoRows(err)
}

func IsUniqueViolationCode(err error) bool {
	return db.IsUniqueViolation(err, "customers_code_key")
}

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const customerColumns = `id, code, name, email, phone, address, city, customer_type,
		credit_limit_cents, is_active, created_at, updated_at`

const (
	sqlCustomerInsert = `INSERT INTO customers
		(id, code, name, email, phone, address, city, customer_type, credit_limit_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	sqlCustomerGet = `SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1`

	sqlCustomerUpdate = `UPDATE customers
		SET code = $2, name = $3, email = $4, phone = $5, address = $6, city = $7,
			customer_type = $8, credit_limit_cents = $9, is_active = $10, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	sqlCustomerDelete = `DELETE FROM customers WHERE id = $1`
)

var customerPage = db.PageSpec[Customer]{
	From:          "customers",
	Columns:       customerColumns,
	SearchColumns: []string{"code", "name", "city", "email", "phone"},
	SortColumns: map[string]string{
		"code":      "code",
		"name":      "name",
		"city":      "city",
		"createdAt": "created_at",
	},
	DefaultSort: "name",
	KeyColumn:   "id",
	Scan:        scanCustomer,
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	var customerType string
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.City,
		&customerType,
		&c.CreditLimitCents,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	c.CustomerType = CustomerType(customerType)
	return c, err
}

func customerArgs(c *Customer) []any {
	return []any{
		c.ID, c.Code, c.Name, c.Email, c.Phone, c.Address, c.City,
		string(c.CustomerType), c.CreditLimitCents, c.IsActive,
	}
}

func (r *Repository) Create(ctx context.Context, c *Customer) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlCustomerInsert, customerArgs(c)...).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	c, err := scanCustomer(r.base.Q().QueryRow(ctx, sqlCustomerGet, id))
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) (paging.Result[Customer], error) {
	return db.Page(ctx, r.base, customerPage, listWhere(f), f.Filter)
}

func listWhere(f ListFilter) db.Where {
	var w db.Where
	if f.City != "" {
		w.EqualFold("city", f.City)
	}
	if f.CustomerType != "" {
		w.Add("customer_type = ?", string(f.CustomerType))
	}
	if f.IsActive != nil {
		w.Add("is_active = ?", *f.IsActive)
	}
	return w
}

func (r *Repository) Update(ctx context.Context, c *Customer) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	err := r.base.Q().QueryRow(ctx, sqlCustomerUpdate, customerArgs(c)...).Scan(&c.CreatedAt, &c.UpdatedAt)
	if IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlCustomerDelete, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
