package items

import (
	"context"
	"errors"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("item not found")

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
	itemColumns = `i.id, i.code, i.name, i.generic_name, COALESCE(i.dosage_id, ''), COALESCE(d.name, ''),
		i.strength, i.unit_price_cents, i.reorder_level, i.is_active, i.created_at, i.updated_at`
	itemFrom = `items i LEFT JOIN dosages d ON d.id = i.dosage_id`
)

const (
	sqlItemInsert = `INSERT INTO items
		(id, code, name, generic_name, dosage_id, strength, unit_price_cents, reorder_level, is_active)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	sqlItemGet = `SELECT ` + itemColumns + `
		FROM ` + itemFrom + `
		WHERE i.id = $1`

	sqlItemUpdate = `UPDATE items
		SET code = $2, name = $3, generic_name = $4, dosage_id = NULLIF($5, ''), strength = $6,
			unit_price_cents = $7, reorder_level = $8, is_active = $9, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	sqlItemDelete = `DELETE FROM items WHERE id = $1`
)

var itemPage = db.PageSpec[Item]{
	From:          itemFrom,
	Columns:       itemColumns,
	SearchColumns: []string{"i.code", "i.name", "i.generic_name"},
	SortColumns: map[string]string{
		"code":      "i.code",
		"name":      "i.name",
		"unitPrice": "i.unit_price_cents",
		"createdAt": "i.created_at",
	},
	DefaultSort: "name",
	KeyColumn:   "i.id",
	Scan:        scanItem,
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(
		&it.ID,
		&it.Code,
		&it.Name,
		&it.GenericName,
		&it.DosageID,
		&it.DosageName,
		&it.Strength,
		&it.UnitPriceCents,
		&it.ReorderLevel,
		&it.IsActive,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	return it, err
}

func itemArgs(it *Item) []any {
	return []any{
		it.ID, it.Code, it.Name, it.GenericName, it.DosageID, it.Strength,
		it.UnitPriceCents, it.ReorderLevel, it.IsActive,
	}
}

func (r *Repository) Create(ctx context.Context, it *Item) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlItemInsert, itemArgs(it)...).Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Item, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	it, err := scanItem(r.base.Q().QueryRow(ctx, sqlItemGet, id))
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) (paging.Result[Item], error) {
	var w db.Where
	if f.DosageID != "" {
		w.Add("i.dosage_id = ?", f.DosageID)
	}
	if f.IsActive != nil {
		w.Add("i.is_active = ?", *f.IsActive)
	}
	return db.Page(ctx, r.base, itemPage, w, f.Filter)
}

func (r *Repository) Update(ctx context.Context, it *Item) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	err := r.base.Q().QueryRow(ctx, sqlItemUpdate, itemArgs(it)...).Scan(&it.CreatedAt, &it.UpdatedAt)
	if IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlItemDelete, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
