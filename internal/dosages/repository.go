package dosages

import (
	"context"
	"errors"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("dosage not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNoRows(err)
}

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const dosageColumns = `id, code, name, description, created_at, updated_at`

const (
	sqlDosageInsert = `INSERT INTO dosages (id, code, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	sqlDosageGet = `SELECT ` + dosageColumns + `
		FROM dosages
		WHERE id = $1`

	sqlDosageUpdate = `UPDATE dosages
		SET code = $2, name = $3, description = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	sqlDosageDelete = `DELETE FROM dosages WHERE id = $1`
)

var dosagePage = db.PageSpec[Dosage]{
	From:          "dosages",
	Columns:       dosageColumns,
	SearchColumns: []string{"code", "name", "description"},
	SortColumns: map[string]string{
		"code":      "code",
		"name":      "name",
		"createdAt": "created_at",
	},
	DefaultSort: "name",
	KeyColumn:   "id",
	Scan: func(row pgx.Row) (Dosage, error) {
		var d Dosage
		err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	},
}

func (r *Repository) Create(ctx context.Context, d *Dosage) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlDosageInsert, d.ID, d.Code, d.Name, d.Description).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Dosage, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	d, err := dosagePage.Scan(r.base.Q().QueryRow(ctx, sqlDosageGet, id))
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) List(ctx context.Context, f paging.Filter) (paging.Result[Dosage], error) {
	return db.Page(ctx, r.base, dosagePage, db.Where{}, f)
}

func (r *Repository) Update(ctx context.Context, d *Dosage) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	err := r.base.Q().QueryRow(ctx, sqlDosageUpdate, d.ID, d.Code, d.Name, d.Description).Scan(&d.CreatedAt, &d.UpdatedAt)
	if IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlDosageDelete, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
