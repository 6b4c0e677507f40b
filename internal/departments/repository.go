package departments

import (
	"context"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const (
	departmentColumns = `id, code, name, created_at, updated_at`
	divisionColumns   = `v.id, v.department_id, d.name, v.code, v.name, v.created_at, v.updated_at`
	divisionFrom      = `divisions v JOIN departments d ON d.id = v.department_id`
)

const (
	sqlDepartmentInsert = `INSERT INTO departments (id, code, name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	sqlDepartmentGet = `SELECT ` + departmentColumns + `
		FROM departments
		WHERE id = $1`

	sqlDepartmentUpdate = `UPDATE departments
		SET code = $2, name = $3, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	sqlDepartmentDelete = `DELETE FROM departments WHERE id = $1`

	sqlDivisionInsert = `INSERT INTO divisions (id, department_id, code, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	sqlDivisionGet = `SELECT ` + divisionColumns + `
		FROM ` + divisionFrom + `
		WHERE v.id = $1`

	sqlDivisionUpdate = `UPDATE divisions
		SET department_id = $2, code = $3, name = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	sqlDivisionDelete = `DELETE FROM divisions WHERE id = $1`
)

var departmentPage = db.PageSpec[Department]{
	From:          "departments",
	Columns:       departmentColumns,
	SearchColumns: []string{"code", "name"},
	SortColumns: map[string]string{
		"code":      "code",
		"name":      "name",
		"createdAt": "created_at",
	},
	DefaultSort: "name",
	KeyColumn:   "id",
	Scan: func(row pgx.Row) (Department, error) {
		var d Department
		err := row.Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	},
}

var divisionPage = db.PageSpec[Division]{
	From:          divisionFrom,
	Columns:       divisionColumns,
	SearchColumns: []string{"v.code", "v.name", "d.name"},
	SortColumns: map[string]string{
		"code":       "v.code",
		"name":       "v.name",
		"department": "d.name",
		"createdAt":  "v.created_at",
	},
	DefaultSort: "name",
	KeyColumn:   "v.id",
	Scan:        scanDivision,
}

func scanDivision(row pgx.Row) (Division, error) {
	var v Division
	err := row.Scan(&v.ID, &v.DepartmentID, &v.DepartmentName, &v.Code, &v.Name, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *Repository) CreateDepartment(ctx context.Context, d *Department) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlDepartmentInsert, d.ID, d.Code, d.Name).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *Repository) GetDepartment(ctx context.Context, id string) (*Department, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	d, err := departmentPage.Scan(r.base.Q().QueryRow(ctx, sqlDepartmentGet, id))
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) ListDepartments(ctx context.Context, f paging.Filter) (paging.Result[Department], error) {
	return db.Page(ctx, r.base, departmentPage, db.Where{}, f)
}

func (r *Repository) UpdateDepartment(ctx context.Context, d *Department) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	err := r.base.Q().QueryRow(ctx, sqlDepartmentUpdate, d.ID, d.Code, d.Name).Scan(&d.CreatedAt, &d.UpdatedAt)
	if IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) DeleteDepartment(ctx context.Context, id string) error {
	return r.exec(ctx, sqlDepartmentDelete, id)
}

func (r *Repository) CreateDivision(ctx context.Context, v *Division) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlDivisionInsert, v.ID, v.DepartmentID, v.Code, v.Name).Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (r *Repository) GetDivision(ctx context.Context, id string) (*Division, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	v, err := scanDivision(r.base.Q().QueryRow(ctx, sqlDivisionGet, id))
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) ListDivisions(ctx context.Context, f DivisionFilter) (paging.Result[Division], error) {
	var w db.Where
	if f.DepartmentID != "" {
		w.Add("v.department_id = ?", f.DepartmentID)
	}
	return db.Page(ctx, r.base, divisionPage, w, f.Filter)
}

func (r *Repository) UpdateDivision(ctx context.Context, v *Division) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	err := r.base.Q().QueryRow(ctx, sqlDivisionUpdate, v.ID, v.DepartmentID, v.Code, v.Name).Scan(&v.CreatedAt, &v.UpdatedAt)
	if IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) DeleteDivision(ctx context.Context, id string) error {
	return r.exec(ctx, sqlDivisionDelete, id)
}

func (r *Repository) exec(ctx context.Context, query string, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
