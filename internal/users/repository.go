package users

import (
	"context"
	"strconv"
	"strings"

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

const userColumns = `id, username, email, password_hash, full_name, roles,
		COALESCE(department_id, ''), designation, is_active, created_at, updated_at`

const (
	sqlUserInsert = `INSERT INTO users (id, username, email, password_hash, full_name, roles, department_id, designation)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING is_active, created_at, updated_at`

	sqlUserGetByID = `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	sqlUserGetByUsername = `SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`

	sqlUserCount = `SELECT count(*) FROM users`

	sqlUserUpdateBase = `UPDATE users
		SET %s, updated_at = now()
		WHERE id = $1`

	sqlUserDelete = `DELETE FROM users
		WHERE id = $1`
)

var userPage = db.PageSpec[User]{
	From:          "users",
	Columns:       userColumns,
	SearchColumns: []string{"username", "full_name", "email"},
	SortColumns: map[string]string{
		"username":  "username",
		"fullName":  "full_name",
		"createdAt": "created_at",
	},
	DefaultSort: "username",
	KeyColumn:   "id",
	Scan: func(row pgx.Row) (User, error) {
		u, err := scanUser(row)
		if err != nil {
			return User{}, err
		}
		return *u, nil
	},
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Roles,
		&u.DepartmentID,
		&u.Designation,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	row := r.base.Q().QueryRow(ctx, sqlUserInsert,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Roles, u.DepartmentID, u.Designation)
	return row.Scan(&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, sqlUserGetByID, id)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, sqlUserGetByUsername, username)
}

func (r *Repository) getOne(ctx context.Context, query string, arg string) (*User, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.base.Q().QueryRow(ctx, query, arg))
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var n int64
	err := r.base.Q().QueryRow(ctx, sqlUserCount).Scan(&n)
	return n, err
}

func (r *Repository) List(ctx context.Context, f ListFilter) (paging.Result[User], error) {
	var w db.Where
	if f.Role != "" {
		w.Add("? = ANY(roles)", f.Role)
	}
	if f.DepartmentID != "" {
		w.Add("department_id = ?", f.DepartmentID)
	}
	if f.IsActive != nil {
		w.Add("is_active = ?", *f.IsActive)
	}
	return db.Page(ctx, r.base, userPage, w, f.Filter)
}

func (r *Repository) Update(ctx context.Context, u *UpdateUserRequest) error {
	set := make([]string, 0, 7)
	args := make([]any, 0, 8)

	args = append(args, u.ID)
	argPos := 2
	add := func(col string, val any) {
		set = append(set, col+" = $"+strconv.Itoa(argPos))
		args = append(args, val)
		argPos++
	}

	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.PasswordHash != nil {
		add("password_hash", *u.PasswordHash)
	}
	if u.FullName != nil {
		add("full_name", *u.FullName)
	}
	if u.Designation != nil {
		add("designation", *u.Designation)
	}
	if u.DepartmentID != nil {
		set = append(set, "department_id = NULLIF($"+strconv.Itoa(argPos)+", '')")
		args = append(args, *u.DepartmentID)
		argPos++
	}
	if u.Roles != nil {
		add("roles", u.Roles)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}

	if len(set) == 0 {
		return nil
	}

	query := strings.Replace(sqlUserUpdateBase, "%s", strings.Join(set, ", "), 1)

	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlUserDelete, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
