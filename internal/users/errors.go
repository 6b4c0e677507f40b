package users

import (
	"errors"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
)

var ErrNotFound = errors.New("user not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNoRows(err) || errors.Is(err, internal.ErrNotFound)
}

func IsUniqueViolationUsername(err error) bool {
	return db.IsUniqueViolation(err, "users_username_key")
}

func IsUnknownDepartment(err error) bool {
	return db.IsForeignKeyViolation(err, "users_department_id_fkey")
}
