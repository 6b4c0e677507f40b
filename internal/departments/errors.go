package departments

import (
	"errors"

	"github.com/PabloPavan/pharmaerp_api/internal/db"
)

var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNoRows(err)
}

func isDuplicateDepartmentCode(err error) bool {
	return db.IsUniqueViolation(err, "departments_code_key")
}

func isDuplicateDivisionCode(err error) bool {
	return db.IsUniqueViolation(err, "divisions_code_key")
}

func isUnknownDepartment(err error) bool {
	return db.IsForeignKeyViolation(err, "divisions_department_id_fkey")
}
