package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(field.String()) != ""
	})
	validate.RegisterValidation("trimmedemail", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		email := strings.TrimSpace(field.String())
		if email == "" {
			return false
		}
		if len(email) > 254 {
			return false
		}
		return validate.Var(email, "email") == nil
	})
}

type validatable interface {
	Validate() error
}

// decodeJSON reads one JSON document into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst validatable) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.KindInvalidInput, "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperrors.New(apperrors.KindInvalidInput, "request body is required")
		}
		return apperrors.New(apperrors.KindInvalidInput, "invalid json")
	}
	if err := dst.Validate(); err != nil {
		return apperrors.New(apperrors.KindInvalidInput, err.Error())
	}
	return nil
}

type LoginDTO struct {
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *LoginDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Username": {"*": "username and password are required"},
			"Password": {"*": "username and password are required"},
		}, "invalid request")
	}
	return nil
}

type UserCreateDTO struct {
	Username     string   `json:"username" validate:"required,notblank,max=64"`
	Email        string   `json:"email" validate:"omitempty,trimmedemail"`
	Password     string   `json:"password" validate:"required,min=8,max=72"`
	FullName     string   `json:"fullName" validate:"max=120"`
	Roles        []string `json:"roles" validate:"max=5,dive,oneof=admin manager sales inventory viewer"`
	DepartmentID string   `json:"departmentId" validate:"max=64"`
	Designation  string   `json:"designation" validate:"max=80"`
}

func (r *UserCreateDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Username": {
				"required": "username and password are required",
				"notblank": "username and password are required",
				"max":      "username is too long",
			},
			"Email": {"trimmedemail": "invalid email"},
			"Password": {
				"required": "username and password are required",
				"min":      "password must be at least 8 characters",
				"max":      "password is too long",
			},
			"Roles":       {"*": "invalid role"},
			"FullName":    {"max": "fullName is too long"},
			"Designation": {"max": "designation is too long"},
		}, "invalid request")
	}
	return nil
}

type UserUpdateDTO struct {
	Email        *string   `json:"email,omitempty" validate:"omitempty,trimmedemail"`
	Password     *string   `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	FullName     *string   `json:"fullName,omitempty" validate:"omitempty,max=120"`
	Designation  *string   `json:"designation,omitempty" validate:"omitempty,max=80"`
	DepartmentID *string   `json:"departmentId,omitempty" validate:"omitempty,max=64"`
	Roles        *[]string `json:"roles,omitempty" validate:"omitempty,max=5,dive,oneof=admin manager sales inventory viewer"`
	IsActive     *bool     `json:"isActive,omitempty"`
}

func (r *UserUpdateDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Email":    {"trimmedemail": "invalid email"},
			"Password": {"min": "password must be at least 8 characters", "max": "password is too long"},
			"Roles":    {"*": "invalid role"},
		}, "invalid request")
	}
	return nil
}

type DepartmentDTO struct {
	Code string `json:"code" validate:"required,notblank,max=32"`
	Name string `json:"name" validate:"required,notblank,max=120"`
}

func (r *DepartmentDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, codeNameMessages, "invalid request")
	}
	return nil
}

type DivisionDTO struct {
	DepartmentID string `json:"departmentId" validate:"required,notblank"`
	Code         string `json:"code" validate:"required,notblank,max=32"`
	Name         string `json:"name" validate:"required,notblank,max=120"`
}

func (r *DivisionDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, withMessages(codeNameMessages, map[string]map[string]string{
			"DepartmentID": {"*": "departmentId is required"},
		}), "invalid request")
	}
	return nil
}

type DosageDTO struct {
	Code        string `json:"code" validate:"required,notblank,max=32"`
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Description string `json:"description" validate:"max=500"`
}

func (r *DosageDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, withMessages(codeNameMessages, map[string]map[string]string{
			"Description": {"max": "description is too long"},
		}), "invalid request")
	}
	return nil
}

type CustomerDTO struct {
	Code             string `json:"code" validate:"required,notblank,max=32"`
	Name             string `json:"name" validate:"required,notblank,max=120"`
	Email            string `json:"email" validate:"omitempty,trimmedemail"`
	Phone            string `json:"phone" validate:"max=32"`
	Address          string `json:"address" validate:"max=300"`
	City             string `json:"city" validate:"max=80"`
	CustomerType     string `json:"customerType" validate:"omitempty,oneof=retail wholesale hospital distributor"`
	CreditLimitCents int64  `json:"creditLimitCents" validate:"min=0"`
	IsActive         *bool  `json:"isActive,omitempty"`
}

func (r *CustomerDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, withMessages(codeNameMessages, map[string]map[string]string{
			"Email":            {"trimmedemail": "invalid email"},
			"Phone":            {"max": "phone is too long"},
			"Address":          {"max": "address is too long"},
			"City":             {"max": "city is too long"},
			"CustomerType":     {"oneof": "invalid customerType"},
			"CreditLimitCents": {"min": "creditLimitCents must not be negative"},
		}), "invalid request")
	}
	return nil
}

type ItemDTO struct {
	Code           string `json:"code" validate:"required,notblank,max=32"`
	Name           string `json:"name" validate:"required,notblank,max=120"`
	GenericName    string `json:"genericName" validate:"max=120"`
	DosageID       string `json:"dosageId" validate:"max=64"`
	Strength       string `json:"strength" validate:"max=40"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"min=0"`
	ReorderLevel   int    `json:"reorderLevel" validate:"min=0"`
	IsActive       *bool  `json:"isActive,omitempty"`
}

func (r *ItemDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, withMessages(codeNameMessages, map[string]map[string]string{
			"UnitPriceCents": {"min": "unitPriceCents must not be negative"},
			"ReorderLevel":   {"min": "reorderLevel must not be negative"},
		}), "invalid request")
	}
	return nil
}

type SalesOrderLineDTO struct {
	ItemID   string `json:"itemId" validate:"required,notblank"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=1000000"`
}

type SalesOrderCreateDTO struct {
	CustomerID string              `json:"customerId" validate:"required,notblank"`
	OrderDate  string              `json:"orderDate" validate:"omitempty,datetime=2006-01-02" example:"2026-03-02"`
	Notes      string              `json:"notes" validate:"max=1000"`
	Lines      []SalesOrderLineDTO `json:"lines" validate:"required,min=1,max=200,dive"`
}

func (r *SalesOrderCreateDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"CustomerID": {"*": "customerId is required"},
			"OrderDate":  {"datetime": "orderDate must be YYYY-MM-DD"},
			"Notes":      {"max": "notes are too long"},
			"Lines": {
				"required": "at least one line is required",
				"min":      "at least one line is required",
				"max":      "too many lines",
			},
			"ItemID":   {"*": "itemId is required on every line"},
			"Quantity": {"*": "quantity must be between 1 and 1000000"},
		}, "invalid request")
	}
	return nil
}

type SalesOrderStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=draft confirmed shipped cancelled"`
}

func (r *SalesOrderStatusDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.New("invalid status")
	}
	return nil
}

var codeNameMessages = map[string]map[string]string{
	"Code": {
		"required": "code and name are required",
		"notblank": "code and name are required",
		"max":      "code is too long",
	},
	"Name": {
		"required": "code and name are required",
		"notblank": "code and name are required",
		"max":      "name is too long",
	},
}

func withMessages(base, extra map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func validationMessage(err error, messages map[string]map[string]string, fallback string) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.New(fallback)
	}
	for _, valErr := range valErrs {
		if fieldMessages, ok := messages[valErr.Field()]; ok {
			if msg, ok := fieldMessages[valErr.Tag()]; ok {
				return errors.New(msg)
			}
			if msg, ok := fieldMessages["*"]; ok {
				return errors.New(msg)
			}
		}
	}
	return errors.New(fallback)
}

func queryBool(v url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, key+" must be a boolean")
	}
	return &b, nil
}

func queryDate(v url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, key+" must be YYYY-MM-DD")
	}
	return &t, nil
}
