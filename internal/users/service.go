package users

import (
	"context"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
)

const minPasswordLen = 8

type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, f ListFilter) (paging.Result[User], error)
	Update(ctx context.Context, u *UpdateUserRequest) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	Store          Store
	PasswordHasher func(plain string) (string, error)
	IDGenerator    func() string
}

type UpdateUserInput struct {
	Email        *string
	Password     *string
	FullName     *string
	Designation  *string
	DepartmentID *string
	Roles        *[]string
	IsActive     *bool
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "users store not configured")
	}

	username := strings.TrimSpace(strings.ToLower(req.Username))
	if username == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "username is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, apperrors.New(apperrors.KindInvalidInput, "password must be at least 8 characters")
	}
	roles, err := NormalizeRoles(req.Roles)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, err.Error())
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "usr_" + internal.RandomHex(12)
		}
	}

	u := &User{
		ID:           idGen(),
		Username:     username,
		Email:        strings.TrimSpace(strings.ToLower(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Roles:        roles,
		DepartmentID: strings.TrimSpace(req.DepartmentID),
		Designation:  strings.TrimSpace(req.Designation),
	}

	if err := s.Store.Create(ctx, u); err != nil {
		if IsUniqueViolationUsername(err) {
			return nil, apperrors.New(apperrors.KindConflict, "username already exists")
		}
		if IsUnknownDepartment(err) {
			return nil, apperrors.New(apperrors.KindInvalidInput, "department does not exist")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create user", err)
	}

	return u, nil
}

// EnsureAdmin creates an admin account when the users table is empty. It
// reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if s.Store == nil {
		return false, apperrors.New(apperrors.KindInternal, "users store not configured")
	}
	n, err := s.Store.Count(ctx)
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindInternal, "failed to count users", err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, CreateUserRequest{
		Username: username,
		Password: password,
		FullName: "Administrator",
		Roles:    []string{identity.RoleAdmin},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "users store not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "user id is required")
	}

	u, err := s.Store.GetByID(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.New(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load user", err)
	}
	return u, nil
}

func (s *Service) Me(ctx context.Context) (*User, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	return s.GetByID(ctx, userID)
}

func (s *Service) List(ctx context.Context, f ListFilter) (paging.Result[User], error) {
	if s.Store == nil {
		return paging.Result[User]{}, apperrors.New(apperrors.KindInternal, "users store not configured")
	}
	if _, ok := identity.UserID(ctx); !ok {
		return paging.Result[User]{}, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	if !identity.IsAdmin(ctx) {
		return paging.Result[User]{}, apperrors.New(apperrors.KindForbidden, "forbidden")
	}

	f.Role = strings.ToLower(strings.TrimSpace(f.Role))
	if f.Role != "" && !ValidRole(f.Role) {
		return paging.Result[User]{}, apperrors.New(apperrors.KindInvalidInput, "invalid role")
	}

	res, err := s.Store.List(ctx, f)
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvalidInput) {
			return paging.Result[User]{}, err
		}
		return paging.Result[User]{}, apperrors.Wrap(apperrors.KindInternal, "failed to list users", err)
	}
	return res, nil
}

func (s *Service) UpdateSelf(ctx context.Context, input UpdateUserInput) (*User, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "users store not configured")
	}
	requesterID, ok := identity.UserID(ctx)
	if !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	return s.updateWithTarget(ctx, identity.IsAdmin(ctx), requesterID, input)
}

func (s *Service) UpdateByID(ctx context.Context, targetID string, input UpdateUserInput) (*User, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "users store not configured")
	}
	if _, ok := identity.UserID(ctx); !ok {
		return nil, apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(targetID) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if !identity.IsAdmin(ctx) {
		return nil, apperrors.New(apperrors.KindForbidden, "forbidden")
	}
	return s.updateWithTarget(ctx, true, targetID, input)
}

func (s *Service) updateWithTarget(ctx context.Context, isAdmin bool, targetID string, input UpdateUserInput) (*User, error) {
	if !isAdmin && (input.Roles != nil || input.IsActive != nil || input.DepartmentID != nil) {
		return nil, apperrors.New(apperrors.KindForbidden, "forbidden")
	}

	req := UpdateUserRequest{
		ID:       targetID,
		IsActive: input.IsActive,
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		req.Email = &email
	}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		req.FullName = &name
	}
	if input.Designation != nil {
		d := strings.TrimSpace(*input.Designation)
		req.Designation = &d
	}
	if input.DepartmentID != nil {
		d := strings.TrimSpace(*input.DepartmentID)
		req.DepartmentID = &d
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLen {
			return nil, apperrors.New(apperrors.KindInvalidInput, "password must be at least 8 characters")
		}
		hash, err := s.hash(*input.Password)
		if err != nil {
			return nil, err
		}
		req.PasswordHash = &hash
	}
	if input.Roles != nil {
		roles, err := NormalizeRoles(*input.Roles)
		if err != nil {
			return nil, apperrors.New(apperrors.KindInvalidInput, err.Error())
		}
		req.Roles = roles
	}

	if !req.empty() {
		if err := s.Store.Update(ctx, &req); err != nil {
			if IsNotFound(err) {
				return nil, apperrors.New(apperrors.KindNotFound, "user not found")
			}
			if IsUnknownDepartment(err) {
				return nil, apperrors.New(apperrors.KindInvalidInput, "department does not exist")
			}
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update user", err)
		}
	}

	return s.GetByID(ctx, targetID)
}

func (s *Service) DeleteByID(ctx context.Context, targetID string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "users store not configured")
	}
	requesterID, ok := identity.UserID(ctx)
	if !ok {
		return apperrors.New(apperrors.KindUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(targetID) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "id is required")
	}
	if !identity.IsAdmin(ctx) {
		return apperrors.New(apperrors.KindForbidden, "forbidden")
	}
	if requesterID == targetID {
		return apperrors.New(apperrors.KindInvalidInput, "cannot delete your own account")
	}

	if err := s.Store.Delete(ctx, targetID); err != nil {
		if IsNotFound(err) {
			return apperrors.New(apperrors.KindNotFound, "user not found")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete user", err)
	}
	return nil
}

func (s *Service) hash(plain string) (string, error) {
	hasher := s.PasswordHasher
	if hasher == nil {
		hasher = internal.DefaultPasswordHasher
	}
	hash, err := hasher(plain)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "failed to process password", err)
	}
	return hash, nil
}
