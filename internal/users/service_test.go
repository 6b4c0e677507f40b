package users

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5/pgconn"
)

type storeStub struct {
	createFn func(ctx context.Context, u *User) error
	getFn    func(ctx context.Context, id string) (*User, error)
	countFn  func(ctx context.Context) (int64, error)
	listFn   func(ctx context.Context, f ListFilter) (paging.Result[User], error)
	updateFn func(ctx context.Context, u *UpdateUserRequest) error
	deleteFn func(ctx context.Context, id string) error
}

func (s *storeStub) Create(ctx context.Context, u *User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	return nil
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*User, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *storeStub) Count(ctx context.Context) (int64, error) {
	if s.countFn != nil {
		return s.countFn(ctx)
	}
	return 0, nil
}

func (s *storeStub) List(ctx context.Context, f ListFilter) (paging.Result[User], error) {
	if s.listFn != nil {
		return s.listFn(ctx, f)
	}
	return paging.NewResult[User](nil, 0, f.Filter), nil
}

func (s *storeStub) Update(ctx context.Context, u *UpdateUserRequest) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, u)
	}
	return nil
}

func (s *storeStub) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func asUser(id string, roles ...string) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: id, Username: id, Roles: roles})
}

func fakeHasher(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty")
	}
	return "hash:" + plain, nil
}

func TestServiceCreateUser(t *testing.T) {
	store := &storeStub{}
	svc := &Service{
		Store:          store,
		PasswordHasher: fakeHasher,
		IDGenerator: func() string {
			return "usr_test"
		},
	}

	var got *User
	store.createFn = func(ctx context.Context, u *User) error {
		got = u
		return nil
	}

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "  Ana.Khan ",
		Email:    "ANA@ERP.LOCAL",
		Password: "secret-pass",
		Roles:    []string{"Sales", "manager", "sales"},
	})
	if err != nil {
		t.Fatalf("create user error: %v", err)
	}
	if u.ID != "usr_test" {
		t.Fatalf("unexpected id: %s", u.ID)
	}
	if got == nil || got.Username != "ana.khan" || got.Email != "ana@erp.local" {
		t.Fatalf("unexpected stored user: %+v", got)
	}
	if got.PasswordHash != "hash:secret-pass" {
		t.Fatalf("unexpected password hash: %s", got.PasswordHash)
	}
	if !reflect.DeepEqual(got.Roles, []string{"manager", "sales"}) {
		t.Fatalf("unexpected roles: %v", got.Roles)
	}
}

func TestServiceCreateDefaultsToViewer(t *testing.T) {
	svc := &Service{Store: &storeStub{}, PasswordHasher: fakeHasher}

	u, err := svc.Create(context.Background(), CreateUserRequest{Username: "bilal", Password: "12345678"})
	if err != nil {
		t.Fatalf("create user error: %v", err)
	}
	if !reflect.DeepEqual(u.Roles, []string{identity.RoleViewer}) {
		t.Fatalf("unexpected roles: %v", u.Roles)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := &Service{Store: &storeStub{}, PasswordHasher: fakeHasher}

	tests := []CreateUserRequest{
		{Username: "", Password: "12345678"},
		{Username: "ana", Password: "short"},
		{Username: "ana", Password: "12345678", Roles: []string{"superuser"}},
	}
	for _, req := range tests {
		_, err := svc.Create(context.Background(), req)
		assertKind(t, err, apperrors.KindInvalidInput)
	}
}

func TestServiceCreateConflict(t *testing.T) {
	store := &storeStub{createFn: func(ctx context.Context, u *User) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	}}
	svc := &Service{Store: store, PasswordHasher: fakeHasher}

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "ana", Password: "12345678"})
	assertKind(t, err, apperrors.KindConflict)
}

func TestServiceEnsureAdmin(t *testing.T) {
	store := &storeStub{}
	svc := &Service{Store: store, PasswordHasher: fakeHasher}

	var created *User
	store.createFn = func(ctx context.Context, u *User) error {
		created = u
		return nil
	}

	ok, err := svc.EnsureAdmin(context.Background(), "admin", "change-me-now")
	if err != nil || !ok {
		t.Fatalf("ensure admin: ok=%v err=%v", ok, err)
	}
	if created == nil || !reflect.DeepEqual(created.Roles, []string{identity.RoleAdmin}) {
		t.Fatalf("unexpected admin: %+v", created)
	}

	store.countFn = func(ctx context.Context) (int64, error) { return 3, nil }
	created = nil
	ok, err = svc.EnsureAdmin(context.Background(), "admin", "change-me-now")
	if err != nil || ok || created != nil {
		t.Fatalf("expected no-op when users exist: ok=%v err=%v", ok, err)
	}
}

func TestServiceListRequiresAdmin(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	_, err := svc.List(asUser("usr_1", identity.RoleSales), ListFilter{})
	assertKind(t, err, apperrors.KindForbidden)

	_, err = svc.List(context.Background(), ListFilter{})
	assertKind(t, err, apperrors.KindUnauthorized)
}

func TestServiceListNormalizesRole(t *testing.T) {
	store := &storeStub{}
	svc := &Service{Store: store}

	var got ListFilter
	store.listFn = func(ctx context.Context, f ListFilter) (paging.Result[User], error) {
		got = f
		return paging.NewResult[User](nil, 0, f.Filter), nil
	}

	res, err := svc.List(asUser("usr_1", identity.RoleAdmin), ListFilter{Role: " Sales "})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if got.Role != "sales" {
		t.Fatalf("unexpected role filter: %q", got.Role)
	}
	if res.Items == nil {
		t.Fatal("items must not be nil")
	}

	_, err = svc.List(asUser("usr_1", identity.RoleAdmin), ListFilter{Role: "owner"})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestServiceUpdateSelf(t *testing.T) {
	store := &storeStub{}
	svc := &Service{Store: store}

	var got UpdateUserRequest
	store.updateFn = func(ctx context.Context, u *UpdateUserRequest) error {
		got = *u
		return nil
	}
	store.getFn = func(ctx context.Context, id string) (*User, error) {
		return &User{ID: id}, nil
	}

	email := "Updated@ERP.Local"
	u, err := svc.UpdateSelf(asUser("usr_1", identity.RoleSales), UpdateUserInput{Email: &email})
	if err != nil {
		t.Fatalf("update self error: %v", err)
	}
	if got.ID != "usr_1" || u.ID != "usr_1" {
		t.Fatalf("unexpected target id: %s", got.ID)
	}
	if got.Email == nil || *got.Email != "updated@erp.local" {
		t.Fatalf("unexpected email: %v", got.Email)
	}
}

func TestServiceUpdateSelfCannotEscalate(t *testing.T) {
	svc := &Service{Store: &storeStub{}}
	ctx := asUser("usr_1", identity.RoleSales)

	roles := []string{"admin"}
	_, err := svc.UpdateSelf(ctx, UpdateUserInput{Roles: &roles})
	assertKind(t, err, apperrors.KindForbidden)

	active := false
	_, err = svc.UpdateSelf(ctx, UpdateUserInput{IsActive: &active})
	assertKind(t, err, apperrors.KindForbidden)
}

func TestServiceUpdateByIDRequiresTarget(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	_, err := svc.UpdateByID(asUser("usr_1", identity.RoleAdmin), "", UpdateUserInput{})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestServiceUpdateByIDNotFound(t *testing.T) {
	store := &storeStub{updateFn: func(ctx context.Context, u *UpdateUserRequest) error {
		return ErrNotFound
	}}
	svc := &Service{Store: store}

	name := "New Name"
	_, err := svc.UpdateByID(asUser("usr_1", identity.RoleAdmin), "usr_9", UpdateUserInput{FullName: &name})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestServiceDelete(t *testing.T) {
	svc := &Service{Store: &storeStub{}}

	err := svc.DeleteByID(asUser("usr_1", identity.RoleSales), "usr_2")
	assertKind(t, err, apperrors.KindForbidden)

	err = svc.DeleteByID(asUser("usr_1", identity.RoleAdmin), "usr_1")
	assertKind(t, err, apperrors.KindInvalidInput)

	if err := svc.DeleteByID(asUser("usr_1", identity.RoleAdmin), "usr_2"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
}

func TestNormalizeRoles(t *testing.T) {
	roles, err := NormalizeRoles([]string{" Inventory", "", "admin", "inventory"})
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	if !reflect.DeepEqual(roles, []string{"admin", "inventory"}) {
		t.Fatalf("unexpected roles: %v", roles)
	}
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error kind %s", kind)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got: %v", err)
	}
	if appErr.Kind != kind {
		t.Fatalf("unexpected kind: %s", appErr.Kind)
	}
}
