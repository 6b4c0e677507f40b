package token

import (
	"testing"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

func newManager(now time.Time) *Manager {
	return &Manager{
		Secret:   []byte(testSecret),
		Issuer:   "pharmaerp-api",
		Audience: "pharmaerp-web",
		TTL:      time.Hour,
		Now:      func() time.Time { return now },
	}
}

func samplePrincipal() identity.Principal {
	return identity.Principal{
		UserID:       "usr_1",
		Username:     "ana",
		Roles:        []string{"sales", "manager"},
		DepartmentID: "dep_1",
		Designation:  "Area Manager",
	}
}

func TestIssueAndValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newManager(now)

	raw, exp, err := m.Issue(samplePrincipal())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", exp)
	}

	p, err := m.Validate(raw)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if p.UserID != "usr_1" || p.Username != "ana" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if len(p.Roles) != 2 || p.Roles[1] != "manager" {
		t.Fatalf("unexpected roles: %v", p.Roles)
	}
	if p.DepartmentID != "dep_1" || p.Designation != "Area Manager" {
		t.Fatalf("unexpected optional claims: %+v", p)
	}
}

func TestValidateExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, _, err := newManager(issued).Issue(samplePrincipal())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	cases := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "one second before expiry", at: issued.Add(time.Hour - time.Second), wantErr: false},
		{name: "exactly at expiry", at: issued.Add(time.Hour), wantErr: true},
		{name: "one second after expiry", at: issued.Add(time.Hour + time.Second), wantErr: true},
		{name: "a day later", at: issued.Add(24 * time.Hour), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newManager(tc.at).Validate(raw)
			if tc.wantErr {
				assertKind(t, err, apperrors.KindUnauthorized)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newManager(now)
	valid, _, err := m.Issue(samplePrincipal())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	otherSecret := newManager(now)
	otherSecret.Secret = []byte("another-secret-another-secret-000000")
	forged, _, _ := otherSecret.Issue(samplePrincipal())

	otherIssuer := newManager(now)
	otherIssuer.Issuer = "someone-else"
	wrongIss, _, _ := otherIssuer.Issue(samplePrincipal())

	otherAudience := newManager(now)
	otherAudience.Audience = "mobile"
	wrongAud, _, _ := otherAudience.Issue(samplePrincipal())

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "usr_1",
			Issuer:   m.Issuer,
			Audience: jwt.ClaimStrings{m.Audience},
		},
	})
	noExpRaw, _ := noExp.SignedString(m.Secret)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr_1",
			Issuer:    m.Issuer,
			Audience:  jwt.ClaimStrings{m.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	hs512Raw, _ := hs512.SignedString(m.Secret)

	cases := map[string]string{
		"empty":            "",
		"garbage":          "not-a-token",
		"wrong signature":  forged,
		"wrong issuer":     wrongIss,
		"wrong audience":   wrongAud,
		"missing exp":      noExpRaw,
		"unexpected alg":   hs512Raw,
		"tampered payload": valid[:len(valid)-2] + "xx",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(raw)
			assertKind(t, err, apperrors.KindUnauthorized)
		})
	}
}

func TestIssueRequiresSecretAndSubject(t *testing.T) {
	m := &Manager{}
	if _, _, err := m.Issue(samplePrincipal()); err != ErrNoSecret {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}

	m.Secret = []byte(testSecret)
	if _, _, err := m.Issue(identity.Principal{Username: "ana"}); err != ErrNoSubject {
		t.Fatalf("expected ErrNoSubject, got %v", err)
	}
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error kind %s", kind)
	}
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("unexpected kind: %s (%v)", got, err)
	}
}
