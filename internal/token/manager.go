package token

import (
	"errors"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the bearer token payload.
type Claims struct {
	jwt.RegisteredClaims
	Username     string   `json:"username"`
	Roles        []string `json:"roles"`
	DepartmentID string   `json:"department_id,omitempty"`
	Designation  string   `json:"designation,omitempty"`
}

// Manager issues and validates HS256 bearer tokens. Expiry is enforced
// without leeway.
type Manager struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      func() time.Time
}

var (
	ErrNoSecret  = errors.New("token secret not configured")
	ErrNoSubject = errors.New("principal has no user id")
)

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) ttl() time.Duration {
	if m.TTL <= 0 {
		return time.Hour
	}
	return m.TTL
}

func (m *Manager) Issue(p identity.Principal) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	if strings.TrimSpace(p.UserID) == "" {
		return "", time.Time{}, ErrNoSubject
	}

	now := m.now()
	exp := now.Add(m.ttl())

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Username:     p.Username,
		Roles:        p.Roles,
		DepartmentID: p.DepartmentID,
		Designation:  p.Designation,
	}
	if m.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Validate checks algorithm, signature, issuer, audience and expiry and
// returns the embedded principal. Every failure is an unauthorized app error.
func (m *Manager) Validate(raw string) (identity.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return identity.Principal{}, apperrors.New(apperrors.KindUnauthorized, "missing token")
	}
	if len(m.Secret) == 0 {
		return identity.Principal{}, apperrors.Wrap(apperrors.KindInternal, "token validation not configured", ErrNoSecret)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(m.now),
	}
	if m.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.Issuer))
	}
	if m.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.Audience))
	}
	parser := jwt.NewParser(opts...)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return m.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return identity.Principal{}, apperrors.Wrap(apperrors.KindUnauthorized, "token expired", err)
		}
		return identity.Principal{}, apperrors.Wrap(apperrors.KindUnauthorized, "invalid token", err)
	}
	if !tok.Valid || strings.TrimSpace(claims.Subject) == "" {
		return identity.Principal{}, apperrors.New(apperrors.KindUnauthorized, "invalid token")
	}

	return identity.Principal{
		UserID:       claims.Subject,
		Username:     claims.Username,
		Roles:        claims.Roles,
		DepartmentID: claims.DepartmentID,
		Designation:  claims.Designation,
	}, nil
}
