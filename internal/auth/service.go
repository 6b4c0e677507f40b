package auth

import (
	"context"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal"
	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/identity"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
	"github.com/PabloPavan/pharmaerp_api/internal/users"
)

const TokenType = "Bearer"

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

type TokenManager interface {
	Issue(p identity.Principal) (string, time.Time, error)
	Validate(raw string) (identity.Principal, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

type Service struct {
	Users            UserStore
	Tokens           TokenManager
	LoginLimiter     RateLimiter
	PasswordVerifier func(hashed, plain string) error
}

type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

type LoginResult struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        *users.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if s.Users == nil || s.Tokens == nil {
		return LoginResult{}, apperrors.New(apperrors.KindInternal, "auth not configured")
	}

	username := strings.TrimSpace(strings.ToLower(input.Username))
	password := input.Password
	if username == "" || password == "" {
		return LoginResult{}, apperrors.New(apperrors.KindInvalidInput, "username and password are required")
	}

	if s.LoginLimiter != nil {
		if ip := strings.TrimSpace(input.ClientIP); ip != "" {
			if err := s.allow(ctx, "login:ip:"+ip); err != nil {
				return LoginResult{}, err
			}
		}
		if err := s.allow(ctx, "login:user:"+username); err != nil {
			return LoginResult{}, err
		}
	}

	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if users.IsNotFound(err) {
			return LoginResult{}, apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
		}
		return LoginResult{}, apperrors.Wrap(apperrors.KindInternal, "failed to load user", err)
	}

	verifier := s.PasswordVerifier
	if verifier == nil {
		verifier = internal.DefaultPasswordVerifier
	}

	_, span := telemetry.StartSpan(ctx, "auth.verify_password")
	err = verifier(u.PasswordHash, password)
	span.End()
	if err != nil {
		return LoginResult{}, apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	}
	if !u.IsActive {
		return LoginResult{}, apperrors.New(apperrors.KindUnauthorized, "account is disabled")
	}

	_, span = telemetry.StartSpan(ctx, "auth.issue_token")
	token, expiresAt, err := s.Tokens.Issue(u.Principal())
	telemetry.EndSpan(span, err)
	if err != nil {
		return LoginResult{}, apperrors.Wrap(apperrors.KindInternal, "failed to issue token", err)
	}

	if s.LoginLimiter != nil {
		_ = s.LoginLimiter.Reset(ctx, "login:user:"+username)
	}

	telemetry.LogInfo(ctx, "user logged in",
		telemetry.LogString("user.id", u.ID),
		telemetry.LogString("user.username", u.Username),
		telemetry.LogStrings("user.roles", u.Roles),
	)

	return LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		User:        u,
	}, nil
}

// Authenticate validates a bearer token and returns the principal it
// carries. It never touches storage.
func (s *Service) Authenticate(raw string) (identity.Principal, error) {
	if s.Tokens == nil {
		return identity.Principal{}, apperrors.New(apperrors.KindInternal, "auth not configured")
	}
	return s.Tokens.Validate(raw)
}

func (s *Service) allow(ctx context.Context, key string) error {
	allowed, retryAfter, err := s.LoginLimiter.Allow(ctx, key)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "rate limit error", err)
	}
	if !allowed {
		return apperrors.RateLimit("too many login attempts", retryAfter)
	}
	return nil
}
