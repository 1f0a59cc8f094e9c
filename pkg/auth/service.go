package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/billingkit/authkit/pkg/jwt"
	"github.com/billingkit/authkit/pkg/lockout"
	"github.com/billingkit/authkit/pkg/password"
	"github.com/billingkit/authkit/pkg/singleuse"
	"github.com/billingkit/authkit/pkg/validator"
)

// dummyHash is a valid bcrypt hash of an unknowable value. Login burns
// a verification against it when the email is unknown so the
// not-found path costs roughly the same as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Dependencies are the collaborators a Service is built from. All
// fields are required.
type Dependencies struct {
	Users  UserStore
	Tokens *singleuse.Service
	JWT    *jwt.Service
	Hasher *password.Hasher
	Mailer Mailer
}

// Service runs the authentication flows over a UserStore.
type Service struct {
	users  UserStore
	tokens *singleuse.Service
	jwt    *jwt.Service
	hasher *password.Hasher
	mailer Mailer
	guard  *lockout.Guard
	policy validator.PasswordPolicy
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPasswordPolicy overrides the password acceptance policy.
func WithPasswordPolicy(policy validator.PasswordPolicy) Option {
	return func(s *Service) {
		if policy.MinLength > 0 {
			s.policy = policy
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an auth Service. Every dependency is required; a nil
// collaborator is a wiring bug and fails construction.
func New(deps Dependencies, cfg Config, opts ...Option) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("auth: UserStore is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("auth: single-use token service is required")
	}
	if deps.JWT == nil {
		return nil, errors.New("auth: jwt service is required")
	}
	if deps.Hasher == nil {
		return nil, errors.New("auth: password hasher is required")
	}
	if deps.Mailer == nil {
		return nil, errors.New("auth: mailer is required")
	}
	if cfg.BackupCodeCount <= 0 {
		cfg.BackupCodeCount = 10
	}
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = "user"
	}
	if cfg.TotpIssuer == "" {
		cfg.TotpIssuer = "Billing Admin"
	}

	policy := validator.DefaultPasswordPolicy()
	if cfg.PasswordMinLength > 0 {
		policy.MinLength = cfg.PasswordMinLength
	}

	s := &Service{
		users:  deps.Users,
		tokens: deps.Tokens,
		jwt:    deps.JWT,
		hasher: deps.Hasher,
		mailer: deps.Mailer,
		guard:  lockout.New(cfg.Lockout),
		policy: policy,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// completeLogin resets the lockout state, stamps last_login and issues
// the token pair. Shared by the password-only and two-factor paths.
// A non-nil newPasswordHash rides along in the same update, used when
// the stored hash was produced at a lower cost than the hasher now
// runs at.
func (s *Service) completeLogin(ctx context.Context, account *Account, newPasswordHash *string) (*LoginResult, error) {
	now := s.now()
	state := s.guard.RecordSuccess(lockState(account), now)

	if err := s.users.UpdateSecurityFields(ctx, account.ID, SecurityUpdate{
		PasswordHash:        newPasswordHash,
		FailedLoginAttempts: &state.FailedAttempts,
		ClearLockedUntil:    true,
		LastLogin:           state.LastLogin,
	}); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	access, refresh, err := s.issueTokenPair(account)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login completed",
		slog.String("user_id", account.ID.String()),
	)

	return &LoginResult{
		UserID:       account.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Service) issueTokenPair(account *Account) (access, refresh string, err error) {
	claims := jwt.Claims{
		UserID: account.ID.String(),
		Email:  account.Email,
		Role:   account.Role,
	}
	access, err = s.jwt.Issue(claims, jwt.PurposeAccess)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err = s.jwt.Issue(claims, jwt.PurposeRefresh)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return access, refresh, nil
}

func lockState(account *Account) lockout.State {
	return lockout.State{
		FailedAttempts: account.FailedLoginAttempts,
		LockedUntil:    account.LockedUntil,
		LastLogin:      account.LastLogin,
	}
}
