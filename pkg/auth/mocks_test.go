package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/billingkit/authkit/pkg/auth"
	"github.com/billingkit/authkit/pkg/lockout"
	"github.com/billingkit/authkit/pkg/singleuse"
)

// MockUserStore is a testify mock of auth.UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if account := args.Get(0); account != nil {
		return account.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if account := args.Get(0); account != nil {
		return account.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, account *auth.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockUserStore) UpdateSecurityFields(ctx context.Context, id uuid.UUID, update auth.SecurityUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockUserStore) RecordLoginFailure(ctx context.Context, id uuid.UUID, policy lockout.Config) (lockout.State, error) {
	args := m.Called(ctx, id, policy)
	return args.Get(0).(lockout.State), args.Error(1)
}

func (m *MockUserStore) ConsumeBackupCode(ctx context.Context, id uuid.UUID, codeHash string) (bool, error) {
	args := m.Called(ctx, id, codeHash)
	return args.Bool(0), args.Error(1)
}

// captureMailer records outbound messages instead of sending them.
type captureMailer struct {
	mu            sync.Mutex
	verifications map[string]string // recipient -> token
	resets        map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		verifications: make(map[string]string),
		resets:        make(map[string]string),
	}
}

func (c *captureMailer) SendVerificationEmail(_ context.Context, to, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifications[to] = token
	return nil
}

func (c *captureMailer) SendPasswordResetEmail(_ context.Context, to, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets[to] = token
	return nil
}

// memUserStore is an in-memory auth.UserStore for integration-style
// tests that exercise whole flows.
type memUserStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*auth.Account
}

func newMemUserStore() *memUserStore {
	return &memUserStore{accounts: make(map[uuid.UUID]*auth.Account)}
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *memUserStore) Create(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return auth.ErrEmailAlreadyExists
		}
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *memUserStore) UpdateSecurityFields(_ context.Context, id uuid.UUID, update auth.SecurityUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return auth.ErrAccountNotFound
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	if update.EmailVerified != nil {
		account.EmailVerified = *update.EmailVerified
	}
	if update.TwoFactorEnabled != nil {
		account.TwoFactorEnabled = *update.TwoFactorEnabled
	}
	if update.TwoFactorSecret != nil {
		account.TwoFactorSecret = *update.TwoFactorSecret
	}
	if update.BackupCodes != nil {
		account.BackupCodes = update.BackupCodes
	}
	if update.FailedLoginAttempts != nil {
		account.FailedLoginAttempts = *update.FailedLoginAttempts
	}
	if update.ClearLockedUntil {
		account.LockedUntil = nil
	} else if update.LockedUntil != nil {
		account.LockedUntil = update.LockedUntil
	}
	if update.LastLogin != nil {
		account.LastLogin = update.LastLogin
	}
	return nil
}

func (s *memUserStore) RecordLoginFailure(_ context.Context, id uuid.UUID, policy lockout.Config) (lockout.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return lockout.State{}, auth.ErrAccountNotFound
	}
	state := lockout.New(policy).RecordFailure(lockout.State{
		FailedAttempts: account.FailedLoginAttempts,
		LockedUntil:    account.LockedUntil,
		LastLogin:      account.LastLogin,
	}, time.Now())
	account.FailedLoginAttempts = state.FailedAttempts
	account.LockedUntil = state.LockedUntil
	return state, nil
}

func (s *memUserStore) ConsumeBackupCode(_ context.Context, id uuid.UUID, codeHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	for i, hash := range account.BackupCodes {
		if hash == codeHash {
			account.BackupCodes = append(account.BackupCodes[:i:i], account.BackupCodes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// memTokenStore is an in-memory singleuse.Store.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]singleuse.Token
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[uuid.UUID]singleuse.Token)}
}

func (s *memTokenStore) Insert(_ context.Context, token singleuse.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = token
	return nil
}

func (s *memTokenStore) DeleteUnused(_ context.Context, userID uuid.UUID, purpose singleuse.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, token := range s.tokens {
		if token.UserID == userID && token.Purpose == purpose && token.UsedAt == nil {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *memTokenStore) ListActive(_ context.Context, purpose singleuse.Purpose) ([]singleuse.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []singleuse.Token
	for _, token := range s.tokens {
		if token.Purpose == purpose && token.UsedAt == nil {
			active = append(active, token)
		}
	}
	return active, nil
}

func (s *memTokenStore) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[id]
	if !ok || token.UsedAt != nil {
		return false, nil
	}
	token.UsedAt = &usedAt
	s.tokens[id] = token
	return true, nil
}

func (s *memTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, token := range s.tokens {
		if !token.ExpiresAt.After(now) {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}
