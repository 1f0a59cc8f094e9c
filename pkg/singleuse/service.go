package singleuse

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/billingkit/authkit/pkg/password"
)

// Purpose separates the token namespaces. Tokens issued for one purpose
// can never be redeemed for another.
type Purpose string

const (
	PurposePasswordReset     Purpose = "password_reset"
	PurposeEmailVerification Purpose = "email_verification"
)

// Default lifetimes. Reset tokens are short-lived because they grant
// account takeover; verification tokens last long enough to survive a
// slow inbox.
const (
	DefaultResetTTL        = 1 * time.Hour
	DefaultVerificationTTL = 24 * time.Hour
)

// tokenBytes is 256 bits of entropy, hex encoded to 64 characters,
// comfortably under bcrypt's 72-byte input limit.
const tokenBytes = 32

// Token is a persisted single-use token row. The plaintext never
// appears here; only TokenHash is stored.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Purpose   Purpose
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Store is the persistence contract. MarkUsed must be atomic: it
// reports whether this call transitioned the row from unused to used,
// and concurrent calls for the same row must not both report true.
type Store interface {
	Insert(ctx context.Context, token Token) error
	DeleteUnused(ctx context.Context, userID uuid.UUID, purpose Purpose) error
	ListActive(ctx context.Context, purpose Purpose) ([]Token, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service issues and redeems single-use tokens over a Store.
type Service struct {
	store           Store
	hasher          *password.Hasher
	logger          *slog.Logger
	resetTTL        time.Duration
	verificationTTL time.Duration
	now             func() time.Time
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

// WithResetTTL overrides the password reset token lifetime.
func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithVerificationTTL overrides the email verification token lifetime.
func WithVerificationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.verificationTTL = ttl
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

// New creates a single-use token service. The hasher is shared with
// password storage so tokens get the same adaptive-hash treatment as
// credentials.
func New(store Store, hasher *password.Hasher, opts ...Option) *Service {
	s := &Service{
		store:           store,
		hasher:          hasher,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		resetTTL:        DefaultResetTTL,
		verificationTTL: DefaultVerificationTTL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a fresh token for (userID, purpose) and returns its
// plaintext, the only time the plaintext ever exists outside the
// caller. Any prior unused tokens for the same user and purpose are
// deleted first, so issuing a replacement invalidates the original.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, purpose Purpose) (string, error) {
	ttl, err := s.ttl(purpose)
	if err != nil {
		return "", err
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Join(ErrTokenGenerate, err)
	}
	plaintext := hex.EncodeToString(raw)

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return "", errors.Join(ErrTokenGenerate, err)
	}

	if err := s.store.DeleteUnused(ctx, userID, purpose); err != nil {
		return "", fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	now := s.now()
	if err := s.store.Insert(ctx, Token{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return plaintext, nil
}

// Consume redeems a plaintext token for the given purpose and returns
// the owning user ID. Exactly one concurrent caller can win: the store
// level mark-used is a compare-and-set, and a lost race is
// indistinguishable from an unknown token.
func (s *Service) Consume(ctx context.Context, plaintext string, purpose Purpose) (uuid.UUID, error) {
	if _, err := s.ttl(purpose); err != nil {
		return uuid.Nil, err
	}
	if plaintext == "" {
		return uuid.Nil, ErrTokenNotFound
	}

	candidates, err := s.store.ListActive(ctx, purpose)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	now := s.now()
	for _, candidate := range candidates {
		if !candidate.ExpiresAt.After(now) {
			continue
		}
		if !s.hasher.Verify(plaintext, candidate.TokenHash) {
			continue
		}

		won, err := s.store.MarkUsed(ctx, candidate.ID, now)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to mark token used: %w", err)
		}
		if !won {
			return uuid.Nil, ErrTokenNotFound
		}
		return candidate.UserID, nil
	}

	return uuid.Nil, ErrTokenNotFound
}

// CleanupExpired deletes rows past their expiry regardless of use
// state. Hygiene only; expired tokens already fail Consume.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("expired single-use tokens removed",
			slog.Int64("deleted", deleted),
		)
	}
	return deleted, nil
}

func (s *Service) ttl(purpose Purpose) (time.Duration, error) {
	switch purpose {
	case PurposePasswordReset:
		return s.resetTTL, nil
	case PurposeEmailVerification:
		return s.verificationTTL, nil
	default:
		return 0, ErrInvalidPurpose
	}
}
