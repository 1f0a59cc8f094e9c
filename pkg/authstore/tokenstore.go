package authstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billingkit/authkit/pkg/singleuse"
)

// TokenStore is the Postgres-backed singleuse.Store.
type TokenStore struct {
	pool *pgxpool.Pool
}

// NewTokenStore creates a TokenStore over an established pool.
func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) Insert(ctx context.Context, token singleuse.Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO single_use_tokens (id, user_id, purpose, token_hash, expires_at, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		token.ID, token.UserID, string(token.Purpose), token.TokenHash,
		token.ExpiresAt, token.UsedAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (s *TokenStore) DeleteUnused(ctx context.Context, userID uuid.UUID, purpose singleuse.Purpose) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM single_use_tokens WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL`,
		userID, string(purpose),
	)
	if err != nil {
		return fmt.Errorf("failed to delete unused tokens: %w", err)
	}
	return nil
}

func (s *TokenStore) ListActive(ctx context.Context, purpose singleuse.Purpose) ([]singleuse.Token, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, purpose, token_hash, expires_at, used_at, created_at
		FROM single_use_tokens
		WHERE purpose = $1 AND used_at IS NULL AND expires_at > now()`,
		string(purpose),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	tokens, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (singleuse.Token, error) {
		var token singleuse.Token
		err := row.Scan(&token.ID, &token.UserID, &token.Purpose, &token.TokenHash,
			&token.ExpiresAt, &token.UsedAt, &token.CreatedAt)
		return token, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tokens: %w", err)
	}
	return tokens, nil
}

// MarkUsed is the atomic consume guard: the WHERE clause only matches
// an unused row, so of any number of concurrent redeemers exactly one
// sees RowsAffected == 1.
func (s *TokenStore) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE single_use_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`,
		id, usedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark token used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM single_use_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
