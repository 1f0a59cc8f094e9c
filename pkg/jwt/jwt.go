package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Header constants per RFC 7515. Only HS256 is ever produced or
// accepted; rejecting everything else closes algorithm-confusion
// attacks by construction.
const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

// Purpose scopes a token to one of the two credential roles. Each
// purpose is signed with its own secret.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// Default token lifetimes. Access tokens are short-lived because they
// cannot be revoked; refresh tokens trade longevity for a separate
// signing secret.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the authenticated payload carried by every token.
// Timestamps are Unix seconds.
type Claims struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email,omitempty"`
	Role      string  `json:"role,omitempty"`
	Type      Purpose `json:"type"`
	IssuedAt  int64   `json:"iat"`
	ExpiresAt int64   `json:"exp"`
}

// Service issues and verifies purpose-scoped tokens.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// now is swapped in tests to exercise expiry boundaries.
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
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

// New creates a token service. Both secrets are required and must
// differ: a leaked refresh secret must not be able to mint access
// tokens, and vice versa.
func New(accessSecret, refreshSecret string, opts ...Option) (*Service, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if accessSecret == refreshSecret {
		return nil, ErrIdenticalSecrets
	}

	s := &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs claims for the given purpose. IssuedAt and ExpiresAt are
// stamped from the service clock; any values already present on the
// claims are overwritten. The Type claim is forced to the purpose.
func (s *Service) Issue(claims Claims, purpose Purpose) (string, error) {
	secret, ttl, err := s.purposeParams(purpose)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims.Type = purpose
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()

	headerJSON, err := json.Marshal(header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payload := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(claimsJSON)

	return payload + "." + sign(payload, secret), nil
}

// Verify checks a token against the secret for purpose and returns its
// claims. The signature is validated in constant time before any part
// of the payload is decoded; structural defects (segment count, bad
// base64, bad JSON) and signature mismatches all surface as
// ErrInvalidToken so callers cannot distinguish probe results.
func (s *Service) Verify(token string, purpose Purpose) (*Claims, error) {
	secret, _, err := s.purposeParams(purpose)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	expected := sign(payload, secret)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return nil, ErrInvalidToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return nil, ErrInvalidToken
	}
	if hdr.Algorithm != headerAlgorithm || hdr.Type != headerType {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt <= s.now().Unix() {
		return nil, ErrExpiredToken
	}
	if claims.Type != purpose {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

func (s *Service) purposeParams(purpose Purpose) ([]byte, time.Duration, error) {
	switch purpose {
	case PurposeAccess:
		return s.accessSecret, s.accessTTL, nil
	case PurposeRefresh:
		return s.refreshSecret, s.refreshTTL, nil
	default:
		return nil, 0, ErrInvalidPurpose
	}
}

// sign computes the base64url-encoded HMAC-SHA256 of payload.
func sign(payload string, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
