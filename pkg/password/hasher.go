package password

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost balances login latency against brute-force resistance.
// Values of 10-12 are appropriate for interactive authentication.
const DefaultCost = 12

// Hasher hashes and verifies passwords using bcrypt.
// The zero value is not usable; construct with New.
type Hasher struct {
	cost int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost sets the bcrypt cost factor. Out-of-range values are clamped
// to the bcrypt-supported range so a misconfigured deployment degrades
// to a working (if slower or weaker) hasher instead of failing at runtime.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		if cost < bcrypt.MinCost {
			cost = bcrypt.MinCost
		}
		if cost > bcrypt.MaxCost {
			cost = bcrypt.MaxCost
		}
		h.cost = cost
	}
}

// New creates a Hasher with DefaultCost unless overridden by options.
func New(opts ...Option) *Hasher {
	h := &Hasher{cost: DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the bcrypt hash of password with a fresh random salt.
// The plaintext is never retained or logged.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. The
// comparison is performed by bcrypt itself and is safe against timing
// attacks. Malformed hashes report false rather than an error so that
// a corrupted credential row cannot crash an authentication flow.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether the stored hash was produced with a cost
// lower than the hasher's configured cost, signalling that the password
// should be re-hashed on next successful login.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}
