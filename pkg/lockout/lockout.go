package lockout

import (
	"time"
)

// Config controls the lockout policy.
type Config struct {
	MaxAttempts  int           `env:"LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`   // failures before the account locks
	LockDuration time.Duration `env:"LOCKOUT_DURATION" envDefault:"15m"`     // how long a locked account rejects logins
}

// State is the lockout-relevant slice of an account record.
type State struct {
	FailedAttempts int
	LockedUntil    *time.Time
	LastLogin      *time.Time
}

// Guard evaluates lockout state against a policy.
type Guard struct {
	cfg Config
}

// New creates a Guard. Non-positive policy values fall back to the
// documented defaults.
func New(cfg Config) *Guard {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = 15 * time.Minute
	}
	return &Guard{cfg: cfg}
}

// Config returns the active policy.
func (g *Guard) Config() Config {
	return g.cfg
}

// IsLocked reports whether the account rejects logins at instant now.
func (g *Guard) IsLocked(state State, now time.Time) bool {
	return state.LockedUntil != nil && state.LockedUntil.After(now)
}

// RecordFailure returns the state after one more failed attempt.
// Reaching MaxAttempts sets the lock deadline; the counter keeps
// incrementing past the threshold so repeated failures during a lock
// window extend nothing but remain visible in the record.
func (g *Guard) RecordFailure(state State, now time.Time) State {
	state.FailedAttempts++
	if state.FailedAttempts >= g.cfg.MaxAttempts {
		until := now.Add(g.cfg.LockDuration)
		state.LockedUntil = &until
	}
	return state
}

// RecordSuccess returns the state after a successful login: the
// counter resets, any lock clears, and the login timestamp is stamped.
func (g *Guard) RecordSuccess(state State, now time.Time) State {
	state.FailedAttempts = 0
	state.LockedUntil = nil
	state.LastLogin = &now
	return state
}
