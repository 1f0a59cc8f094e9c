// Package lockout tracks failed login attempts per account and decides
// when an account is temporarily locked.
//
// The guard is pure computation over an account's lockout state; it
// performs no I/O. Callers load the state from their user store, apply
// a transition (RecordFailure or RecordSuccess), and persist the result
// with an atomic single-row update so concurrent failures cannot lose
// increments.
//
// One intentional asymmetry: lock expiry does not reset the failure
// counter. An account unlocked by the passage of time is still one
// failure away from locking again; only a successful login clears the
// count. See TestGuard_CounterSurvivesLockExpiry.
package lockout
