// Package auth orchestrates the authentication flows: login with
// lockout enforcement, optional TOTP second factor, registration with
// email verification, password reset and change, and refresh-token
// renewal.
//
// The service holds no global state and no notion of a current user.
// It is constructed with explicit dependencies and the acting
// principal flows through method parameters, so two requests for
// different users can never observe each other.
//
// Error discipline: lookups that would reveal whether an email is
// registered collapse into ErrInvalidCredentials (login) or a silent
// success (password reset request). Lockout is the deliberate
// exception; a locked account reports ErrAccountLocked so the user
// understands why a correct password stopped working.
package auth
