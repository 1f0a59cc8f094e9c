// Package totp implements time-based one-time passwords (RFC 6238) and
// single-use backup codes for two-factor authentication.
//
// Everything is built on standard library crypto: secret generation,
// HOTP dynamic truncation (RFC 4226), the otpauth:// provisioning URI
// consumed by authenticator apps, and backup code creation/hashing.
// There is no third-party OTP dependency.
//
// Validation accepts the two time steps on either side of the current
// one, a fixed ±60 second tolerance for device clock skew. The window
// is deliberate and bounded: five 30-second steps, nothing open-ended.
//
// A malformed secret degrades to "no match": code generation returns
// the sentinel "000000" alongside the error, and validation simply
// reports false. Authentication paths stay crash-free on bad stored
// data.
//
// Backup codes are 8-character uppercase alphanumeric strings, stored
// only as SHA-256 hashes and redeemable exactly once each. Redemption
// matches by hash, so the store can remove exactly the matched entry
// with a conditional update.
package totp
