// Package singleuse issues and redeems one-shot secrets for password
// reset and email verification flows.
//
// A token is 256 bits of crypto/rand output, hex encoded. Only its
// bcrypt hash is persisted; the plaintext is returned exactly once at
// issue time and can never be recovered afterwards. Because the store
// holds hashes, redemption cannot look a token up directly; it scans
// the unused, unexpired rows for the purpose and verifies each
// candidate. That scan stays O(1) in practice: issuing a new token
// deletes all prior unused tokens for the same (user, purpose), so at
// most one live token per user exists at a time.
//
// Redemption is race-safe: marking a row used is an atomic
// compare-and-set in the store (UPDATE ... WHERE used_at IS NULL), and
// the service treats a lost race exactly like an unknown token. Two
// concurrent redemptions of the same token cannot both succeed.
package singleuse
