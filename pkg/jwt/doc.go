// Package jwt implements compact HMAC-SHA256 signed bearer tokens for
// access and refresh credentials.
//
// The wire format is JWT-shaped (three dot-separated base64url
// segments, header.claims.signature) but is produced and verified with
// standard library crypto only. Keeping the scheme dependency-free
// makes it auditable end to end and avoids coupling token validity to a
// third-party library's parsing behavior.
//
// Access and refresh tokens are signed with different secrets. A token
// minted for one purpose can never validate under the verifier for the
// other: the signatures do not match, and the type claim is checked as
// a second gate. Tokens are stateless and self-verifying, so validation
// requires no storage round-trip and scales horizontally.
//
// Verification order matters: the signature is recomputed and compared
// in constant time before the payload is decoded. Claims from an
// unauthenticated token are never inspected.
package jwt
