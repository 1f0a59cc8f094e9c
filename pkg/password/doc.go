// Package password provides one-way password hashing and verification
// built on bcrypt.
//
// Every hash embeds a per-call random salt and the cost factor, so the
// stored string is self-describing and verification needs no extra
// state. Verification is deliberately forgiving: a malformed or
// truncated hash yields "no match" rather than an error, which keeps
// login code paths exception-free.
//
// Usage:
//
//	hasher := password.New(password.WithCost(12))
//	hash, err := hasher.Hash("s3cret-Passw0rd")
//	if err != nil {
//		// entropy exhaustion or cost misconfiguration
//	}
//	ok := hasher.Verify("s3cret-Passw0rd", hash) // true
package password
