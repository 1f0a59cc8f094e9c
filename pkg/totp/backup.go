package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// DefaultBackupCodeCount is how many codes are issued per enrollment.
const DefaultBackupCodeCount = 10

// backupCodeLength is fixed at 8 characters: short enough to type from
// a printed sheet, 40+ bits of entropy over the 36-character alphabet.
const backupCodeLength = 8

const backupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateBackupCodes returns count random 8-character uppercase
// alphanumeric codes. Each is meant to be redeemable exactly once;
// callers persist only the hashes (HashBackupCode) and show the
// plaintext a single time.
func GenerateBackupCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidBackupCodeSize
	}

	codes := make([]string, count)
	buf := make([]byte, backupCodeLength)
	for i := range codes {
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrBackupCodeGeneration, err)
		}
		var b strings.Builder
		b.Grow(backupCodeLength)
		for _, c := range buf {
			b.WriteByte(backupCodeAlphabet[int(c)%len(backupCodeAlphabet)])
		}
		codes[i] = b.String()
	}
	return codes, nil
}

// HashBackupCode returns the hex SHA-256 of the case-normalized code.
// Backup codes carry far more entropy than passwords, so a fast hash is
// appropriate here where bcrypt would not be. Redemption compares
// hashes, so consumption can happen as a conditional removal at the
// store rather than an in-process set rewrite.
func HashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(normalizeBackupCode(code)))
	return hex.EncodeToString(sum[:])
}

func normalizeBackupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
