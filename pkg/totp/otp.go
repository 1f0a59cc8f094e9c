package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the code length produced and accepted.
	Digits = 6
	// Period is the time step in seconds (RFC 6238 standard).
	Period = 30
	// SkewSteps is how many steps either side of now are accepted during
	// validation: ±2 steps = ±60 seconds of device clock drift.
	SkewSteps = 2

	// secretBytes is 160 bits, the RFC 4226 recommended secret size.
	secretBytes = 20

	// sentinelCode is returned by code generation when the secret cannot
	// be decoded, so a corrupted secret verifies as "no match" instead
	// of aborting the authentication flow.
	sentinelCode = "000000"
)

var (
	base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

	secretRegex = regexp.MustCompile(`^[A-Z2-7]+$`)
	codeRegex   = regexp.MustCompile(`^[0-9]{6}$`)
)

// GenerateSecretKey returns a new 160-bit random secret encoded as
// unpadded base32 (RFC 4648 alphabet).
func GenerateSecretKey() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Join(ErrSecretGeneration, err)
	}
	return base32NoPad.EncodeToString(raw), nil
}

// ProvisioningParams describes an enrollment for URI generation.
type ProvisioningParams struct {
	Secret      string // base32 secret (required)
	AccountName string // user identifier, usually email (required)
	Issuer      string // service name shown in authenticator apps (required)
}

// ProvisioningURI builds the otpauth://totp URI understood by Google
// Authenticator, 1Password and compatible apps. QR rendering is the
// caller's concern.
func ProvisioningURI(params ProvisioningParams) (string, error) {
	if !secretRegex.MatchString(normalizeSecret(params.Secret)) {
		return "", ErrInvalidSecret
	}
	if params.AccountName == "" {
		return "", ErrMissingAccountName
	}
	if params.Issuer == "" {
		return "", ErrMissingIssuer
	}

	label := url.PathEscape(params.Issuer) + ":" + url.PathEscape(params.AccountName)

	query := url.Values{}
	query.Set("secret", normalizeSecret(params.Secret))
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return "otpauth://totp/" + label + "?" + query.Encode(), nil
}

// GenerateCode returns the 6-digit code for the current time step.
// On a malformed secret it returns the sentinel "000000" together with
// the error so the caller's comparison still fails closed.
func GenerateCode(secret string) (string, error) {
	return GenerateCodeAt(secret, time.Now())
}

// GenerateCodeAt returns the code for the time step containing t.
func GenerateCodeAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return sentinelCode, err
	}
	return hotp(key, t.Unix()/Period), nil
}

// Validate reports whether code is correct for secret within the skew
// window. It never returns an error: malformed input of any kind is a
// failed validation.
func Validate(secret, code string) bool {
	return ValidateAt(secret, code, time.Now())
}

// ValidateAt validates a code against the window around t.
func ValidateAt(secret, code string, t time.Time) bool {
	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return false
	}

	counter := t.Unix() / Period
	for step := int64(-SkewSteps); step <= SkewSteps; step++ {
		if counter+step < 0 {
			continue
		}
		expected := hotp(key, counter+step)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// hotp implements RFC 4226: HMAC-SHA1 over the big-endian 8-byte
// counter, dynamic truncation to 31 bits, reduced mod 10^Digits.
func hotp(key []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		int(sum[offset+3])&0xff

	mod := 1
	for i := 0; i < Digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", Digits, bin%mod)
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := normalizeSecret(secret)
	if !secretRegex.MatchString(normalized) {
		return nil, ErrInvalidSecret
	}
	key, err := base32NoPad.DecodeString(normalized)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

func normalizeSecret(secret string) string {
	return strings.TrimRight(strings.ToUpper(strings.TrimSpace(secret)), "=")
}
