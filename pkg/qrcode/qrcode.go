// Package qrcode renders provisioning QR codes, primarily for
// displaying otpauth:// enrollment URIs to authenticator apps.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent  = errors.New("qrcode: content cannot be empty")
	ErrEncodeFailure = errors.New("qrcode: failed to encode image")
)

// DefaultSize is the pixel edge length used when no size is given.
const DefaultSize = 256

// Generate renders content as a PNG QR code with medium error
// correction. A non-positive size falls back to DefaultSize.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return png, nil
}

// GenerateDataURI renders content as a data:image/png;base64 URI ready
// to drop into an <img> tag during 2FA enrollment.
func GenerateDataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
