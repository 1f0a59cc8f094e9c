package email

import "errors"

var (
	ErrFailedToSend   = errors.New("email: failed to send email")
	ErrInvalidConfig  = errors.New("email: invalid config")
	ErrInvalidParams  = errors.New("email: invalid send params")
	ErrRenderTemplate = errors.New("email: failed to render template")
)
