package email

import (
	"context"
	"fmt"
	"net/mail"
)

// Sender is the transport boundary. Implementations deliver a single
// rendered message to a single recipient.
type Sender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams carries one outbound message.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks the params before handing them to a transport.
func (p SendEmailParams) Validate() error {
	if _, err := mail.ParseAddress(p.SendTo); err != nil {
		return fmt.Errorf("%w: recipient address %q", ErrInvalidParams, p.SendTo)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}
