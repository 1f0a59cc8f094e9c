package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
)

// MailerConfig controls how the action links in outbound messages are
// built. AppURL is the public base URL of the application.
type MailerConfig struct {
	AppName          string `env:"APP_NAME" envDefault:"Billing Admin"`
	AppURL           string `env:"APP_URL,required"`
	VerificationPath string `env:"EMAIL_VERIFICATION_PATH" envDefault:"/auth/verify-email"`
	ResetPath        string `env:"EMAIL_RESET_PATH" envDefault:"/auth/reset-password"`
}

// Mailer composes the authentication messages and hands them to a
// transport.
type Mailer struct {
	sender Sender
	cfg    MailerConfig
}

// NewMailer wires a Mailer to a transport.
func NewMailer(sender Sender, cfg MailerConfig) (*Mailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if _, err := url.Parse(cfg.AppURL); err != nil || cfg.AppURL == "" {
		return nil, fmt.Errorf("%w: AppURL must be a valid URL", ErrInvalidConfig)
	}
	return &Mailer{sender: sender, cfg: cfg}, nil
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<p>Welcome to {{.AppName}}!</p>
<p>Confirm your email address to activate your account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>If you did not create this account, you can ignore this message.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>We received a request to reset your {{.AppName}} password.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link expires in one hour. If you did not request a reset, no
action is needed and your password remains unchanged.</p>
`))

type linkData struct {
	AppName string
	Link    string
}

// SendVerificationEmail sends the address-confirmation message. The
// token is the plaintext single-use token, embedded as a query param.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	link, err := m.actionLink(m.cfg.VerificationPath, token)
	if err != nil {
		return err
	}
	body, err := render(verificationTmpl, linkData{AppName: m.cfg.AppName, Link: link})
	if err != nil {
		return err
	}
	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  fmt.Sprintf("Verify your %s email", m.cfg.AppName),
		BodyHTML: body,
		Tag:      "email-verification",
	})
}

// SendPasswordResetEmail sends the reset message for a previously
// issued reset token.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link, err := m.actionLink(m.cfg.ResetPath, token)
	if err != nil {
		return err
	}
	body, err := render(resetTmpl, linkData{AppName: m.cfg.AppName, Link: link})
	if err != nil {
		return err
	}
	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  fmt.Sprintf("Reset your %s password", m.cfg.AppName),
		BodyHTML: body,
		Tag:      "password-reset",
	})
}

func (m *Mailer) actionLink(path, token string) (string, error) {
	u, err := url.Parse(m.cfg.AppURL)
	if err != nil {
		return "", fmt.Errorf("%w: AppURL: %v", ErrInvalidConfig, err)
	}
	u = u.JoinPath(path)
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func render(tmpl *template.Template, data linkData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderTemplate, err)
	}
	return buf.String(), nil
}
