// Package email delivers transactional mail for the authentication
// flows. Production traffic goes through Postmark; DevSender writes
// messages to disk for local inspection.
//
// Mailer sits on top of the transport and composes the actual
// verification and password-reset messages with their action links.
package email
