package service

import "context"

// MailMessage is a single outbound email.
type MailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MailDelivery reports the outcome of a successful send.
// PreviewURL is only populated by transports that can expose the rendered
// message (the development sender); production SMTP leaves it empty.
type MailDelivery struct {
	MessageID  string
	PreviewURL string
}

// MailSender delivers transactional mail. Errors are returned to the caller
// rather than swallowed, so a failed reset mail is visible to the client.
type MailSender interface {
	Send(ctx context.Context, msg *MailMessage) (*MailDelivery, error)
}
