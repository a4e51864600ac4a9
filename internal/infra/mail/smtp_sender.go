// Package mail implements the MailSender domain service over SMTP.
package mail

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"

	"passport/config"
	"passport/internal/domain/service"
)

// smtpSender delivers mail through a real SMTP transport.
// With DisableDelivery set it logs the message instead and hands back a
// preview URL, standing in for the throwaway test inbox the service used
// before it was rewritten.
type smtpSender struct {
	cfg    *config.MailConfig
	logger *slog.Logger
}

// NewSMTPSender is the constructor for smtpSender.
func NewSMTPSender(cfg *config.Config, logger *slog.Logger) (service.MailSender, error) {
	if cfg.Mail == nil {
		return nil, errors.New("mail configuration must be provided")
	}

	return &smtpSender{cfg: cfg.Mail, logger: logger}, nil
}

// Send delivers a single message. Delivery failures are returned to the
// caller, never swallowed.
func (s *smtpSender) Send(ctx context.Context, msg *service.MailMessage) (*service.MailDelivery, error) {
	messageID := uuid.NewString()

	if s.cfg.DisableDelivery {
		s.logger.Info("mail delivery disabled, message not sent",
			slog.String("messageID", messageID),
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
		)

		return &service.MailDelivery{
			MessageID:  messageID,
			PreviewURL: s.previewURL(messageID),
		}, nil
	}

	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, errors.Wrap(err, "invalid mail sender address")
	}
	if err := m.To(msg.To); err != nil {
		return nil, errors.Wrap(err, "invalid mail recipient address")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, errors.Wrap(err, "failed to send mail")
	}

	s.logger.Info("mail sent", slog.String("messageID", messageID), slog.String("to", msg.To))

	return &service.MailDelivery{MessageID: messageID}, nil
}

func (s *smtpSender) previewURL(messageID string) string {
	base := strings.TrimSuffix(s.cfg.PreviewBaseURL, "/")
	if base == "" {
		return ""
	}

	return base + "/" + messageID
}
