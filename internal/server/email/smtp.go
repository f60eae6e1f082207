package email

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/accountd/accountd/internal/server/config"
)

// SMTPSender delivers emails over SMTP using go-mail. The confirmation
// links point at the configured public application URL.
type SMTPSender struct {
	client *mail.Client
	from   string
	appURL string
}

// NewSMTPSender builds an SMTP sender from the server configuration.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(cfg.EmailTimeout),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	} else {
		// Dev transports (mailpit etc.) speak plain SMTP without TLS.
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.EmailFrom, appURL: cfg.AppURL}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendEmailConfirmation(ctx context.Context, to, username, token string) error {
	body, err := renderTemplate("email_confirmation.html", templateData{
		Username: username,
		Link:     fmt.Sprintf("%s/api/auth/confirm-email?token=%s", s.appURL, token),
	})
	if err != nil {
		return err
	}
	return s.Send(ctx, to, "Confirm Your Email", body)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, username, token string) error {
	body, err := renderTemplate("password_reset.html", templateData{
		Username: username,
		Link:     fmt.Sprintf("%s/api/auth/reset-password?token=%s", s.appURL, token),
	})
	if err != nil {
		return err
	}
	return s.Send(ctx, to, "Reset Your Password", body)
}

func (s *SMTPSender) SendEmailChangeConfirmation(ctx context.Context, to, username, token string) error {
	body, err := renderTemplate("email_change.html", templateData{
		Username: username,
		Link:     fmt.Sprintf("%s/api/auth/confirm-email-change?token=%s", s.appURL, token),
	})
	if err != nil {
		return err
	}
	return s.Send(ctx, to, "Confirm Email Change", body)
}
