// Package mailer содержит отправку почтовых уведомлений через SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"gotasker/internal/config"
	svc "gotasker/internal/ports/services"
	"gotasker/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodSendWelcome = "SendWelcome"
	LogMethodSendGoodbye = "SendGoodbye"

	MsgMailerDisabled = "mailer disabled, skipping notification"
	MsgMailSent       = "notification sent"

	ErrorFailedToBuildMessage = "failed to build mail message"
	ErrorFailedToSendMessage  = "failed to send mail message"
	ErrorFailedToCreateClient = "failed to create smtp client"
)

// Темы и тексты уведомлений.
const (
	welcomeSubject = "Thank you for joining!"
	welcomeBody    = "Welcome to the app, %s. Let us know how you get along with it."

	goodbyeSubject = "Confirmation of Account Deletion"
	goodbyeBody    = "Goodbye, %s. We hope to see you back sometime soon."
)

// SMTPMailer отправляет уведомления через SMTP сервер.
// При пустом хосте отправка отключена и вызовы становятся no-op.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer создает новый экземпляр SMTPMailer.
func NewSMTPMailer(cfg *config.MailerConfig) (svc.MailerService, error) {
	if !cfg.Enabled() {
		return &SMTPMailer{}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedToCreateClient, err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// SendWelcome отправляет приветственное письмо новому пользователю.
func (m *SMTPMailer) SendWelcome(ctx context.Context, email, name string) error {
	return m.send(ctx, LogMethodSendWelcome, email, welcomeSubject, fmt.Sprintf(welcomeBody, name))
}

// SendGoodbye отправляет прощальное письмо удаленному пользователю.
func (m *SMTPMailer) SendGoodbye(ctx context.Context, email, name string) error {
	return m.send(ctx, LogMethodSendGoodbye, email, goodbyeSubject, fmt.Sprintf(goodbyeBody, name))
}

func (m *SMTPMailer) send(ctx context.Context, method, email, subject, body string) error {
	log := logger.Log(ctx).With(zap.String("method", method), zap.String("to", email))

	if m.client == nil {
		log.Debug(ctx, MsgMailerDisabled)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToBuildMessage, err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToBuildMessage, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error(ctx, ErrorFailedToSendMessage, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSendMessage, err)
	}

	log.Info(ctx, MsgMailSent, zap.String("subject", subject))
	return nil
}
