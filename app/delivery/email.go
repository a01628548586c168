package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type EmailTransport struct {
	config SMTPConfig
}

func NewEmailTransport(config SMTPConfig) (*EmailTransport, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if config.Port == 0 {
		config.Port = 587
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &EmailTransport{config: config}, nil
}

func (t *EmailTransport) Deliver(ctx context.Context, contact string, rulings []ruling.Ruling) error {
	msg, err := t.BuildMessage(contact, rulings)
	if err != nil {
		return err
	}

	client, err := t.newClient()
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", contact, err)
	}
	return nil
}

func (t *EmailTransport) BuildMessage(contact string, rulings []ruling.Ruling) (*mail.Msg, error) {
	digest, err := BuildDigest(rulings)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(t.config.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(contact); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(digest.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, digest.Markdown)
	msg.AddAlternativeString(mail.TypeTextHTML, digest.HTML)

	return msg, nil
}

func (t *EmailTransport) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.config.Port),
		mail.WithTimeout(t.config.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if t.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.config.Username),
			mail.WithPassword(t.config.Password),
		)
	}
	return mail.NewClient(t.config.Host, opts...)
}
