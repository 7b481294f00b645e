package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/prof-ramos/asof-site/internal/ports"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// RequireTLS refuses to send over a connection without STARTTLS.
	RequireTLS bool
	Timeout    time.Duration
}

// SMTPMailer delivers notifications through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	client *gomail.Client
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	policy := gomail.TLSOpportunistic
	if cfg.RequireTLS {
		policy = gomail.TLSMandatory
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(policy),
		gomail.WithTimeout(cfg.Timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	built, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, msg ports.MailMessage) (*gomail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("mail has no recipients")
	}
	out := gomail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail reply-to: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return out, nil
}

// LogMailer stands in when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	m.logger.InfoContext(ctx, "mail delivery skipped",
		"service", "asof-site",
		"module", "mail",
		"layer", "adapter",
		"operation", "send",
		"outcome", "logged",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
