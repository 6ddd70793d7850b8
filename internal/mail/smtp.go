package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/findteam/identity-service/internal/config"
)

// SMTPSender delivers messages over SMTP.
type SMTPSender struct {
	cfg      config.MailConfig
	composer *Composer
}

// NewSMTPSender builds an SMTPSender.
func NewSMTPSender(cfg config.MailConfig, composer *Composer) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPSender{cfg: cfg, composer: composer}, nil
}

func (s *SMTPSender) SendVerification(ctx context.Context, toEmail, displayName, code string) error {
	msg, err := s.composer.Verification(toEmail, displayName, code)
	if err != nil {
		return err
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.SMTPHost, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if msg.FromName != "" {
		if err := m.FromFormat(msg.FromName, msg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (s *SMTPSender) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(s.cfg.SMTPPort)}
	if s.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.cfg.Timeout))
	}

	if s.cfg.SMTPTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		// 465 is implicit TLS, everything else negotiates STARTTLS.
		if s.cfg.SMTPPort == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.SMTPUsername),
			gomail.WithPassword(s.cfg.SMTPPassword),
		)
	}
	return opts
}
