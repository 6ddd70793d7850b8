// Package mail delivers account verification emails.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/findteam/identity-service/internal/config"
)

// Sender dispatches the verification email for a freshly registered account.
type Sender interface {
	SendVerification(ctx context.Context, toEmail, displayName, code string) error
}

// Message is a rendered email.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}

const verificationSubject = "Find Team - Verify your email address"

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, Verdana, sans-serif; color: #444444;">
    <h1>Welcome to Find Team <b>{{.Username}}</b>!</h1>
    <p><a target="_blank" href="{{.Link}}">Click here</a> to verify your email address.</p>
    <p>If the link does not work, paste this address into your browser:<br>{{.Link}}</p>
  </body>
</html>
`))

// Composer renders verification messages for a front-end origin.
type Composer struct {
	frontOrigin string
	from        string
	fromName    string
}

// NewComposer builds a Composer.
func NewComposer(frontOrigin, from, fromName string) *Composer {
	return &Composer{
		frontOrigin: strings.TrimSuffix(frontOrigin, "/"),
		from:        from,
		fromName:    fromName,
	}
}

// VerificationLink points the user at the web client's verify page.
func (c *Composer) VerificationLink(code string) string {
	return c.frontOrigin + "/verify?code=" + url.QueryEscape(code)
}

// Verification renders the verification email for toEmail.
func (c *Composer) Verification(toEmail, displayName, code string) (Message, error) {
	var body bytes.Buffer
	err := verificationTemplate.Execute(&body, struct {
		Username string
		Link     string
	}{Username: displayName, Link: c.VerificationLink(code)})
	if err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}
	return Message{
		From:     c.from,
		FromName: c.fromName,
		To:       toEmail,
		Subject:  verificationSubject,
		HTML:     body.String(),
	}, nil
}

// NewSender picks the transport configured in cfg.
func NewSender(cfg config.MailConfig, frontOrigin string, logger *zap.Logger) (Sender, error) {
	composer := NewComposer(frontOrigin, cfg.From, cfg.FromName)
	switch cfg.Transport {
	case config.MailTransportAPI:
		return NewAPISender(cfg, composer), nil
	case config.MailTransportSMTP:
		return NewSMTPSender(cfg, composer)
	case config.MailTransportLog, "":
		return NewLogSender(composer, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// LogSender writes the verification link to the log instead of sending mail.
type LogSender struct {
	composer *Composer
	logger   *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(composer *Composer, logger *zap.Logger) *LogSender {
	return &LogSender{composer: composer, logger: logger}
}

func (s *LogSender) SendVerification(_ context.Context, toEmail, displayName, code string) error {
	s.logger.Info("verification email (log transport)",
		zap.String("to", toEmail),
		zap.String("username", displayName),
		zap.String("link", s.composer.VerificationLink(code)))
	return nil
}
