package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/findteam/identity-service/internal/config"
)

// APISender posts messages to an HTTP mail relay as a basic-auth form.
type APISender struct {
	url         string
	appKey      string
	secretKey   string
	smtpAccount string
	timeout     time.Duration
	composer    *Composer
}

// NewAPISender builds an APISender.
func NewAPISender(cfg config.MailConfig, composer *Composer) *APISender {
	return &APISender{
		url:         cfg.APIURL,
		appKey:      cfg.APIAppKey,
		secretKey:   cfg.APISecretKey,
		smtpAccount: cfg.APISMTPAccount,
		timeout:     cfg.Timeout,
		composer:    composer,
	}
}

func (s *APISender) SendVerification(ctx context.Context, toEmail, displayName, code string) error {
	if s.url == "" || s.smtpAccount == "" {
		return fmt.Errorf("mail api not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.composer.Verification(toEmail, displayName, code)
	if err != nil {
		return err
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("subject", msg.Subject)
	args.Set("html", msg.HTML)
	args.Set("from", msg.From)
	args.Set("from_name", msg.FromName)
	// The relay addresses recipients as to[<email>]=<email>.
	args.Set("to["+msg.To+"]", msg.To)
	args.Set("smtp_account", s.smtpAccount)

	agent := fiber.Post(s.url)
	agent.BasicAuth(s.appKey, s.secretKey)
	agent.Form(args)
	if s.timeout > 0 {
		agent.Timeout(s.timeout)
	}
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("mail api request: %w", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("mail api request: %w", errs[0])
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("mail api responded %d: %s", status, truncate(body, 256))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
