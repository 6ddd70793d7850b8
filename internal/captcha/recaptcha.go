// Package captcha gates public auth routes behind reCAPTCHA.
package captcha

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Verifier checks a client CAPTCHA response with the provider.
type Verifier interface {
	Verify(ctx context.Context, response, remoteIP string) (bool, error)
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// RecaptchaVerifier calls the reCAPTCHA siteverify endpoint.
type RecaptchaVerifier struct {
	secret  string
	url     string
	timeout time.Duration
}

// NewRecaptchaVerifier builds a verifier for secret against url.
func NewRecaptchaVerifier(secret, url string, timeout time.Duration) *RecaptchaVerifier {
	return &RecaptchaVerifier{secret: secret, url: url, timeout: timeout}
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, response, remoteIP string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("secret", v.secret)
	args.Set("response", response)
	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	agent := fiber.Post(v.url)
	agent.Form(args)
	if v.timeout > 0 {
		agent.Timeout(v.timeout)
	}
	if err := agent.Parse(); err != nil {
		return false, fmt.Errorf("recaptcha request: %w", err)
	}

	var out siteVerifyResponse
	status, _, errs := agent.Struct(&out)
	if len(errs) > 0 {
		return false, fmt.Errorf("recaptcha request: %w", errs[0])
	}
	if status != fiber.StatusOK {
		return false, fmt.Errorf("recaptcha responded %d", status)
	}
	return out.Success, nil
}
