package captcha

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/findteam/identity-service/pkg/util"
)

type captchaBody struct {
	ReCaptchaResponse string `json:"reCaptchaResponse"`
}

// Middleware rejects requests whose reCaptchaResponse is missing, replayed, or refused by
// the provider. A nil guard skips replay detection; Redis errors are logged and ignored.
func Middleware(verifier Verifier, guard *ReplayGuard, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body captchaBody
		if err := c.BodyParser(&body); err != nil || body.ReCaptchaResponse == "" || len(body.ReCaptchaResponse) > 2048 {
			return apperrors.ErrInvalidCaptcha
		}

		ctx := c.UserContext()
		if guard != nil {
			fresh, err := guard.FirstUse(ctx, body.ReCaptchaResponse)
			switch {
			case err != nil:
				logger.Warn("captcha replay guard unavailable", zap.Error(err))
			case !fresh:
				logger.Debug("captcha response replayed", zap.String("ip", c.IP()))
				return apperrors.ErrInvalidCaptcha
			}
		}

		ok, err := verifier.Verify(ctx, body.ReCaptchaResponse, c.IP())
		if err != nil {
			logger.Warn("captcha verification failed", zap.Error(err))
			return apperrors.ErrInvalidCaptcha
		}
		if !ok {
			return apperrors.ErrInvalidCaptcha
		}
		return c.Next()
	}
}

// Disabled lets every request through; used when RECAPTCHA_ENABLED=false.
func Disabled() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
