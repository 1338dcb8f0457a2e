package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog. El nivel depende del status:
// 5xx error, 4xx warn, resto info.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// deja que el ErrorHandler de Fiber escriba la respuesta antes de leer el status
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := zerolog.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zerolog.WarnLevel
		}

		ev := log.WithLevel(level).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if companyID := GetCompanyID(c); companyID != "" {
			ev = ev.Str("company_id", companyID)
		}
		if userID := GetUserID(c); userID != "" {
			ev = ev.Str("user_id", userID)
		}
		if chainErr != nil {
			ev = ev.Err(chainErr)
		}
		ev.Msg("http")
		return nil
	}
}
