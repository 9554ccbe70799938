package middleware

import (
	"github.com/OFFIS-RIT/kgview/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RequestID tags every request and response with a short nanoid.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: newRequestID,
	})
}

func newRequestID() string {
	id, err := gonanoid.Generate(requestIDAlphabet, 12)
	if err != nil {
		logger.Warn("Failed to generate request id", "err", err)
		return ""
	}
	return id
}

// RequestLogger logs one structured line per request through pkg/logger.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			kv := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "id", v.RequestID}
			if v.Error != nil {
				logger.Error("Request failed", append(kv, "err", v.Error)...)
				return nil
			}
			logger.Debug("Request", kv...)
			return nil
		},
	})
}
