package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/OFFIS-RIT/kgview/internal/server/middleware"
	"github.com/OFFIS-RIT/kgview/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// Options configures the HTTP surface.
type Options struct {
	Port string
	// StaticDir is served with an index.html fallback for unknown GETs.
	// Empty disables static files.
	StaticDir string
}

// New builds the echo instance with all middleware and routes registered.
func New(app *mid.App, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.RequestID())
	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(mid.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)

	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
				Root:  opts.StaticDir,
				Index: "index.html",
				HTML5: true,
			}))
		} else {
			logger.Warn("Static directory not found, serving API only", "dir", opts.StaticDir)
		}
	}

	return e
}

// Init serves until SIGINT or SIGTERM and then shuts down gracefully.
func Init(app *mid.App, opts Options) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := New(app, opts)

	go func() {
		port := opts.Port
		if port == "" {
			port = "3000"
		}
		logger.Info("Starting server", "name", app.KGName, "url", "http://localhost:"+port)
		logger.Info("Proxy", "target", app.ProxyTarget)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
