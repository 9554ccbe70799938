package middleware

import (
	"github.com/OFFIS-RIT/kgview/pkg/ai"
	"github.com/OFFIS-RIT/kgview/pkg/store"

	"github.com/labstack/echo/v4"
)

// App holds the dependencies shared by all handlers.
type App struct {
	Store    store.GraphStorage
	AiClient ai.GraphAIClient

	// KGName is the display name of the knowledge graph.
	KGName string
	// ProxyTarget is the model endpoint /ask forwards to, for the banner.
	ProxyTarget string
}

type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context so handlers can reach App.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
