package server

import (
	"github.com/OFFIS-RIT/kgview/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Graph routes
	e.GET("/graphs", routes.ListGraphsHandler)
	e.GET("/graphs/:name", routes.GetGraphHandler)
	e.POST("/graphs", routes.UploadGraphsHandler)

	// Model proxy routes
	e.POST("/ask", routes.AskHandler)
	e.GET("/ask/metrics", routes.AskMetricsHandler)

	e.GET("/highlight.css", routes.HighlightStyleHandler)
}
