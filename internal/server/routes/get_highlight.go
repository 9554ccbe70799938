package routes

import (
	"bytes"
	"net/http"

	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/markdown"

	"github.com/labstack/echo/v4"
)

// HighlightStyleHandler serves the stylesheet for highlighted code blocks.
func HighlightStyleHandler(c echo.Context) error {
	var buf bytes.Buffer
	if err := markdown.StyleSheet(&buf); err != nil {
		logger.Error("Failed to render highlight stylesheet", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", buf.Bytes())
}
