package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/kgview/internal/server/middleware"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/store"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// ListGraphsHandler returns the names of all stored graphs.
func ListGraphsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	names, err := app.Store.List(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list graphs", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, names)
}

// GetGraphHandler returns one stored graph document verbatim.
func GetGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	data, err := app.Store.Get(c.Request().Context(), c.Param("name"))
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
	}
	if err != nil {
		logger.Error("Failed to read graph", "name", c.Param("name"), "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}
