package routes

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/OFFIS-RIT/kgview/internal/server/middleware"
	"github.com/OFFIS-RIT/kgview/pkg/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// maxParallelWrites bounds concurrent storage writes of one upload.
const maxParallelWrites = 4

type uploadGraph struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// complete reports whether the entry has a name and a non-empty document.
func (g uploadGraph) complete() bool {
	if g.Name == "" {
		return false
	}
	switch string(bytes.TrimSpace(g.Data)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// UploadGraphsHandler stores every complete entry of the request, indented
// with two spaces. Incomplete entries are skipped silently.
func UploadGraphsHandler(c echo.Context) error {
	type uploadGraphsBody struct {
		Graphs []uploadGraph `json:"graphs" validate:"required,min=1"`
	}

	type uploadGraphsResponse struct {
		OK bool `json:"ok"`
	}

	data := new(uploadGraphsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "No graphs provided"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "No graphs provided"})
	}

	app := c.(*middleware.AppContext).App
	eg, ctx := errgroup.WithContext(c.Request().Context())
	eg.SetLimit(maxParallelWrites)
	for _, g := range data.Graphs {
		if !g.complete() {
			continue
		}
		eg.Go(func() error {
			var buf bytes.Buffer
			if err := json.Indent(&buf, g.Data, "", "  "); err != nil {
				return err
			}
			return app.Store.Put(ctx, g.Name, buf.Bytes())
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Error("Failed to store graphs", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, uploadGraphsResponse{OK: true})
}
