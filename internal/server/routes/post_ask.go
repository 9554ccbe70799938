package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgview/internal/server/middleware"
	"github.com/OFFIS-RIT/kgview/pkg/ai"
	"github.com/OFFIS-RIT/kgview/pkg/logger"

	"github.com/labstack/echo/v4"
)

// modelKeepAlive keeps a local model loaded between consecutive questions.
const modelKeepAlive = 5 * time.Minute

// AskHandler forwards a prompt to the configured model and returns its answer.
// Upstream failures keep their status code; transport failures become 500.
func AskHandler(c echo.Context) error {
	type askBody struct {
		Prompt      string   `json:"prompt"`
		Temperature *float64 `json:"temperature" validate:"omitempty,min=0,max=2"`
		MaxTokens   *int     `json:"max_tokens" validate:"omitempty,min=1"`
	}

	type askResponse struct {
		Response string `json:"response"`
	}

	data := new(askBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing prompt"})
	}
	if strings.TrimSpace(data.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing prompt"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	temperature := ai.ExplainTemperature
	if data.Temperature != nil {
		temperature = *data.Temperature
	}
	maxTokens := ai.ExplainMaxTokens
	if data.MaxTokens != nil {
		maxTokens = *data.MaxTokens
	}

	app := c.(*middleware.AppContext).App
	response, err := app.AiClient.GenerateCompletion(
		c.Request().Context(),
		data.Prompt,
		ai.WithTemperature(temperature),
		ai.WithMaxTokens(maxTokens),
		ai.WithKeepAlive(modelKeepAlive),
	)
	if err != nil {
		logger.Error("Model request failed", "prompt", ai.FirstNWords(data.Prompt, 12), "err", err)
		return c.JSON(ai.StatusCode(err), errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, askResponse{Response: response})
}

// AskMetricsHandler reports accumulated token usage of the model client.
func AskMetricsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.AiClient.GetMetrics())
}
