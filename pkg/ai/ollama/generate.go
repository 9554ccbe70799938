package ollama

import (
	"context"
	"strings"

	"github.com/OFFIS-RIT/kgview/pkg/ai"

	"github.com/cockroachdb/errors"
	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

// contextFloor is Ollama's default context window; larger prompts raise
// num_ctx so they are not truncated.
const contextFloor = 4096

// GenerateCompletion sends a single prompt to the generate endpoint and
// returns the complete response text. Non-success answers are returned as
// *ai.StatusError carrying the upstream status code.
func (c *GraphOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.model,
		Temperature: ai.ExplainTemperature,
	}
	for _, o := range opts {
		o(&options)
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	stream := false
	req := &api.GenerateRequest{
		Model:   options.Model,
		Prompt:  prompt,
		System:  strings.Join(options.SystemPrompts, "\n\n"),
		Stream:  &stream,
		Options: map[string]any{"temperature": options.Temperature},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}
	if options.KeepAlive > 0 {
		req.KeepAlive = &api.Duration{Duration: options.KeepAlive}
	}

	if tokens, err := estimateContext(prompt, options); err == nil && tokens > contextFloor {
		req.Options["num_ctx"] = tokens
	}

	var final api.GenerateResponse
	err := c.Client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		final.Response += gr.Response
		if gr.Done {
			final.Done = true
			final.Metrics = gr.Metrics
		}
		return nil
	})
	if err != nil {
		var se api.StatusError
		if errors.As(err, &se) {
			msg := se.ErrorMessage
			if msg == "" {
				msg = se.Status
			}
			return "", &ai.StatusError{StatusCode: se.StatusCode, Message: msg}
		}
		return "", err
	}

	c.modifyMetrics(ai.ModelMetrics{
		Requests:     1,
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return ai.StripReasoning(final.Response), nil
}

// estimateContext approximates the context window a request needs: the
// prompt and system tokens, the generation budget and some slack.
func estimateContext(prompt string, options ai.GenerateOptions) (int, error) {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return 0, err
	}
	tokens := 200 + options.MaxTokens
	tokens += len(enc.Encode(prompt, nil, nil))
	for _, sp := range options.SystemPrompts {
		tokens += len(enc.Encode(sp, nil, nil))
	}
	return tokens, nil
}
