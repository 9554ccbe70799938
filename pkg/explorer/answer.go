package explorer

import (
	"context"

	"github.com/OFFIS-RIT/kgview/pkg/ai"
	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/markdown"

	"github.com/cockroachdb/errors"
)

// Answer panel texts.
const (
	Querying      = "Querying model…"
	EmptyAnswer   = "(empty)"
	NoAnswer      = "(no AI response yet)"
	networkPrefix = "Couldn’t reach model proxy: "
	renderPrefix  = "Markdown render error: "
)

// ErrNoModel is reported when the controller has nowhere to send prompts.
var ErrNoModel = errors.New("no model configured")

// Answer is the model answer panel.
type Answer struct {
	Pending  bool                   `json:"pending,omitempty"`
	Markdown string                 `json:"markdown,omitempty"`
	HTML     string                 `json:"html,omitempty"`
	Buttons  []*markdown.CopyButton `json:"-"`
	Warning  string                 `json:"warning,omitempty"`
	Err      error                  `json:"-"`
}

// Text is what the panel shows when no HTML is available.
func (a Answer) Text() string {
	switch {
	case a.Pending:
		return Querying
	case a.Warning != "":
		return a.Warning
	default:
		return a.Markdown
	}
}

// ask issues prompt in the background. Callers hold c.mu.
func (c *Controller) ask(ctx context.Context, prompt string) {
	c.gen++
	gen := c.gen
	c.answer = Answer{Pending: true}
	c.dirty = true

	asker := c.asker
	if asker == nil {
		c.applyAnswer(answerEvent{gen: gen, prompt: prompt, err: ErrNoModel})
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		response, err := asker.Ask(ctx, client.AskRequest{Prompt: prompt})
		select {
		case c.events <- answerEvent{gen: gen, prompt: prompt, response: response, err: err}:
		case <-ctx.Done():
		case <-c.stopped:
		}
	}()
}

// applyAnswer shows a model response unless a newer request superseded it.
// Callers hold c.mu.
func (c *Controller) applyAnswer(ev answerEvent) {
	if ev.gen != c.gen {
		c.discarded++
		c.log.Debug("Discarding stale answer", "prompt", ai.FirstNWords(ev.prompt, 8))
		return
	}
	if ev.err != nil {
		c.log.Warn("Model request failed", "status", ai.StatusCode(ev.err), "err", ev.err)
		c.answer = Answer{Warning: networkPrefix + errors.UnwrapAll(ev.err).Error(), Err: ev.err}
		c.dirty = true
		return
	}
	response := ev.response
	if response == "" {
		response = EmptyAnswer
	}
	c.showMarkdown(response)
}

// showMarkdown renders md into the answer panel. Callers hold c.mu.
func (c *Controller) showMarkdown(md string) {
	c.dirty = true
	doc, err := c.renderer.Render(md)
	if err != nil {
		c.log.Warn("Failed to render answer", "err", err)
		c.answer = Answer{Markdown: md, Warning: renderPrefix + err.Error(), Err: err}
		return
	}
	c.answer = Answer{Markdown: doc.Source, HTML: doc.HTML, Buttons: doc.Buttons}
}

// Answer returns the answer panel.
func (c *Controller) Answer() Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answer
}

// CopyCode clicks the copy button of the i-th code block of the answer and
// returns the resulting label.
func (c *Controller) CopyCode(ctx context.Context, i int) string {
	c.mu.Lock()
	buttons := c.answer.Buttons
	cb := c.clipboard
	c.mu.Unlock()

	if i < 0 || i >= len(buttons) {
		return ""
	}
	b := buttons[i]
	if cb == nil {
		cb = noClipboard{}
	}
	if err := b.Click(ctx, cb); err != nil {
		c.log.Warn("Copy failed", "block", i, "err", err)
	}
	return b.Label()
}

type noClipboard struct{}

func (noClipboard) WriteText(context.Context, string) error {
	return errors.New("no clipboard available")
}
