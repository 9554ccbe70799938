// Package markdown turns LLM answers into safe HTML: GitHub flavored
// markdown with hard line breaks, TeX math spans for client side rendering,
// syntax highlighted code blocks and a copy button per code block.
package markdown

import (
	"bytes"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrRender marks markup that could not be rendered.
var ErrRender = errors.New("markdown render error")

// Document is a rendered answer.
type Document struct {
	Source  string        `json:"source"`
	HTML    string        `json:"html"`
	Math    []Math        `json:"math,omitempty"`
	Buttons []*CopyButton `json:"-"`
}

// Renderer converts markdown to sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var classNames = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)

// NewRenderer returns a renderer with the explorer's settings.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, mathExtension{}),
		goldmark.WithRendererOptions(
			goldhtml.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(&codeRenderer{}, 100)),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classNames).OnElements("span", "code", "pre", "div")

	return &Renderer{md: md, policy: policy}
}

// Render converts src. Failures are marked with ErrRender.
func (r *Renderer) Render(src string) (*Document, error) {
	source := []byte(src)
	root := r.md.Parser().Parse(text.NewReader(source))
	maths := collectMath(root)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, root); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "convert markdown"), ErrRender)
	}

	out := r.policy.Sanitize(buf.String())

	withButtons, buttons, err := AttachCopyButtons(out)
	if err != nil {
		return nil, err
	}

	return &Document{
		Source:  src,
		HTML:    withButtons,
		Math:    maths,
		Buttons: buttons,
	}, nil
}
