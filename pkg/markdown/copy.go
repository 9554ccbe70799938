package markdown

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Copy button labels.
const (
	CopyLabel   = "Copy"
	CopiedLabel = "Copied!"
	FailedLabel = "Failed"

	// CopyFeedback is how long a confirmation or failure label is shown.
	CopyFeedback = 1200 * time.Millisecond

	copyClass = "copy-btn"
)

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) *time.Timer

// CopyButton is the copy affordance attached to one rendered code block.
// Clicking it copies the block's text, flips the label to a confirmation
// and reverts it after CopyFeedback.
type CopyButton struct {
	mu    sync.Mutex
	label string
	text  string
	after AfterFunc
}

func newCopyButton(text string) *CopyButton {
	return &CopyButton{label: CopyLabel, text: text, after: time.AfterFunc}
}

// Text returns the code that is copied.
func (b *CopyButton) Text() string {
	return b.text
}

// Label returns the current button label.
func (b *CopyButton) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// SetAfterFunc replaces the scheduler used to revert the label.
func (b *CopyButton) SetAfterFunc(after AfterFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.after = after
}

// Click copies the code to cb. A failed copy shows FailedLabel and reverts to
// CopyLabel; the error is returned for logging only.
func (b *CopyButton) Click(ctx context.Context, cb Clipboard) error {
	err := cb.WriteText(ctx, b.text)

	b.mu.Lock()
	b.label = CopiedLabel
	if err != nil {
		b.label = FailedLabel
	}
	after := b.after
	b.mu.Unlock()

	after(CopyFeedback, func() {
		b.mu.Lock()
		b.label = CopyLabel
		b.mu.Unlock()
	})
	return err
}

// AttachCopyButtons appends a copy button to every <pre> of an HTML fragment
// that does not have one yet, and returns the rewritten fragment with one
// CopyButton per code block in document order.
func AttachCopyButtons(fragment string) (string, []*CopyButton, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", nil, errors.Mark(errors.Wrap(err, "parse rendered html"), ErrRender)
	}

	var buttons []*CopyButton
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
			if !hasCopyButton(n) {
				btn := newCopyButton(codeText(n))
				buttons = append(buttons, btn)
				n.AppendChild(buttonNode())
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var out strings.Builder
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&out, n); err != nil {
			return "", nil, errors.Mark(errors.Wrap(err, "render html"), ErrRender)
		}
	}
	return out.String(), buttons, nil
}

func buttonNode() *html.Node {
	btn := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr: []html.Attribute{
			{Key: "class", Val: copyClass},
			{Key: "type", Val: "button"},
		},
	}
	btn.AppendChild(&html.Node{Type: html.TextNode, Data: CopyLabel})
	return btn
}

func hasCopyButton(pre *html.Node) bool {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Button {
			continue
		}
		for _, a := range c.Attr {
			if a.Key == "class" && strings.Contains(a.Val, copyClass) {
				return true
			}
		}
	}
	return false
}

// codeText is the text of the <code> child of pre, or of pre itself.
func codeText(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			return textContent(c)
		}
	}
	return textContent(pre)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
