package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Math is a TeX expression found in the source.
type Math struct {
	TeX     string `json:"tex"`
	Display bool   `json:"display"`
}

type delimiter struct {
	left, right []byte
	display     bool
}

// Same order as the client side auto-render: display forms first so that
// "$$" is never read as two empty inline spans.
var delimiters = []delimiter{
	{left: []byte("$$"), right: []byte("$$"), display: true},
	{left: []byte(`\[`), right: []byte(`\]`), display: true},
	{left: []byte(`\(`), right: []byte(`\)`), display: false},
	{left: []byte("$"), right: []byte("$"), display: false},
}

var (
	kindMath      = ast.NewNodeKind("Math")
	kindMathBlock = ast.NewNodeKind("MathBlock")
)

// mathNode is a TeX span. Its only child carries the expression as text, so
// image alt attributes keep it.
type mathNode struct {
	ast.BaseInline
	TeX     []byte
	Display bool
}

func newMathNode(tex []byte, display bool) *mathNode {
	n := &mathNode{TeX: tex, Display: display}
	s := ast.NewString(tex)
	s.SetRaw(true)
	n.AppendChild(n, s)
	return n
}

func (n *mathNode) Kind() ast.NodeKind {
	return kindMath
}

func (n *mathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"TeX": string(n.TeX)}, nil)
}

// mathBlock replaces a paragraph that holds nothing but display math.
type mathBlock struct {
	ast.BaseBlock
}

func (n *mathBlock) Kind() ast.NodeKind {
	return kindMathBlock
}

func (n *mathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// mathExtension parses TeX spans outside of code and links, and renders them
// as elements a TeX renderer picks up on the client.
type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(&mathParser{}, 150)),
		parser.WithASTTransformers(util.Prioritized(mathParagraphs{}, 100)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&mathRenderer{}, 100)),
	)
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	for _, d := range delimiters {
		if !bytes.HasPrefix(line, d.left) {
			continue
		}
		if tex, ok := scanMath(block, d); ok {
			return newMathNode(tex, d.display)
		}
	}
	return nil
}

// scanMath consumes one span opened by d. Inline spans end on their line;
// display spans may continue over following lines. On failure the reader is
// left where it was.
func scanMath(block text.Reader, d delimiter) ([]byte, bool) {
	line0, pos0 := block.Position()
	block.Advance(len(d.left))

	var tex []byte
	for {
		line, _ := block.PeekLine()
		if line == nil {
			break
		}
		if i := bytes.Index(line, d.right); i >= 0 {
			if i == 0 && len(tex) == 0 {
				break
			}
			tex = append(tex, line[:i]...)
			body := bytes.TrimSpace(tex)
			if len(body) == 0 {
				break
			}
			block.Advance(i + len(d.right))
			return body, true
		}
		if !d.display {
			break
		}
		tex = append(tex, line...)
		block.AdvanceLine()
	}

	block.SetPosition(line0, pos0)
	return nil, false
}

// mathParagraphs lifts paragraphs made of a single display span out of <p>.
type mathParagraphs struct{}

func (mathParagraphs) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var paras []*ast.Paragraph
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if p, ok := n.(*ast.Paragraph); ok && entering {
			paras = append(paras, p)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, p := range paras {
		m := soleDisplayMath(p, source)
		if m == nil {
			continue
		}
		b := &mathBlock{}
		b.SetBlankPreviousLines(p.HasBlankPreviousLines())
		p.Parent().ReplaceChild(p.Parent(), p, b)
		b.AppendChild(b, m)
	}
}

func soleDisplayMath(p *ast.Paragraph, source []byte) *mathNode {
	var found *mathNode
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *mathNode:
			if !c.Display || found != nil {
				return nil
			}
			found = c
		case *ast.Text:
			if !util.IsBlank(c.Segment.Value(source)) {
				return nil
			}
		default:
			return nil
		}
	}
	return found
}

type mathRenderer struct{}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindMath, r.renderMath)
	reg.Register(kindMathBlock, r.renderMathBlock)
}

func (r *mathRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*mathNode)
	if n.Display {
		_, _ = w.WriteString(`<span class="math math-display">\[` + html.EscapeString(string(n.TeX)) + `\]</span>`)
	} else {
		_, _ = w.WriteString(`<span class="math math-inline">\(` + html.EscapeString(string(n.TeX)) + `\)</span>`)
	}
	return ast.WalkSkipChildren, nil
}

func (r *mathRenderer) renderMathBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	if m, ok := node.FirstChild().(*mathNode); ok {
		_, _ = w.WriteString(`<div class="math math-display">\[` + html.EscapeString(string(m.TeX)) + "\\]</div>\n")
	}
	return ast.WalkSkipChildren, nil
}

// collectMath lists the rendered spans of doc in document order. Spans in
// image descriptions end up as plain alt text and are skipped.
func collectMath(doc ast.Node) []Math {
	var found []Math
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, ok := n.(*ast.Image); ok {
			return ast.WalkSkipChildren, nil
		}
		if m, ok := n.(*mathNode); ok && entering {
			found = append(found, Math{TeX: string(m.TeX), Display: m.Display})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}
