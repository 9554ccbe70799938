package explorer

import (
	"io"
	"strings"

	"github.com/OFFIS-RIT/kgview/pkg/markdown"
)

// DemoMarkdown is rendered into the answer panel by SelfTest.
const DemoMarkdown = "### Markdown + Code + Math demo\n\n" +
	"```python\n" +
	"def bfs(G, s):\n" +
	"    from collections import deque\n" +
	"    q, seen = deque([s]), {s}\n" +
	"    while q:\n" +
	"        v = q.popleft()\n" +
	"        for w in G[v]:\n" +
	"            if w not in seen:\n" +
	"                seen.add(w); q.append(w)\n" +
	"    return seen\n" +
	"```\n\n" +
	"Euler’s formula: $V - E + F = 2$ \n\n" +
	"$$\\chi(G) \\ge \\frac{|V|}{\\alpha(G)}$$"

// Report is the outcome of SelfTest.
type Report struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues,omitempty"`
	Text   string   `json:"text"`
}

// SelfTest checks path search, adjacency, categories, the markdown pipeline
// and copy buttons against the loaded graph. Problems are collected in the
// report; the check itself never fails.
func (c *Controller) SelfTest() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	var issues []string
	if c.sim == nil {
		issues = append(issues, "simulation not created")
	}
	if p, err := c.g.ShortestPath("Graph", "Dijkstra", false); err != nil || len(p) < 2 {
		issues = append(issues, "shortestPath(Graph,Dijkstra) failed")
	}
	if _, err := c.g.ShortestPath("Topological Sort", "Graph", true); err != nil {
		issues = append(issues, "directed shortestPath failed (Topological Sort → Graph)")
	}
	if len(c.g.Neighbors("Graph")) == 0 {
		issues = append(issues, "neighborsOf(Graph) empty")
	}
	if !c.g.HasCategory("Graph Types") {
		issues = append(issues, "category missing: Graph Types")
	}
	if c.renderer == nil || markdown.StyleSheet(io.Discard) != nil {
		issues = append(issues, "markdown libs missing")
	}
	if _, buttons, err := markdown.AttachCopyButtons("<pre><code>print(42)</code></pre>"); err != nil {
		issues = append(issues, "copy button error: "+err.Error())
	} else if len(buttons) != 1 || buttons[0].Text() != "print(42)" {
		issues = append(issues, "copy buttons missing")
	}

	report := Report{OK: len(issues) == 0, Issues: issues, Text: "All tests passed."}
	if !report.OK {
		report.Text = "Issues:\n- " + strings.Join(issues, "\n- ")
	}

	c.gen++
	c.showMarkdown(DemoMarkdown)
	c.meta = Meta{Label: "Self-Test", Category: "Diagnostic", Info: report.Text}
	if report.OK {
		c.flash(LevelOK, "Self-Test OK")
	} else {
		c.flash(LevelWarn, "Self-Test failed, check panel")
		c.log.Warn("Self-test failed", "issues", len(issues))
	}
	return report
}
