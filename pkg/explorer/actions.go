package explorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kgview/pkg/ai"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
)

// Status texts.
const (
	PathHint     = `Enter "A -> B" or "A,B" in the search box for path.`
	UnknownNodes = "Unknown node(s)"
	NoPathFound  = "No path found"
)

// ClickNode highlights the neighborhood of id, focuses it and asks the model
// to explain it. The highlight is in place before the request is issued.
func (c *Controller) ClickNode(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.g.ByID(id)
	if !ok {
		c.flash(LevelWarn, fmt.Sprintf("No node named %q", id))
		return
	}
	c.state.ClearStyling()
	if _, err := c.state.HighlightNeighborhood(id, c.depth); err != nil {
		c.flash(LevelWarn, err.Error())
		return
	}
	c.focus(n)
	c.ask(ctx, ai.ExplainPrompt(id, c.g.Neighbors(id)))
}

// Focus centers the viewport on the node with the exact id q.
func (c *Controller) Focus(q string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	q = strings.TrimSpace(q)
	if q == "" {
		return false
	}
	n, ok := c.g.ByID(q)
	if !ok {
		c.flash(LevelWarn, fmt.Sprintf("No node named %q", q))
		return false
	}
	c.focus(n)
	return true
}

func (c *Controller) focus(n *graph.Node) {
	c.meta = Meta{Label: n.ID, Category: n.Cat}
	c.viewport.FocusOn(n.X, n.Y)
	c.dirty = true
}

// FindPath parses "A -> B" or "A,B", highlights a shortest path and focuses
// its last node. It returns the path, or nil when none was shown.
func (c *Controller) FindPath(raw string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, to, err := graph.ParsePathQuery(raw)
	if err != nil {
		c.flash(LevelInfo, PathHint)
		return nil
	}
	_, okA := c.g.ByID(from)
	_, okB := c.g.ByID(to)
	if !okA || !okB {
		c.flash(LevelWarn, UnknownNodes)
		return nil
	}

	path, err := c.g.ShortestPath(from, to, c.state.Directed())
	if err != nil {
		c.flash(LevelWarn, NoPathFound)
		return nil
	}
	if err := c.state.ShowPath(path); err != nil {
		c.flash(LevelWarn, err.Error())
		return nil
	}
	last, _ := c.g.ByID(path[len(path)-1])
	c.focus(last)
	c.flash(LevelOK, "Path: "+strings.Join(path, " → "))
	return path
}

// SetCategory restricts the visible nodes to one category, or all of them
// with view.All.
func (c *Controller) SetCategory(cat string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.SetFilter(cat); err != nil {
		c.flash(LevelWarn, fmt.Sprintf("Unknown category %q", cat))
		return false
	}
	c.dirty = true
	return true
}

// ToggleLabels flips edge label display and returns the new setting.
func (c *Controller) ToggleLabels() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetShowLabels(!c.state.ShowLabels())
	c.dirty = true
	return c.state.ShowLabels()
}

// ToggleDirected flips whether path queries honor edge direction and returns
// the new setting.
func (c *Controller) ToggleDirected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetDirected(!c.state.Directed())
	c.dirty = true
	return c.state.Directed()
}

// Reset drops any highlight, clears the status and reheats the layout. The
// category filter is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ClearStyling()
	c.sim.Restart(ResetAlpha)
	c.status = Status{}
	c.dirty = true
}

// DragStart pins a node where it is and warms the simulation.
func (c *Controller) DragStart(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sim.DragStart(id); err != nil {
		c.log.Debug("Drag start ignored", "node", id, "err", err)
	}
}

// DragMove moves a dragged node to the screen point (sx, sy).
func (c *Controller) DragMove(id string, sx, sy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	x, y := c.viewport.Transform.Invert(sx, sy)
	if err := c.sim.Drag(id, x, y); err != nil {
		c.log.Debug("Drag ignored", "node", id, "err", err)
		return
	}
	c.dirty = true
}

// DragEnd releases a dragged node.
func (c *Controller) DragEnd(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sim.DragEnd(id); err != nil {
		c.log.Debug("Drag end ignored", "node", id, "err", err)
	}
}

// Zoom scales the viewport by factor around the screen point (sx, sy).
func (c *Controller) Zoom(factor, sx, sy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport.ZoomAt(factor, sx, sy)
	c.dirty = true
}

// Pan moves the viewport by a screen offset.
func (c *Controller) Pan(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport.Pan(dx, dy)
	c.dirty = true
}

// Download returns the indented graph document and its file name.
func (c *Controller) Download() (string, []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := c.name
	if name == "" {
		name = DefaultGraphName
	}
	data, err := c.g.MarshalIndent()
	if err != nil {
		c.flash(LevelWarn, "Download failed")
		c.log.Error("Failed to serialize graph", "err", err)
		return name, nil
	}
	return name, data
}

// DownloadMarkdown returns the last model answer and its file name.
func (c *Controller) DownloadMarkdown() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.answer.Markdown == "" {
		return MarkdownName, NoAnswer
	}
	return MarkdownName, c.answer.Markdown
}
