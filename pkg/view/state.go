// Package view holds the selection and highlight state of the explorer and
// renders it into per-node and per-edge styles.
//
// The facets are independent: a category filter, a label toggle, the
// directedness toggle used for path queries, and one highlight (none, a
// neighborhood or a path). Render recomputes every style from these facets.
package view

import (
	"github.com/cockroachdb/errors"

	"github.com/OFFIS-RIT/kgview/pkg/graph"
)

// All is the filter value that shows every category.
const All = "ALL"

// ErrUnknownCategory is returned by SetFilter for categories not in the graph.
var ErrUnknownCategory = errors.New("unknown category")

// Highlight identifies the active highlight mode.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightNeighborhood
	HighlightPath
)

func (h Highlight) String() string {
	switch h {
	case HighlightNeighborhood:
		return "neighborhood"
	case HighlightPath:
		return "path"
	default:
		return "none"
	}
}

// State is the transient UI state of one explorer session.
type State struct {
	g      *graph.Graph
	colors map[string]string

	filter     string
	showLabels bool
	directed   bool

	highlight Highlight
	focus     string
	depth     int
	members   map[string]struct{}
	path      []string
}

// New returns the default state for g: every category shown, labels hidden,
// undirected path queries and no highlight.
func New(g *graph.Graph) *State {
	s := &State{
		g:      g,
		colors: make(map[string]string),
		filter: All,
	}
	for i, c := range g.Categories() {
		s.colors[c] = palette[i%len(palette)]
	}
	return s
}

// Filter returns the current category filter.
func (s *State) Filter() string { return s.filter }

// ShowLabels reports whether edge labels are shown.
func (s *State) ShowLabels() bool { return s.showLabels }

// Directed reports whether path queries respect edge direction.
func (s *State) Directed() bool { return s.directed }

// Highlight returns the active highlight mode.
func (s *State) Highlight() Highlight { return s.highlight }

// Focus returns the focus node and depth of a neighborhood highlight.
func (s *State) Focus() (string, int, bool) {
	if s.highlight != HighlightNeighborhood {
		return "", 0, false
	}
	return s.focus, s.depth, true
}

// Path returns the highlighted path.
func (s *State) Path() ([]string, bool) {
	if s.highlight != HighlightPath {
		return nil, false
	}
	return append([]string(nil), s.path...), true
}

// Color returns the fill color of a category.
func (s *State) Color(cat string) string {
	return s.colors[cat]
}

// Legend lists the categories with their colors in sorted order.
func (s *State) Legend() []LegendEntry {
	cats := s.g.Categories()
	out := make([]LegendEntry, 0, len(cats))
	for _, c := range cats {
		out = append(out, LegendEntry{Category: c, Color: s.colors[c]})
	}
	return out
}

// SetFilter shows only nodes of category cat, or everything for All.
func (s *State) SetFilter(cat string) error {
	if cat != All && !s.g.HasCategory(cat) {
		return errors.Wrapf(ErrUnknownCategory, "%q", cat)
	}
	s.filter = cat
	return nil
}

// SetShowLabels toggles edge label display.
func (s *State) SetShowLabels(show bool) { s.showLabels = show }

// SetDirected toggles directed path queries.
func (s *State) SetDirected(directed bool) { s.directed = directed }

// ClearStyling drops any highlight. The category filter and the toggles are
// kept.
func (s *State) ClearStyling() {
	s.highlight = HighlightNone
	s.focus = ""
	s.depth = 0
	s.members = nil
	s.path = nil
}

// HighlightNeighborhood highlights the nodes within depth hops of id and
// returns that set.
func (s *State) HighlightNeighborhood(id string, depth int) (map[string]struct{}, error) {
	if _, ok := s.g.ByID(id); !ok {
		return nil, errors.Wrapf(graph.ErrLookup, "%q", id)
	}
	if depth < 0 {
		depth = 0
	}
	s.ClearStyling()
	s.highlight = HighlightNeighborhood
	s.focus = id
	s.depth = depth
	s.members = s.g.Neighborhood(id, depth)
	return s.members, nil
}

// ShowPath highlights the given node sequence.
func (s *State) ShowPath(ids []string) error {
	if len(ids) == 0 {
		return errors.New("empty path")
	}
	for _, id := range ids {
		if _, ok := s.g.ByID(id); !ok {
			return errors.Wrapf(graph.ErrLookup, "%q", id)
		}
	}
	s.ClearStyling()
	s.highlight = HighlightPath
	s.path = append([]string(nil), ids...)
	s.members = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	return nil
}

func (s *State) visible(n *graph.Node) bool {
	return s.filter == All || n.Cat == s.filter
}

func (s *State) in(id string) bool {
	_, ok := s.members[id]
	return ok
}

// onPath reports whether both endpoints of e are path nodes. Edges between
// path nodes that the path does not traverse count too.
func (s *State) onPath(e *graph.Edge) bool {
	return s.in(e.Source.ID) && s.in(e.Target.ID)
}

// Render computes the style of every node and edge from scratch.
func (s *State) Render() Scene {
	scene := Scene{
		Nodes: make([]NodeStyle, 0, len(s.g.Nodes)),
		Edges: make([]EdgeStyle, 0, len(s.g.Edges)),
	}

	for _, n := range s.g.Nodes {
		ns := NodeStyle{
			ID:           n.ID,
			Visible:      s.visible(n),
			Fill:         s.colors[n.Cat],
			Stroke:       NodeStroke,
			Width:        NodeStrokeWidth,
			Opacity:      1,
			LabelOpacity: 1,
			Title:        n.ID + " • " + n.Cat,
		}
		switch s.highlight {
		case HighlightNeighborhood:
			if s.in(n.ID) {
				ns.FontWeight = BoldWeight
			} else {
				ns.Opacity = DimNodeOpacity
				ns.LabelOpacity = DimNodeOpacity
			}
		case HighlightPath:
			ns.Width = PathNodeWidth
			if s.in(n.ID) {
				ns.Stroke = PathColor
				ns.FontWeight = BoldWeight
			} else {
				ns.Opacity = DimPathNodeOpacity
			}
		}
		scene.Nodes = append(scene.Nodes, ns)
	}

	for _, e := range s.g.Edges {
		visible := s.visible(e.Source) && s.visible(e.Target)
		es := EdgeStyle{
			Source:       e.Source.ID,
			Target:       e.Target.ID,
			Visible:      visible,
			Stroke:       EdgeStroke,
			Width:        EdgeWidth,
			Opacity:      EdgeOpacity,
			Label:        e.Label,
			LabelVisible: visible && s.showLabels,
		}
		if e.Directed {
			es.Marker = "arrow"
		}
		switch s.highlight {
		case HighlightNeighborhood:
			if s.in(e.Source.ID) && s.in(e.Target.ID) {
				es.Opacity = 1
			} else {
				es.Opacity = DimEdgeOpacity
			}
			if e.Touches(s.focus) {
				es.Width = FocusEdgeWidth
			}
		case HighlightPath:
			if s.onPath(e) {
				es.Opacity = 1
				es.Stroke = PathColor
				es.Width = PathEdgeWidth
			} else {
				es.Opacity = DimEdgeOpacity
			}
		}
		scene.Edges = append(scene.Edges, es)
	}

	return scene
}
