package graph

import (
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
)

// NodeDocument is the stored form of a node.
type NodeDocument struct {
	ID  string `json:"id"`
	Cat string `json:"cat"`
}

// EdgeDocument is the stored form of an edge. Source and target refer to
// node identifiers.
type EdgeDocument struct {
	S        string `json:"s"`
	T        string `json:"t"`
	Label    string `json:"label"`
	Directed bool   `json:"directed"`
}

// Document is the JSON shape of a graph file:
//
//	{"nodes": [{"id": "...", "cat": "..."}], "links": [{"s": "...", "t": "...", "label": "...", "directed": true}]}
type Document struct {
	Nodes []NodeDocument `json:"nodes"`
	Links []EdgeDocument `json:"links"`
}

// Node is a graph vertex together with its transient layout state.
//
// X/Y and VX/VY are owned by the layout simulation. When Pinned is set the
// simulation keeps the node at FX/FY.
type Node struct {
	ID    string
	Cat   string
	Index int

	X, Y   float64
	VX, VY float64

	Pinned bool
	FX, FY float64

	placed bool
}

// Placed reports whether the node has been given an initial position.
func (n *Node) Placed() bool {
	return n.placed
}

// Place sets the node position and marks it as placed.
func (n *Node) Place(x, y float64) {
	n.X, n.Y = x, y
	n.placed = true
}

// Edge connects two resolved nodes.
type Edge struct {
	Source   *Node
	Target   *Node
	Label    string
	Directed bool
	Index    int
}

// Touches reports whether id is one of the edge's endpoints.
func (e *Edge) Touches(id string) bool {
	return e.Source.ID == id || e.Target.ID == id
}

// Graph is a read-only (per session) set of nodes and edges with id lookups.
// Only node positions change after loading.
type Graph struct {
	Nodes []*Node
	Edges []*Edge

	byID map[string]*Node
}

// Parse decodes a JSON graph document and loads it.
func Parse(raw []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode graph document"), ErrMalformedGraph)
	}
	if doc.Nodes == nil {
		return nil, malformed("document has no node list")
	}
	if doc.Links == nil {
		return nil, malformed("document has no link list")
	}
	return Load(doc)
}

// Load builds a Graph from a decoded document, resolving every edge endpoint.
// Documents with missing identifiers, duplicate node ids or dangling edge
// endpoints are rejected with ErrMalformedGraph.
func Load(doc Document) (*Graph, error) {
	g := &Graph{
		Nodes: make([]*Node, 0, len(doc.Nodes)),
		Edges: make([]*Edge, 0, len(doc.Links)),
		byID:  make(map[string]*Node, len(doc.Nodes)),
	}

	for i, nd := range doc.Nodes {
		if nd.ID == "" {
			return nil, malformed("node %d: missing id", i)
		}
		if _, dup := g.byID[nd.ID]; dup {
			return nil, malformed("node %d: duplicate id %q", i, nd.ID)
		}
		n := &Node{ID: nd.ID, Cat: nd.Cat, Index: i}
		g.Nodes = append(g.Nodes, n)
		g.byID[n.ID] = n
	}

	for i, ed := range doc.Links {
		if ed.S == "" || ed.T == "" {
			return nil, malformed("link %d: missing endpoint", i)
		}
		src, ok := g.byID[ed.S]
		if !ok {
			return nil, malformed("link %d: unknown source %q", i, ed.S)
		}
		dst, ok := g.byID[ed.T]
		if !ok {
			return nil, malformed("link %d: unknown target %q", i, ed.T)
		}
		g.Edges = append(g.Edges, &Edge{
			Source:   src,
			Target:   dst,
			Label:    ed.Label,
			Directed: ed.Directed,
			Index:    i,
		})
	}

	return g, nil
}

// ByID returns the node with the given identifier.
func (g *Graph) ByID(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Categories returns the unique node categories in sorted order.
func (g *Graph) Categories() []string {
	seen := make(map[string]struct{})
	cats := make([]string, 0)
	for _, n := range g.Nodes {
		if _, ok := seen[n.Cat]; ok {
			continue
		}
		seen[n.Cat] = struct{}{}
		cats = append(cats, n.Cat)
	}
	sort.Strings(cats)
	return cats
}

// HasCategory reports whether any node belongs to cat.
func (g *Graph) HasCategory(cat string) bool {
	for _, n := range g.Nodes {
		if n.Cat == cat {
			return true
		}
	}
	return false
}

// Neighbors returns the ids adjacent to id in either direction, in edge order
// and without duplicates.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	add := func(other string) {
		if _, ok := seen[other]; ok {
			return
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	for _, e := range g.Edges {
		if e.Source.ID == id {
			add(e.Target.ID)
		}
		if e.Target.ID == id {
			add(e.Source.ID)
		}
	}
	return out
}

// Serialize reduces the graph to its canonical document. Parsing the result
// yields an equivalent graph.
func (g *Graph) Serialize() Document {
	doc := Document{
		Nodes: make([]NodeDocument, 0, len(g.Nodes)),
		Links: make([]EdgeDocument, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, NodeDocument{ID: n.ID, Cat: n.Cat})
	}
	for _, e := range g.Edges {
		doc.Links = append(doc.Links, EdgeDocument{
			S:        e.Source.ID,
			T:        e.Target.ID,
			Label:    e.Label,
			Directed: e.Directed,
		})
	}
	return doc
}

// MarshalJSON encodes the canonical document.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Serialize())
}

// MarshalIndent encodes the canonical document with two-space indentation,
// the format graph files are stored in.
func (g *Graph) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(g.Serialize(), "", "  ")
}
