package view

// Default and highlight styling, matching the explorer's stylesheet.
const (
	EdgeStroke      = "#334155"
	EdgeWidth       = 1.5
	EdgeOpacity     = 0.9
	NodeStroke      = "#1f2937"
	NodeStrokeWidth = 1.5
	PathColor       = "#f59e0b"

	FocusEdgeWidth = 2.4
	PathEdgeWidth  = 3.0
	PathNodeWidth  = 2.0

	DimNodeOpacity     = 0.2
	DimPathNodeOpacity = 0.15
	DimEdgeOpacity     = 0.1

	BoldWeight = 700
)

// tableau10 followed by set3
var palette = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd",
	"#ccebc5", "#ffed6f",
}

// NodeStyle is the rendered state of one node.
type NodeStyle struct {
	ID      string  `json:"id"`
	Visible bool    `json:"visible"`
	Fill    string  `json:"fill"`
	Stroke  string  `json:"stroke"`
	Width   float64 `json:"strokeWidth"`
	Opacity float64 `json:"opacity"`
	// Label styling; FontWeight 0 means the normal weight.
	LabelOpacity float64 `json:"labelOpacity"`
	FontWeight   int     `json:"fontWeight,omitempty"`
	Title        string  `json:"title"`
}

// EdgeStyle is the rendered state of one edge.
type EdgeStyle struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Visible      bool    `json:"visible"`
	Stroke       string  `json:"stroke"`
	Width        float64 `json:"strokeWidth"`
	Opacity      float64 `json:"opacity"`
	Label        string  `json:"label"`
	LabelVisible bool    `json:"labelVisible"`
	// Marker is "arrow" for directed edges.
	Marker string `json:"marker,omitempty"`
}

// Scene is a full rendering of the graph for the current state, in node and
// edge order.
type Scene struct {
	Nodes []NodeStyle `json:"nodes"`
	Edges []EdgeStyle `json:"edges"`
}

// LegendEntry pairs a category with its color.
type LegendEntry struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}
