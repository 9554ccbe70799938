// Package explorer drives an interactive view of a knowledge graph. A
// Controller owns the graph, its layout simulation, the highlight state, the
// viewport, the status line and the answer panel, and turns user actions into
// state changes.
//
// Model requests run in their own goroutines and post their results back to
// the controller's event loop. A response is applied only when no newer
// request was issued in the meantime.
package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
	"github.com/OFFIS-RIT/kgview/pkg/layout"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/markdown"
	"github.com/OFFIS-RIT/kgview/pkg/view"
)

const (
	// DefaultStatusTimeout is how long a flashed status stays visible.
	DefaultStatusTimeout = 4 * time.Second
	// DefaultTickInterval paces the simulation while it is not settled.
	DefaultTickInterval = 16 * time.Millisecond
	// ResetAlpha is the energy the simulation restarts with on Reset.
	ResetAlpha = 0.7
	// DefaultGraphName is the download name of an unnamed graph.
	DefaultGraphName = "graph.json"
	// MarkdownName is the download name of the last model answer.
	MarkdownName = "ai-explanation.md"
)

// Asker answers prompts. *client.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, req client.AskRequest) (string, error)
}

// FrameFunc receives a snapshot whenever the visible state changed.
type FrameFunc func(Frame)

// Options configure a Controller. Zero values use the defaults.
type Options struct {
	// Name is the graph's document name, used for downloads.
	Name              string
	Layout            layout.Config
	NeighborhoodDepth int
	StatusTimeout     time.Duration
	Asker             Asker
	Clipboard         markdown.Clipboard
	OnFrame           FrameFunc
	// Clock is used for status expiry.
	Clock func() time.Time
}

// Meta describes the focused node.
type Meta struct {
	Label    string `json:"label"`
	Category string `json:"category"`
	Info     string `json:"info,omitempty"`
}

// Frame is everything a renderer needs to draw the current state.
type Frame struct {
	Scene      view.Scene         `json:"scene"`
	Positions  []layout.Position  `json:"positions"`
	Transform  view.Transform     `json:"transform"`
	Legend     []view.LegendEntry `json:"legend"`
	Status     Status             `json:"status"`
	Meta       Meta               `json:"meta"`
	Answer     Answer             `json:"answer"`
	Filter     string             `json:"filter"`
	ShowLabels bool               `json:"showLabels"`
	Directed   bool               `json:"directed"`
	Settled    bool               `json:"settled"`
}

type answerEvent struct {
	gen      uint64
	prompt   string
	response string
	err      error
}

// Controller is safe for concurrent use. Exported methods apply their effect
// synchronously; model answers are applied by Run.
type Controller struct {
	mu sync.Mutex

	name     string
	g        *graph.Graph
	sim      *layout.Simulation
	state    *view.State
	viewport *view.Viewport
	renderer *markdown.Renderer

	depth         int
	statusTimeout time.Duration
	clock         func() time.Time
	asker         Asker
	clipboard     markdown.Clipboard
	onFrame       FrameFunc

	status    Status
	meta      Meta
	answer    Answer
	gen       uint64
	discarded int
	dirty     bool

	events   chan answerEvent
	stopped  chan struct{}
	stopOnce sync.Once
	inflight sync.WaitGroup
	log      *logger.Scoped
}

// New creates a controller for g. The graph's nodes are placed by the
// simulation and moved in place from then on.
func New(g *graph.Graph, opts Options) *Controller {
	sim := layout.New(g, opts.Layout)
	cfg := sim.Config()

	c := &Controller{
		name:          opts.Name,
		g:             g,
		sim:           sim,
		state:         view.New(g),
		viewport:      view.NewViewport(cfg.Width, cfg.Height),
		renderer:      markdown.NewRenderer(),
		depth:         opts.NeighborhoodDepth,
		statusTimeout: opts.StatusTimeout,
		clock:         opts.Clock,
		asker:         opts.Asker,
		clipboard:     opts.Clipboard,
		onFrame:       opts.OnFrame,
		events:        make(chan answerEvent, 16),
		stopped:       make(chan struct{}),
		dirty:         true,
		log:           logger.With("component", "explorer"),
	}
	if c.depth <= 0 {
		c.depth = 1
	}
	if c.statusTimeout <= 0 {
		c.statusTimeout = DefaultStatusTimeout
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	sim.OnTick(func(*layout.Simulation) { c.dirty = true })
	return c
}

// Run steps the simulation every interval while it is not settled and
// applies model answers as they arrive. It returns when ctx is done. A
// controller runs once; answers arriving after Run returned are dropped.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer c.stopOnce.Do(func() { close(c.stopped) })

	c.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.mu.Lock()
			c.applyAnswer(ev)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			if !c.sim.Settled() {
				c.sim.Step()
			}
			c.mu.Unlock()
		}
		c.publish()
	}
}

// publish hands a frame to the frame callback when something changed.
func (c *Controller) publish() {
	c.mu.Lock()
	if !c.dirty || c.onFrame == nil {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	frame := c.frame()
	fn := c.onFrame
	c.mu.Unlock()
	fn(frame)
}

// Settle steps the simulation until it settles or maxSteps is reached.
func (c *Controller) Settle(maxSteps int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Settle(maxSteps)
}

// Frame returns a snapshot of the current state.
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame()
}

func (c *Controller) frame() Frame {
	return Frame{
		Scene:      c.state.Render(),
		Positions:  c.sim.Positions(),
		Transform:  c.viewport.Transform,
		Legend:     c.state.Legend(),
		Status:     c.currentStatus(),
		Meta:       c.meta,
		Answer:     c.answer,
		Filter:     c.state.Filter(),
		ShowLabels: c.state.ShowLabels(),
		Directed:   c.state.Directed(),
		Settled:    c.sim.Settled(),
	}
}

// Name returns the graph's document name.
func (c *Controller) Name() string { return c.name }

// Graph returns the explored graph. Node positions change while Run is
// active.
func (c *Controller) Graph() *graph.Graph { return c.g }

// Scene renders the current node and edge styles.
func (c *Controller) Scene() view.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Render()
}

// Legend returns the category colors.
func (c *Controller) Legend() []view.LegendEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Legend()
}

// Meta returns the focused node's description.
func (c *Controller) Meta() Meta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// Positions returns the node coordinates.
func (c *Controller) Positions() []layout.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Positions()
}

// Transform returns the viewport transform.
func (c *Controller) Transform() view.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport.Transform
}

// Discarded counts answers that arrived after a newer request was issued.
func (c *Controller) Discarded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discarded
}
