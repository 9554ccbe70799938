// Package layout computes node positions with an iterative force simulation:
// pairwise repulsion, link springs toward a rest length, a centering force and
// collision avoidance. Energy is controlled by a decaying alpha; once alpha
// drops below AlphaMin the simulation is settled and stops stepping.
//
// A Simulation is not safe for concurrent use. It is stepped explicitly, by a
// scheduler owned by the caller or directly from tests.
package layout

import (
	"math"

	"github.com/OFFIS-RIT/kgview/pkg/graph"
)

const (
	initialRadius = 10
	// golden angle
	initialAngle = math.Pi * (3 - 2.23606797749979)
	distanceMin2 = 1
)

// TickFunc is called after every simulation step.
type TickFunc func(s *Simulation)

// Position is a node's coordinates after a step.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Simulation moves the nodes of a graph. Positions are written to the
// graph's nodes in place.
type Simulation struct {
	cfg   Config
	nodes []*graph.Node
	edges []*graph.Edge

	alpha       float64
	alphaTarget float64
	settled     bool
	ticks       int

	// per edge: share of the correction applied to the target
	bias []float64

	drags  int
	random uint32

	listeners []TickFunc
}

// New creates a simulation over g and places every node that has no position
// yet on a spiral around the viewport center.
func New(g *graph.Graph, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	s := &Simulation{
		cfg:    cfg,
		nodes:  g.Nodes,
		edges:  g.Edges,
		alpha:  cfg.Alpha,
		random: 1,
	}
	s.initializeNodes()
	s.initializeLinks()
	return s
}

func (s *Simulation) initializeNodes() {
	cx, cy := s.Center()
	for i, n := range s.nodes {
		if n.Pinned {
			n.Place(n.FX, n.FY)
		}
		if !n.Placed() {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.Place(cx+r*math.Cos(a), cy+r*math.Sin(a))
		}
	}
}

func (s *Simulation) initializeLinks() {
	degree := make(map[*graph.Node]int, len(s.nodes))
	for _, e := range s.edges {
		degree[e.Source]++
		degree[e.Target]++
	}
	s.bias = make([]float64, len(s.edges))
	for i, e := range s.edges {
		s.bias[i] = float64(degree[e.Source]) / float64(degree[e.Source]+degree[e.Target])
	}
}

// Config returns the effective parameters.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Center returns the point the centering force pulls toward.
func (s *Simulation) Center() (float64, float64) {
	return s.cfg.Width / 2, s.cfg.Height / 2
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Ticks returns the number of steps taken since creation.
func (s *Simulation) Ticks() int {
	return s.ticks
}

// Settled reports whether alpha has fallen below AlphaMin.
func (s *Simulation) Settled() bool {
	return s.settled
}

// OnTick registers fn to be called after every step.
func (s *Simulation) OnTick(fn TickFunc) {
	s.listeners = append(s.listeners, fn)
}

// Restart re-energizes the simulation with the given alpha.
func (s *Simulation) Restart(alpha float64) {
	s.alpha = alpha
	s.settled = false
}

// Stop settles the simulation immediately.
func (s *Simulation) Stop() {
	s.settled = true
}

// SetAlphaTarget sets the value alpha decays toward. A target above AlphaMin
// keeps the simulation running.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
}

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 {
	return s.alphaTarget
}

// Step advances the simulation by one tick and notifies the tick listeners.
// It returns false without doing anything when the simulation is settled.
func (s *Simulation) Step() bool {
	if s.settled {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	keep := 1 - s.cfg.VelocityDecay
	for _, n := range s.nodes {
		if n.Pinned {
			n.X, n.Y = n.FX, n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}

	s.ticks++
	if s.alpha < s.cfg.AlphaMin {
		s.settled = true
	}

	for _, fn := range s.listeners {
		fn(s)
	}
	return true
}

// Settle steps until the simulation is settled or maxSteps steps were taken,
// and returns the number of steps performed.
func (s *Simulation) Settle(maxSteps int) int {
	steps := 0
	for steps < maxSteps && s.Step() {
		steps++
	}
	return steps
}

// Positions returns the current node coordinates in node order.
func (s *Simulation) Positions() []Position {
	out := make([]Position, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, Position{ID: n.ID, X: n.X, Y: n.Y})
	}
	return out
}

// jiggle returns a tiny deterministic offset used to separate coincident
// points.
func (s *Simulation) jiggle() float64 {
	// linear congruential generator, modulus 2^32
	s.random = 1664525*s.random + 1013904223
	return (float64(s.random)/4294967296 - 0.5) * 1e-6
}

func (s *Simulation) applyLinks() {
	for i, e := range s.edges {
		src, dst := e.Source, e.Target
		x := dst.X + dst.VX - src.X - src.VX
		y := dst.Y + dst.VY - src.Y - src.VY
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		l := math.Sqrt(x*x + y*y)
		l = (l - s.cfg.LinkDistance) / l * s.alpha * s.cfg.LinkStrength
		x *= l
		y *= l

		b := s.bias[i]
		dst.VX -= x * b
		dst.VY -= y * b
		src.VX += x * (1 - b)
		src.VY += y * (1 - b)
	}
}

// applyCharge sums the pairwise repulsion exactly. Graphs handled by the
// explorer are small enough that the quadratic cost is irrelevant.
func (s *Simulation) applyCharge() {
	strength := s.cfg.Charge * s.alpha
	for _, n := range s.nodes {
		for _, o := range s.nodes {
			if o == n {
				continue
			}
			x := o.X - n.X
			y := o.Y - n.Y
			if x == 0 {
				x = s.jiggle()
			}
			if y == 0 {
				y = s.jiggle()
			}
			l := x*x + y*y
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			n.VX += x * strength / l
			n.VY += y * strength / l
		}
	}
}

func (s *Simulation) applyCenter() {
	if len(s.nodes) == 0 {
		return
	}
	cx, cy := s.Center()
	var sx, sy float64
	for _, n := range s.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = sx/float64(len(s.nodes)) - cx
	sy = sy/float64(len(s.nodes)) - cy
	for _, n := range s.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

func (s *Simulation) applyCollide() {
	r := s.cfg.CollideRadius * 2
	r2 := r * r
	for i, a := range s.nodes {
		for _, b := range s.nodes[i+1:] {
			x := a.X + a.VX - b.X - b.VX
			y := a.Y + a.VY - b.Y - b.VY
			l := x*x + y*y
			if l >= r2 {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l * s.cfg.CollideStrength
			x *= l
			y *= l
			// equal radii split the correction evenly
			a.VX += x * 0.5
			a.VY += y * 0.5
			b.VX -= x * 0.5
			b.VY -= y * 0.5
		}
	}
}
