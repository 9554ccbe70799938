package layout

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/kgview/pkg/graph"
)

func load(t *testing.T, raw string) *graph.Graph {
	t.Helper()
	g, err := graph.Parse([]byte(raw))
	require.NoError(t, err)
	return g
}

func dist(a, b *graph.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

const pair = `{"nodes": [{"id": "A"}, {"id": "B"}], "links": [{"s": "A", "t": "B"}]}`

func TestNew_PlacesNodesAroundCenter(t *testing.T) {
	g := graph.Demo()
	sim := New(g, Config{Width: 400, Height: 200})

	for _, n := range g.Nodes {
		assert.True(t, n.Placed(), n.ID)
		assert.Less(t, math.Hypot(n.X-200, n.Y-100), 100.0, n.ID)
	}
	assert.Equal(t, 1.0, sim.Alpha())
	assert.False(t, sim.Settled())
}

func TestStep_SettlesAndStops(t *testing.T) {
	sim := New(graph.Demo(), DefaultConfig())

	steps := sim.Settle(10000)
	assert.True(t, sim.Settled())
	assert.InDelta(t, 300, steps, 5)
	assert.Less(t, sim.Alpha(), sim.Config().AlphaMin)

	before := sim.Positions()
	assert.False(t, sim.Step())
	assert.Equal(t, before, sim.Positions())
	assert.Equal(t, steps, sim.Ticks())
}

func TestRestart_Reenergizes(t *testing.T) {
	sim := New(graph.Demo(), DefaultConfig())
	sim.Settle(10000)

	sim.Restart(0.7)
	assert.False(t, sim.Settled())
	assert.True(t, sim.Step())
	assert.Less(t, sim.Alpha(), 0.7)

	sim.Stop()
	assert.False(t, sim.Step())
}

func TestOnTick_CalledEveryStep(t *testing.T) {
	sim := New(graph.Demo(), DefaultConfig())
	calls := 0
	sim.OnTick(func(s *Simulation) {
		calls++
		assert.Same(t, sim, s)
	})

	for i := 0; i < 5; i++ {
		sim.Step()
	}
	assert.Equal(t, 5, calls)
}

func TestLinkedPair_ReachesEquilibrium(t *testing.T) {
	g := load(t, pair)
	sim := New(g, DefaultConfig())
	sim.Settle(10000)

	// spring (d-70)*0.4/2 balances charge 260/d at d = 35 + sqrt(35^2+1300)
	want := 35 + math.Sqrt(35*35+1300)
	assert.InDelta(t, want, dist(g.Nodes[0], g.Nodes[1]), 10)

	cx := (g.Nodes[0].X + g.Nodes[1].X) / 2
	cy := (g.Nodes[0].Y + g.Nodes[1].Y) / 2
	assert.InDelta(t, 400, cx, 1)
	assert.InDelta(t, 300, cy, 1)
}

func TestUnlinkedNodes_Repel(t *testing.T) {
	g := load(t, `{"nodes": [{"id": "A"}, {"id": "B"}], "links": []}`)
	sim := New(g, DefaultConfig())
	start := dist(g.Nodes[0], g.Nodes[1])

	sim.Settle(50)
	assert.Greater(t, dist(g.Nodes[0], g.Nodes[1]), start)
}

func TestCoincidentNodes_Separate(t *testing.T) {
	g := load(t, `{"nodes": [{"id": "A"}, {"id": "B"}], "links": []}`)
	g.Nodes[0].Place(10, 10)
	g.Nodes[1].Place(10, 10)
	sim := New(g, DefaultConfig())

	sim.Settle(100)
	assert.Greater(t, dist(g.Nodes[0], g.Nodes[1]), 1.0)
	assert.False(t, math.IsNaN(g.Nodes[0].X))
}

func TestDeterministic(t *testing.T) {
	a := New(graph.Demo(), DefaultConfig())
	b := New(graph.Demo(), DefaultConfig())
	a.Settle(120)
	b.Settle(120)
	assert.Equal(t, a.Positions(), b.Positions())
}

func TestPin_HoldsPosition(t *testing.T) {
	g := graph.Demo()
	sim := New(g, DefaultConfig())
	require.NoError(t, sim.Pin("Graph", 100, 120))

	sim.Settle(10000)
	n, _ := g.ByID("Graph")
	assert.Equal(t, 100.0, n.X)
	assert.Equal(t, 120.0, n.Y)
	assert.Zero(t, n.VX)

	require.NoError(t, sim.Unpin("Graph"))
	sim.Restart(0.5)
	sim.Settle(50)
	assert.False(t, n.Pinned)

	assert.True(t, errors.Is(sim.Pin("nope", 0, 0), ErrUnknownNode))
	assert.True(t, errors.Is(sim.Unpin("nope"), ErrUnknownNode))
}

func TestDrag_WarmsAndReleases(t *testing.T) {
	g := graph.Demo()
	sim := New(g, DefaultConfig())
	sim.Settle(10000)
	require.True(t, sim.Settled())

	require.NoError(t, sim.DragStart("Dijkstra"))
	assert.True(t, sim.Dragging())
	assert.False(t, sim.Settled())
	assert.Equal(t, 0.3, sim.AlphaTarget())

	require.NoError(t, sim.Drag("Dijkstra", 5, 6))
	for i := 0; i < 1000; i++ {
		sim.Step()
	}
	assert.False(t, sim.Settled())
	assert.InDelta(t, 0.3, sim.Alpha(), 0.01)
	n, _ := g.ByID("Dijkstra")
	assert.Equal(t, 5.0, n.X)
	assert.Equal(t, 6.0, n.Y)

	require.NoError(t, sim.DragEnd("Dijkstra"))
	assert.False(t, sim.Dragging())
	assert.False(t, n.Pinned)
	assert.Zero(t, sim.AlphaTarget())
	sim.Settle(10000)
	assert.True(t, sim.Settled())
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Charge: -100, AlphaMin: 0.01}.withDefaults()
	assert.Equal(t, -100.0, cfg.Charge)
	assert.Equal(t, 70.0, cfg.LinkDistance)
	assert.InDelta(t, 1-math.Pow(0.01, 1.0/300), cfg.AlphaDecay, 1e-12)
}

func TestConfig_ZeroMeansDefault(t *testing.T) {
	d := DefaultConfig()
	cfg := Config{LinkStrength: 0, CollideStrength: 0, DragAlphaTarget: 0}.withDefaults()
	assert.Equal(t, d.LinkStrength, cfg.LinkStrength)
	assert.Equal(t, d.CollideStrength, cfg.CollideStrength)
	assert.Equal(t, d.DragAlphaTarget, cfg.DragAlphaTarget)

	cfg = Config{LinkStrength: 1e-9, DragAlphaTarget: 1e-9}.withDefaults()
	assert.Equal(t, 1e-9, cfg.LinkStrength)
	assert.Equal(t, 1e-9, cfg.DragAlphaTarget)
}
