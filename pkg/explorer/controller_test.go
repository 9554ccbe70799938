package explorer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
	"github.com/OFFIS-RIT/kgview/pkg/markdown"
	"github.com/OFFIS-RIT/kgview/pkg/view"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chain = `{"nodes": [{"id": "A", "cat": "X"}, {"id": "B", "cat": "X"}, {"id": "C", "cat": "Y"}],
	"links": [{"s": "A", "t": "B"}, {"s": "B", "t": "C", "directed": true}]}`

// gatedAsker answers a prompt about node id once gates[id] is closed.
type gatedAsker struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	prompts []string
	err     error
}

func newGatedAsker(ids ...string) *gatedAsker {
	a := &gatedAsker{gates: map[string]chan struct{}{}}
	for _, id := range ids {
		a.gates[id] = make(chan struct{})
	}
	return a
}

func (a *gatedAsker) Ask(ctx context.Context, req client.AskRequest) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, req.Prompt)
	var gate chan struct{}
	id := ""
	for k, g := range a.gates {
		if strings.Contains(req.Prompt, `"`+k+`"`) {
			gate, id = g, k
		}
	}
	err := a.err
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "### " + id, nil
}

func TestClickNode_AfterRunReturnedDoesNotBlock(t *testing.T) {
	c := New(graph.Demo(), Options{Asker: newGatedAsker()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx, time.Millisecond)
	}()
	cancel()
	<-done

	for i := 0; i < 3*cap(c.events); i++ {
		c.ClickNode(context.Background(), "Graph")
	}

	finished := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("answer goroutines blocked after Run returned")
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func load(t *testing.T, raw string) *graph.Graph {
	t.Helper()
	g, err := graph.Parse([]byte(raw))
	require.NoError(t, err)
	return g
}

func run(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx, time.Millisecond)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestClickNode_HighlightsBeforeAsking(t *testing.T) {
	asker := newGatedAsker("A")
	c := New(load(t, chain), Options{Asker: asker})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.ClickNode(ctx, "A")

	scene := c.Scene()
	byID := map[string]view.NodeStyle{}
	for _, n := range scene.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, view.BoldWeight, byID["A"].FontWeight)
	assert.Equal(t, view.BoldWeight, byID["B"].FontWeight)
	assert.Equal(t, view.DimNodeOpacity, byID["C"].Opacity)

	assert.True(t, c.Answer().Pending)
	assert.Equal(t, Querying, c.Answer().Text())
	assert.Equal(t, Meta{Label: "A", Category: "X"}, c.Meta())

	a, _ := c.Graph().ByID("A")
	tr := c.Transform()
	x, y := tr.Apply(a.X, a.Y)
	assert.InDelta(t, 400, x, 1e-9)
	assert.InDelta(t, 300, y, 1e-9)
}

func TestClickNode_PromptNamesNeighbors(t *testing.T) {
	asker := newGatedAsker()
	c := New(load(t, chain), Options{Asker: asker})
	run(t, c)

	c.ClickNode(context.Background(), "B")
	require.Eventually(t, func() bool { return !c.Answer().Pending }, time.Second, time.Millisecond)

	asker.mu.Lock()
	defer asker.mu.Unlock()
	require.Len(t, asker.prompts, 1)
	assert.Contains(t, asker.prompts[0], `"B"`)
	assert.Contains(t, asker.prompts[0], "A, C")
}

func TestClickNode_UnknownNode(t *testing.T) {
	c := New(load(t, chain), Options{})
	c.ClickNode(context.Background(), "Z")
	assert.Equal(t, `No node named "Z"`, c.Status().Text)
	assert.Equal(t, view.HighlightNone, c.state.Highlight())
}

func TestStaleAnswerIsDiscarded(t *testing.T) {
	asker := newGatedAsker("A", "C")
	c := New(load(t, chain), Options{Asker: asker})
	run(t, c)
	ctx := context.Background()

	c.ClickNode(ctx, "A")
	c.ClickNode(ctx, "C")

	close(asker.gates["C"])
	require.Eventually(t, func() bool { return c.Answer().Markdown == "### C" }, time.Second, time.Millisecond)

	close(asker.gates["A"])
	require.Eventually(t, func() bool { return c.Discarded() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "### C", c.Answer().Markdown)
	assert.Contains(t, c.Answer().HTML, "<h3")
}

func TestAnswer_RequestFailure(t *testing.T) {
	asker := newGatedAsker()
	asker.err = errors.Mark(errors.New("connection refused"), client.ErrNetwork)
	c := New(load(t, chain), Options{Asker: asker})
	run(t, c)

	c.ClickNode(context.Background(), "A")
	require.Eventually(t, func() bool { return !c.Answer().Pending }, time.Second, time.Millisecond)

	ans := c.Answer()
	assert.Equal(t, "Couldn’t reach model proxy: connection refused", ans.Warning)
	assert.True(t, errors.Is(ans.Err, client.ErrNetwork))
	assert.Empty(t, ans.HTML)
}

func TestAnswer_NoModel(t *testing.T) {
	c := New(load(t, chain), Options{})
	c.ClickNode(context.Background(), "A")
	ans := c.Answer()
	assert.False(t, ans.Pending)
	assert.ErrorIs(t, ans.Err, ErrNoModel)
}

func TestAnswer_Empty(t *testing.T) {
	c := New(load(t, chain), Options{})
	c.mu.Lock()
	c.gen = 3
	c.applyAnswer(answerEvent{gen: 3, response: ""})
	c.mu.Unlock()
	assert.Equal(t, EmptyAnswer, c.Answer().Markdown)
}

func TestFocus(t *testing.T) {
	c := New(load(t, chain), Options{})
	assert.False(t, c.Focus("  "))
	assert.Empty(t, c.Status().Text)

	assert.False(t, c.Focus("nope"))
	assert.Equal(t, `No node named "nope"`, c.Status().Text)
	assert.Equal(t, LevelWarn, c.Status().Level)

	assert.True(t, c.Focus(" C "))
	assert.Equal(t, "C", c.Meta().Label)
}

func TestFindPath(t *testing.T) {
	c := New(load(t, chain), Options{})

	assert.Nil(t, c.FindPath("A B"))
	assert.Equal(t, PathHint, c.Status().Text)

	assert.Nil(t, c.FindPath("A -> Q"))
	assert.Equal(t, UnknownNodes, c.Status().Text)

	assert.Equal(t, []string{"A", "B", "C"}, c.FindPath("A -> C"))
	assert.Equal(t, "Path: A → B → C", c.Status().Text)
	assert.Equal(t, "C", c.Meta().Label)
	ids, ok := c.state.Path()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, ids)

	assert.Equal(t, []string{"C", "B", "A"}, c.FindPath("C,A"))

	assert.True(t, c.ToggleDirected())
	assert.Nil(t, c.FindPath("C -> A"))
	assert.Equal(t, NoPathFound, c.Status().Text)
	assert.Equal(t, []string{"A", "B", "C"}, c.FindPath("A -> C"))
}

func TestStatusExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := New(load(t, chain), Options{Clock: clock.Now})

	c.Focus("nope")
	clock.Advance(3 * time.Second)
	assert.NotEmpty(t, c.Status().Text)
	clock.Advance(time.Second)
	assert.Empty(t, c.Status().Text)
}

func TestSetCategoryAndReset(t *testing.T) {
	c := New(load(t, chain), Options{})

	assert.False(t, c.SetCategory("Q"))
	assert.Equal(t, `Unknown category "Q"`, c.Status().Text)

	require.True(t, c.SetCategory("X"))
	c.FindPath("A -> C")
	c.Reset()

	assert.Empty(t, c.Status().Text)
	assert.Equal(t, view.HighlightNone, c.state.Highlight())
	assert.Equal(t, "X", c.Frame().Filter)
	assert.InDelta(t, ResetAlpha, c.sim.Alpha(), 1e-9)

	for _, n := range c.Scene().Nodes {
		assert.Equal(t, view.NodeStrokeWidth, n.Width)
		assert.Equal(t, n.ID != "C", n.Visible, n.ID)
	}
}

func TestToggleLabels(t *testing.T) {
	c := New(load(t, chain), Options{})
	assert.True(t, c.ToggleLabels())
	for _, e := range c.Scene().Edges {
		assert.True(t, e.LabelVisible)
	}
	assert.False(t, c.ToggleLabels())
}

func TestDrag(t *testing.T) {
	c := New(load(t, chain), Options{})
	c.Settle(1000)

	c.DragStart("A")
	assert.InDelta(t, 0.3, c.sim.AlphaTarget(), 1e-9)
	c.DragMove("A", 120, 80)

	a, _ := c.Graph().ByID("A")
	assert.True(t, a.Pinned)
	assert.Equal(t, 120.0, a.FX)
	assert.Equal(t, 80.0, a.FY)

	c.DragEnd("A")
	assert.False(t, a.Pinned)
	assert.Zero(t, c.sim.AlphaTarget())

	c.DragStart("missing")
	assert.False(t, c.sim.Dragging())
}

func TestZoomAndPan(t *testing.T) {
	c := New(load(t, chain), Options{})
	c.Zoom(10, 0, 0)
	assert.Equal(t, view.MaxScale, c.Transform().K)
	c.Pan(5, -5)
	assert.Equal(t, 5.0, c.Transform().X)
	assert.Equal(t, -5.0, c.Transform().Y)
}

func TestDownload(t *testing.T) {
	c := New(load(t, chain), Options{})
	name, data := c.Download()
	assert.Equal(t, DefaultGraphName, name)

	g, err := graph.Parse(data)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, string(data), `"x"`)

	c = New(load(t, chain), Options{Name: "chain.json"})
	name, _ = c.Download()
	assert.Equal(t, "chain.json", name)
}

func TestDownloadMarkdown(t *testing.T) {
	c := New(graph.Demo(), Options{})
	name, md := c.DownloadMarkdown()
	assert.Equal(t, MarkdownName, name)
	assert.Equal(t, NoAnswer, md)

	c.SelfTest()
	_, md = c.DownloadMarkdown()
	assert.Equal(t, DemoMarkdown, md)
}

type recordingClipboard struct {
	text string
	err  error
}

func (r *recordingClipboard) WriteText(_ context.Context, text string) error {
	r.text = text
	return r.err
}

func TestSelfTest_Demo(t *testing.T) {
	cb := &recordingClipboard{}
	c := New(graph.Demo(), Options{Clipboard: cb})

	report := c.SelfTest()
	assert.True(t, report.OK, report.Text)
	assert.Empty(t, report.Issues)
	assert.Equal(t, "All tests passed.", report.Text)

	assert.Equal(t, "Self-Test OK", c.Status().Text)
	assert.Equal(t, Meta{Label: "Self-Test", Category: "Diagnostic", Info: report.Text}, c.Meta())

	ans := c.Answer()
	assert.Empty(t, ans.Warning)
	assert.Contains(t, ans.HTML, "<h3>Markdown + Code + Math demo</h3>")
	assert.Contains(t, ans.HTML, `<span class="math math-inline">\(V - E + F = 2\)</span>`)
	assert.Contains(t, ans.HTML, `<div class="math math-display">`)
	require.Len(t, ans.Buttons, 1)

	assert.Equal(t, markdown.CopiedLabel, c.CopyCode(context.Background(), 0))
	assert.Contains(t, cb.text, "def bfs(G, s):")
	assert.Equal(t, "", c.CopyCode(context.Background(), 5))
}

func TestSelfTest_ReportsIssues(t *testing.T) {
	c := New(load(t, chain), Options{})

	report := c.SelfTest()
	assert.False(t, report.OK)
	assert.Contains(t, report.Issues, "shortestPath(Graph,Dijkstra) failed")
	assert.Contains(t, report.Issues, "directed shortestPath failed (Topological Sort → Graph)")
	assert.Contains(t, report.Issues, "neighborsOf(Graph) empty")
	assert.Contains(t, report.Issues, "category missing: Graph Types")
	assert.True(t, strings.HasPrefix(report.Text, "Issues:\n- "))
	assert.Equal(t, "Self-Test failed, check panel", c.Status().Text)
}

func TestCopyCode_ClipboardFailure(t *testing.T) {
	c := New(graph.Demo(), Options{Clipboard: &recordingClipboard{err: errors.New("denied")}})
	c.SelfTest()
	assert.Equal(t, markdown.FailedLabel, c.CopyCode(context.Background(), 0))
}

func TestRun_PublishesFrames(t *testing.T) {
	frames := make(chan Frame, 1024)
	c := New(load(t, chain), Options{OnFrame: func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	}})
	run(t, c)

	select {
	case f := <-frames:
		assert.Len(t, f.Positions, 3)
		assert.Len(t, f.Legend, 2)
	case <-time.After(time.Second):
		t.Fatal("no frame published")
	}
	require.Eventually(t, func() bool { return c.Frame().Settled }, 5*time.Second, 5*time.Millisecond)
}
