package view

import "math"

// Zoom limits.
const (
	MinScale = 0.2
	MaxScale = 4.0
)

// Transform maps graph coordinates to screen coordinates:
// screen = (X + K*x, Y + K*y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Apply maps a graph point to the screen.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.X + t.K*x, t.Y + t.K*y
}

// Invert maps a screen point back to graph coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// Viewport is the visible window onto the graph.
type Viewport struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Transform Transform `json:"transform"`
}

// NewViewport returns an untransformed viewport.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height, Transform: Transform{K: 1}}
}

// FocusOn centers the viewport on (x, y) keeping the current scale.
func (v *Viewport) FocusOn(x, y float64) {
	k := v.Transform.K
	v.Transform = Transform{
		X: v.Width/2 - k*x,
		Y: v.Height/2 - k*y,
		K: k,
	}
}

// ZoomAt scales by factor around the screen point (sx, sy), clamped to
// [MinScale, MaxScale].
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	gx, gy := v.Transform.Invert(sx, sy)
	k := math.Max(MinScale, math.Min(MaxScale, v.Transform.K*factor))
	v.Transform = Transform{
		X: sx - k*gx,
		Y: sy - k*gy,
		K: k,
	}
}

// Pan moves the view by (dx, dy) screen pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.Transform.X += dx
	v.Transform.Y += dy
}
