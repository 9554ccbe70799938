package layout

import "math"

// Config holds the simulation parameters. Zero values fall back to the
// defaults of DefaultConfig, so a field cannot be switched off by setting it
// to 0; use a tiny value such as 1e-9 to effectively disable a force or the
// drag warm-up.
type Config struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	LinkDistance    float64 `toml:"link_distance"`
	LinkStrength    float64 `toml:"link_strength"`
	Charge          float64 `toml:"charge"`
	CollideRadius   float64 `toml:"collide_radius"`
	CollideStrength float64 `toml:"collide_strength"`

	Alpha         float64 `toml:"alpha"`
	AlphaMin      float64 `toml:"alpha_min"`
	AlphaDecay    float64 `toml:"alpha_decay"`
	VelocityDecay float64 `toml:"velocity_decay"`

	// DragAlphaTarget keeps the simulation warm while a node is dragged.
	DragAlphaTarget float64 `toml:"drag_alpha_target"`
}

// DefaultConfig returns the parameters used by the explorer: an 800x600
// viewport, links of rest length 70, charge -260 and a collision radius of 30.
func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          600,
		LinkDistance:    70,
		LinkStrength:    0.4,
		Charge:          -260,
		CollideRadius:   30,
		CollideStrength: 1,
		Alpha:           1,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:   0.4,
		DragAlphaTarget: 0.3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width != 0 {
		d.Width = c.Width
	}
	if c.Height != 0 {
		d.Height = c.Height
	}
	if c.LinkDistance != 0 {
		d.LinkDistance = c.LinkDistance
	}
	if c.LinkStrength != 0 {
		d.LinkStrength = c.LinkStrength
	}
	if c.Charge != 0 {
		d.Charge = c.Charge
	}
	if c.CollideRadius != 0 {
		d.CollideRadius = c.CollideRadius
	}
	if c.CollideStrength != 0 {
		d.CollideStrength = c.CollideStrength
	}
	if c.Alpha != 0 {
		d.Alpha = c.Alpha
	}
	if c.AlphaMin != 0 {
		d.AlphaMin = c.AlphaMin
		// keep roughly 300 ticks to settle unless a decay is given
		d.AlphaDecay = 1 - math.Pow(d.AlphaMin, 1.0/300)
	}
	if c.AlphaDecay != 0 {
		d.AlphaDecay = c.AlphaDecay
	}
	if c.VelocityDecay != 0 {
		d.VelocityDecay = c.VelocityDecay
	}
	if c.DragAlphaTarget != 0 {
		d.DragAlphaTarget = c.DragAlphaTarget
	}
	return d
}
