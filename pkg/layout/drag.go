package layout

import (
	"github.com/cockroachdb/errors"

	"github.com/OFFIS-RIT/kgview/pkg/graph"
)

// ErrUnknownNode is returned by the pinning operations for ids that are not
// part of the simulated graph.
var ErrUnknownNode = errors.New("layout: unknown node")

func (s *Simulation) node(id string) (*graph.Node, error) {
	for _, n := range s.nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownNode, "%q", id)
}

// Pin fixes the node at (x, y). Force integration leaves it there until Unpin.
func (s *Simulation) Pin(id string, x, y float64) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	n.Pinned = true
	n.FX, n.FY = x, y
	return nil
}

// Unpin returns the node to free simulation.
func (s *Simulation) Unpin(id string) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	n.Pinned = false
	return nil
}

// DragStart pins the node at its current position. The first active drag
// warms the simulation to DragAlphaTarget and restarts it.
func (s *Simulation) DragStart(id string) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	if s.drags == 0 {
		s.SetAlphaTarget(s.cfg.DragAlphaTarget)
		s.Restart(s.alpha)
	}
	s.drags++
	return s.Pin(id, n.X, n.Y)
}

// Drag moves the pin of a dragged node.
func (s *Simulation) Drag(id string, x, y float64) error {
	return s.Pin(id, x, y)
}

// DragEnd releases the node. When the last drag ends alpha decays toward zero
// again.
func (s *Simulation) DragEnd(id string) error {
	if err := s.Unpin(id); err != nil {
		return err
	}
	if s.drags > 0 {
		s.drags--
	}
	if s.drags == 0 {
		s.SetAlphaTarget(0)
	}
	return nil
}

// Dragging reports whether any drag is active.
func (s *Simulation) Dragging() bool {
	return s.drags > 0
}
