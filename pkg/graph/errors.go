package graph

import "github.com/cockroachdb/errors"

var (
	// ErrMalformedGraph marks documents that cannot be loaded. A load that
	// fails with it never returns a partial graph.
	ErrMalformedGraph = errors.New("malformed graph")

	// ErrLookup marks queries that reference an unknown node identifier.
	ErrLookup = errors.New("unknown node")

	// ErrNoPath is returned by ShortestPath when the destination is unreachable.
	ErrNoPath = errors.New("no path found")
)

func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedGraph, format, args...)
}

func unknownNode(id string) error {
	return errors.Wrapf(ErrLookup, "%q", id)
}
