package explorer

import (
	"context"
	"slices"

	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
	"github.com/OFFIS-RIT/kgview/pkg/store"

	"github.com/cockroachdb/errors"
)

// ErrNoGraphs is returned when the server stores no graph at all.
var ErrNoGraphs = errors.New("no graphs stored")

// GraphSource lists, loads and stores graph documents. *client.Client
// satisfies it.
type GraphSource interface {
	ListGraphs(ctx context.Context) ([]string, error)
	GetGraph(ctx context.Context, name string) (*graph.Graph, error)
	PutGraphs(ctx context.Context, graphs []client.Upload) error
}

// Selection is a loaded graph together with the names it was chosen from.
type Selection struct {
	Name  string
	Names []string
	Graph *graph.Graph
}

// Open loads the graph called name, or the first stored graph when name is
// empty or unknown.
func Open(ctx context.Context, src GraphSource, name string) (*Selection, error) {
	names, err := src.ListGraphs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list graphs")
	}
	if len(names) == 0 {
		return nil, errors.WithHint(ErrNoGraphs, "upload a graph document first")
	}
	if !slices.Contains(names, name) {
		name = names[0]
	}

	g, err := src.GetGraph(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", name)
	}
	return &Selection{Name: name, Names: names, Graph: g}, nil
}

// Upload stores the documents and opens the first of them.
func Upload(ctx context.Context, src GraphSource, files []client.Upload) (*Selection, error) {
	if len(files) == 0 {
		return nil, errors.New("no graphs provided")
	}
	if err := src.PutGraphs(ctx, files); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "upload failed"), "check that the documents are valid JSON")
	}
	first, err := store.BaseName(files[0].Name)
	if err != nil {
		return nil, err
	}
	return Open(ctx, src, first)
}
