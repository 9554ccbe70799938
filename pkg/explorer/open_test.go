package explorer

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/kgview/pkg/client"
	"github.com/OFFIS-RIT/kgview/pkg/graph"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	docs   map[string][]byte
	putErr error
}

func (m *memSource) ListGraphs(context.Context) ([]string, error) {
	names := make([]string, 0, len(m.docs))
	for _, n := range []string{"a.json", "b.json", "chain.json", graph.DemoName} {
		if _, ok := m.docs[n]; ok {
			names = append(names, n)
		}
	}
	return names, nil
}

func (m *memSource) GetGraph(_ context.Context, name string) (*graph.Graph, error) {
	raw, ok := m.docs[name]
	if !ok {
		return nil, errors.Mark(errors.New("not found"), client.ErrNetwork)
	}
	return graph.Parse(raw)
}

func (m *memSource) PutGraphs(_ context.Context, graphs []client.Upload) error {
	if m.putErr != nil {
		return m.putErr
	}
	for _, g := range graphs {
		m.docs[g.Name] = g.Data
	}
	return nil
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	src := &memSource{docs: map[string][]byte{
		graph.DemoName: graph.DemoDocument(),
		"chain.json":   []byte(chain),
	}}

	sel, err := Open(ctx, src, "chain.json")
	require.NoError(t, err)
	assert.Equal(t, "chain.json", sel.Name)
	assert.Len(t, sel.Graph.Nodes, 3)
	assert.Equal(t, []string{"chain.json", graph.DemoName}, sel.Names)

	sel, err = Open(ctx, src, "missing.json")
	require.NoError(t, err)
	assert.Equal(t, "chain.json", sel.Name)
}

func TestOpen_Empty(t *testing.T) {
	_, err := Open(context.Background(), &memSource{docs: map[string][]byte{}}, "")
	assert.ErrorIs(t, err, ErrNoGraphs)
}

func TestOpen_Malformed(t *testing.T) {
	src := &memSource{docs: map[string][]byte{"a.json": []byte(`{"nodes":[]}`)}}
	_, err := Open(context.Background(), src, "a.json")
	assert.ErrorIs(t, err, graph.ErrMalformedGraph)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	src := &memSource{docs: map[string][]byte{graph.DemoName: graph.DemoDocument()}}

	sel, err := Upload(ctx, src, []client.Upload{{Name: "b.json", Data: []byte(chain)}})
	require.NoError(t, err)
	assert.Equal(t, "b.json", sel.Name)
	assert.Len(t, sel.Graph.Edges, 2)

	src.putErr = errors.New("disk full")
	_, err = Upload(ctx, src, []client.Upload{{Name: "a.json", Data: []byte(chain)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload failed")

	_, err = Upload(ctx, src, nil)
	assert.Error(t, err)
}
