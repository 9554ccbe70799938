package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (m *memStorage) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.docs))
	for n := range m.docs {
		names = append(names, n)
	}
	return GraphNames(names), nil
}

func (m *memStorage) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *memStorage) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = data
	return nil
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"demo.json":         "demo.json",
		"../../etc/passwd":  "passwd",
		"/abs/path/g.json":  "g.json",
		`..\windows\g.json`: "g.json",
		"  spaced.json ":    "spaced.json",
		"nested/dir/":       "dir",
	}
	for in, want := range cases {
		got, err := BaseName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", ".", "..", "/", "a/.."} {
		_, err := BaseName(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestGraphNames(t *testing.T) {
	got := GraphNames([]string{"b.json", "notes.txt", "a.json", "b.json", "json"})
	assert.Equal(t, []string{"a.json", "b.json"}, got)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := &memStorage{docs: map[string][]byte{}}

	wrote, err := Seed(ctx, s, "demo.json", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = Seed(ctx, s, "other.json", []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, wrote)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo.json"}, names)
}

func TestSeed_SkipsWhenOtherGraphsExist(t *testing.T) {
	ctx := context.Background()
	s := &memStorage{docs: map[string][]byte{"user.json": []byte(`{}`)}}

	wrote, err := Seed(ctx, s, "demo.json", []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, wrote)

	_, err = s.Get(ctx, "demo.json")
	assert.Error(t, err)
}
