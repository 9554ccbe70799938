package store

import (
	"context"
	"path"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound is returned by Get when no graph with the name is stored.
	ErrNotFound = errors.New("graph not found")
	// ErrInvalidName is returned for names without a usable base name.
	ErrInvalidName = errors.New("invalid graph name")
)

// GraphExt is the extension of listed graph documents.
const GraphExt = ".json"

// GraphStorage persists named graph documents. Names are always reduced to
// their base name before they reach a backend, so a caller can never escape
// the storage root. Implementations are safe for concurrent use.
type GraphStorage interface {
	// List returns the stored graph names ending in GraphExt, sorted.
	List(ctx context.Context) ([]string, error)
	// Get returns the raw document stored under name or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put creates or replaces the document stored under name.
	Put(ctx context.Context, name string, data []byte) error
}

// BaseName strips any directory components from name.
func BaseName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return base, nil
}

// GraphNames keeps the names carrying GraphExt, sorted and without duplicates.
func GraphNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasSuffix(n, GraphExt) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Seed stores data under name when the storage holds no graphs yet.
// It reports whether the document was written.
func Seed(ctx context.Context, s GraphStorage, name string, data []byte) (bool, error) {
	names, err := s.List(ctx)
	if err != nil {
		return false, errors.Wrap(err, "list graphs")
	}
	if len(names) > 0 {
		return false, nil
	}
	if err := s.Put(ctx, name, data); err != nil {
		return false, errors.Wrapf(err, "seed %s", name)
	}
	return true, nil
}
