package graph

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// adjacency builds the traversal lists for a path query. Every edge can be
// walked source to target. The reverse direction is allowed unless the query
// is directed and the edge itself is directed.
func (g *Graph) adjacency(directed bool) map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n.ID] = nil
	}
	for _, e := range g.Edges {
		adj[e.Source.ID] = append(adj[e.Source.ID], e.Target.ID)
		if !directed || !e.Directed {
			adj[e.Target.ID] = append(adj[e.Target.ID], e.Source.ID)
		}
	}
	return adj
}

// ShortestPath returns the node ids on a shortest path from fromID to toID,
// both ends included. Neighbors are expanded in edge order so that among
// equally short paths the first discovered one wins.
//
// Unknown ids yield ErrLookup, an unreachable destination ErrNoPath.
func (g *Graph) ShortestPath(fromID, toID string, directed bool) ([]string, error) {
	if _, ok := g.byID[fromID]; !ok {
		return nil, unknownNode(fromID)
	}
	if _, ok := g.byID[toID]; !ok {
		return nil, unknownNode(toID)
	}
	if fromID == toID {
		return []string{fromID}, nil
	}

	adj := g.adjacency(directed)
	prev := map[string]string{fromID: ""}
	queue := []string{fromID}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == toID {
			break
		}
		for _, w := range adj[v] {
			if _, seen := prev[w]; seen {
				continue
			}
			prev[w] = v
			queue = append(queue, w)
		}
	}

	if _, ok := prev[toID]; !ok {
		return nil, errors.Wrapf(ErrNoPath, "%s -> %s", fromID, toID)
	}

	path := []string{}
	for cur := toID; cur != ""; cur = prev[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// ErrPathQuery is returned by ParsePathQuery for input without a separator.
var ErrPathQuery = errors.New(`enter "A -> B" or "A,B" in the search box for path`)

// ParsePathQuery splits "A -> B" or "A,B" into its two trimmed node ids.
func ParsePathQuery(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	sep := ""
	switch {
	case strings.Contains(raw, "->"):
		sep = "->"
	case strings.Contains(raw, ","):
		sep = ","
	default:
		return "", "", ErrPathQuery
	}
	parts := strings.Split(raw, sep)
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
