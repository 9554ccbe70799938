package graph

// Neighborhood returns the set of node ids within depth hops of id, ignoring
// edge direction. Depth 0 is the node alone, depth 1 adds its direct
// neighbors. Each pass extends the set by exactly one hop.
func (g *Graph) Neighborhood(id string, depth int) map[string]struct{} {
	set := map[string]struct{}{id: {}}
	for k := 0; k < depth; k++ {
		next := make([]string, 0)
		for _, e := range g.Edges {
			_, hasSrc := set[e.Source.ID]
			_, hasDst := set[e.Target.ID]
			if hasSrc && !hasDst {
				next = append(next, e.Target.ID)
			}
			if hasDst && !hasSrc {
				next = append(next, e.Source.ID)
			}
		}
		if len(next) == 0 {
			break
		}
		for _, n := range next {
			set[n] = struct{}{}
		}
	}
	return set
}
