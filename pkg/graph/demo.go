package graph

import _ "embed"

// DemoName is the file name the demonstration graph is stored under.
const DemoName = "graph-theory.json"

//go:embed demo.json
var demoDocument []byte

// DemoDocument returns the raw demonstration graph document.
func DemoDocument() []byte {
	out := make([]byte, len(demoDocument))
	copy(out, demoDocument)
	return out
}

// Demo returns a freshly loaded copy of the demonstration graph of graph
// theory concepts.
func Demo() *Graph {
	g, err := Parse(demoDocument)
	if err != nil {
		panic("graph: embedded demo graph is invalid: " + err.Error())
	}
	return g
}
