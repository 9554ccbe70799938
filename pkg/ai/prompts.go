package ai

import (
	"fmt"
	"strings"
)

// MaxPromptNeighbors is how many adjacent concepts an explanation prompt names.
const MaxPromptNeighbors = 6

// Defaults of the explanation request.
const (
	ExplainTemperature = 0.2
	ExplainMaxTokens   = 900
)

const explainPrompt = `You are a graph theory tutor. Explain the concept "%s" in depth: definition, key properties, relationships to adjacent concepts in a knowledge graph (like %s), common pitfalls, 1-2 worked examples, and when to use it. Use Markdown with code blocks and LaTeX where helpful.`

// ExplainPrompt builds the tutor prompt for a node. Only the first
// MaxPromptNeighbors neighbors are named.
func ExplainPrompt(id string, neighbors []string) string {
	if len(neighbors) > MaxPromptNeighbors {
		neighbors = neighbors[:MaxPromptNeighbors]
	}
	return fmt.Sprintf(explainPrompt, id, strings.Join(neighbors, ", "))
}
