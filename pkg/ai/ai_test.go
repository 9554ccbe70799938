package ai

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExplainPrompt(t *testing.T) {
	p := ExplainPrompt("Graph", []string{"Vertex", "Edge"})
	assert.Contains(t, p, `Explain the concept "Graph" in depth`)
	assert.Contains(t, p, "(like Vertex, Edge)")
}

func TestExplainPrompt_TruncatesNeighbors(t *testing.T) {
	neighbors := make([]string, 0, 9)
	for i := range 9 {
		neighbors = append(neighbors, fmt.Sprintf("N%d", i))
	}
	p := ExplainPrompt("Hub", neighbors)
	assert.Contains(t, p, "(like N0, N1, N2, N3, N4, N5)")
	assert.NotContains(t, p, "N6")
}

func TestExplainPrompt_NoNeighbors(t *testing.T) {
	assert.Contains(t, ExplainPrompt("Loner", nil), "(like )")
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"status error", &StatusError{StatusCode: http.StatusNotFound}, http.StatusNotFound},
		{"wrapped", errors.Wrap(&StatusError{StatusCode: http.StatusBadGateway}, "ask"), http.StatusBadGateway},
		{"plain", errors.New("dial tcp: refused"), http.StatusInternalServerError},
		{"non-error status", &StatusError{StatusCode: http.StatusOK}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestStatusError_Message(t *testing.T) {
	assert.Equal(t, "model not found", (&StatusError{StatusCode: 404, Message: "model not found"}).Error())
	assert.Equal(t, "model endpoint returned 503 Service Unavailable", (&StatusError{StatusCode: 503}).Error())
}
