package bundler

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Dag maps each validator to the sorted names of the siblings its compiled
// form references.
type Dag map[string][]string

// Names returns the validator names, sorted.
func (d Dag) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Graph builds a directed graph with an edge from every dependency to its
// dependent. An edge closing a cycle fails with a CycleError.
func (d Dag) Graph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())
	names := d.Names()
	for _, n := range names {
		if err := g.AddVertex(n); err != nil {
			return nil, err
		}
	}
	for _, n := range names {
		for _, dep := range d[n] {
			err := g.AddEdge(dep, n)
			switch {
			case errors.Is(err, graph.ErrVertexNotFound):
				return nil, fmt.Errorf("%w: %s, referenced by %s", ErrScriptNotFound, dep, n)
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				return nil, cycleError(g, n, dep)
			case err != nil:
				return nil, err
			}
		}
	}
	return g, nil
}

// TopologicalOrder returns the validators with every dependency before its
// dependents. Ties are broken by name.
func (d Dag) TopologicalOrder() ([]string, error) {
	g, err := d.Graph()
	if err != nil {
		return nil, err
	}
	return graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
}

// WriteDOT renders the graph in Graphviz DOT format.
func (d Dag) WriteDOT(w io.Writer) error {
	g, err := d.Graph()
	if err != nil {
		return err
	}
	return draw.DOT(g, w)
}

// cycleError reports the cycle closed by n depending on dep. The graph already
// has a path from n to dep, which read backwards leads from dep down to n.
func cycleError(g graph.Graph[string, string], n, dep string) error {
	path, err := graph.ShortestPath(g, n, dep)
	if err != nil {
		return &CycleError{Chain: []string{n, dep, n}}
	}
	slices.Reverse(path)
	return &CycleError{Chain: append([]string{n}, path...)}
}
