package bundler

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
)

func TestDag(t *testing.T) {
	dag := Dag{
		"oracle": {},
		"vault":  {"oracle"},
		"pool":   {"oracle", "vault"},
		"alpha":  {},
	}

	t.Run("names are sorted", func(t *testing.T) {
		if !slices.Equal(dag.Names(), []string{"alpha", "oracle", "pool", "vault"}) {
			t.Errorf("Unexpected names %v", dag.Names())
		}
	})

	t.Run("topological order puts dependencies first", func(t *testing.T) {
		order, err := dag.TopologicalOrder()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := []string{"alpha", "oracle", "vault", "pool"}
		if !slices.Equal(order, expected) {
			t.Errorf("Expected %v, got %v", expected, order)
		}
	})

	t.Run("dot output", func(t *testing.T) {
		var buf bytes.Buffer
		if err := dag.WriteDOT(&buf); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "digraph") || !strings.Contains(out, `"oracle" -> "vault"`) {
			t.Errorf("Unexpected DOT output %s", out)
		}
	})

	t.Run("unknown dependency", func(t *testing.T) {
		_, err := Dag{"vault": {"ghost"}}.Graph()
		if !errors.Is(err, ErrScriptNotFound) {
			t.Errorf("Expected ErrScriptNotFound, got %v", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := Dag{"a": {"b"}, "b": {"a"}}.Graph()
		if !errors.Is(err, ErrCircularDependency) {
			t.Errorf("Expected ErrCircularDependency, got %v", err)
		}
	})

	t.Run("cycles fail every view of the graph", func(t *testing.T) {
		d := Dag{"a": {"b"}, "b": {"a"}}
		if _, err := d.TopologicalOrder(); !errors.Is(err, ErrCircularDependency) {
			t.Errorf("Expected ErrCircularDependency from TopologicalOrder, got %v", err)
		}
		if err := d.WriteDOT(io.Discard); !errors.Is(err, ErrCircularDependency) {
			t.Errorf("Expected ErrCircularDependency from WriteDOT, got %v", err)
		}
	})

	t.Run("long cycle reports the whole chain", func(t *testing.T) {
		_, err := Dag{"a": {"b"}, "b": {"c"}, "c": {"a"}}.Graph()

		var cerr *CycleError
		if !errors.As(err, &cerr) {
			t.Fatalf("Expected CycleError, got %v", err)
		}
		want := []string{"c", "a", "b", "c"}
		if !slices.Equal(cerr.Chain, want) {
			t.Errorf("Expected chain %v, got %v", want, cerr.Chain)
		}
	})
}
