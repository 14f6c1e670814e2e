package bundler

import (
	"context"
	"errors"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/branched-services/go-bundler/compiler/reference"
)

func TestListSources(t *testing.T) {
	t.Run("finds scripts and skips dependency directories", func(t *testing.T) {
		sources, err := ListSources(context.Background(), mapFS(fixtureFiles()))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var paths []string
		for _, s := range sources {
			paths = append(paths, s.Path)
		}
		expected := []string{"contracts/lib/utils.hl", "contracts/oracle.hl", "contracts/vault.hl", "endpoints/mint_nft.hl"}
		if !slices.Equal(paths, expected) {
			t.Errorf("Expected %v, got %v", expected, paths)
		}
	})

	t.Run("both extensions are picked up", func(t *testing.T) {
		fsys := mapFS(map[string]string{
			"a.helios": "module a",
			"b.hl":     "module b",
			"c.hls":    "module c",
		})
		sources, err := ListSources(context.Background(), fsys)
		if err != nil {
			t.Fatal(err)
		}
		if len(sources) != 2 {
			t.Errorf("Expected 2 sources, got %d", len(sources))
		}
	})

	t.Run("strips byte order mark and normalizes to NFC", func(t *testing.T) {
		// "e" followed by a combining acute accent.
		fsys := fstest.MapFS{"a.hl": {Data: []byte("\ufeffmodule a\n// cafe\u0301")}}
		sources, err := ListSources(context.Background(), fsys)
		if err != nil {
			t.Fatal(err)
		}
		if sources[0].Text != "module a\n// caf\u00e9" {
			t.Errorf("Unexpected text %q", sources[0].Text)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := ListSources(ctx, mapFS(fixtureFiles())); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestTriage(t *testing.T) {
	c := reference.New()

	t.Run("routes by purpose", func(t *testing.T) {
		sources := []Source{
			{Path: "m.hl", Text: "module m"},
			{Path: "v.hl", Text: "spending v\nfunc main(_, _, _) -> Bool { true }"},
			{Path: "p.hl", Text: "minting p\nfunc main(_, _) -> Bool { true }"},
			{Path: "s.hl", Text: "staking s\nfunc main(_, _) -> Bool { true }"},
			{Path: "e.hl", Text: "endpoint e\nfunc main() -> Bool { true }"},
			{Path: "t.hl", Text: "testing t\nfunc main() -> Bool { true }"},
			{Path: "l.hl", Text: "linking l\nfunc main() -> Bool { true }"},
		}
		tr, err := triage(c, sources)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if tr.validators.Len() != 3 || tr.modules.Len() != 1 || tr.endpoints.Len() != 2 {
			t.Errorf("Unexpected routing: %d validators, %d modules, %d endpoints",
				tr.validators.Len(), tr.modules.Len(), tr.endpoints.Len())
		}
		if !slices.Equal(tr.testing, []string{"t"}) {
			t.Errorf("Expected testing [t], got %v", tr.testing)
		}
		if tr.sources[1].Name != "v" {
			t.Errorf("Expected source names to be recorded, got %q", tr.sources[1].Name)
		}
	})

	t.Run("names are unique across purposes", func(t *testing.T) {
		sources := []Source{
			{Path: "a/x.hl", Text: "module x"},
			{Path: "b/x.hl", Text: "minting x\nfunc main(_, _) -> Bool { true }"},
		}
		_, err := triage(c, sources)
		var dup *DuplicateNameError
		if !errors.As(err, &dup) || dup.Path != "b/x.hl" || dup.Name != "x" {
			t.Errorf("Expected duplicate x in b/x.hl, got %v", err)
		}
	})

	t.Run("unparseable header", func(t *testing.T) {
		_, err := triage(c, []Source{{Path: "bad.hl", Text: "123"}})
		var herr *HeaderError
		if !errors.As(err, &herr) || herr.Path != "bad.hl" {
			t.Errorf("Expected HeaderError for bad.hl, got %v", err)
		}
		if !errors.Is(err, ErrInvalidHeader) {
			t.Error("errors.Is should find ErrInvalidHeader")
		}
	})

	t.Run("unknown purpose", func(t *testing.T) {
		_, err := triage(c, []Source{{Path: "o.hl", Text: "oracle o"}})
		var uerr *UnknownPurposeError
		if !errors.As(err, &uerr) || uerr.Purpose != "oracle" {
			t.Errorf("Expected UnknownPurposeError, got %v", err)
		}
	})

	t.Run("reserved endpoint name", func(t *testing.T) {
		_, err := triage(c, []Source{{Path: "n.hl", Text: "endpoint network\nfunc main() -> Bool { true }"}})
		if !errors.Is(err, ErrReservedName) {
			t.Errorf("Expected ErrReservedName, got %v", err)
		}
	})

	t.Run("reserved names are fine for other purposes", func(t *testing.T) {
		if _, err := triage(c, []Source{{Path: "n.hl", Text: "module network"}}); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})
}

func TestNewFailures(t *testing.T) {
	t.Run("duplicate names fail before imports resolve", func(t *testing.T) {
		files := map[string]string{
			"a.hl": "spending a\nimport { X } from \"./missing\"\nfunc main(_, _, _) -> Bool { true }",
			"b.hl": "minting a\nfunc main(_, _) -> Bool { true }",
		}
		_, err := New(context.Background(), mapFS(files), WithLockStore(NewMemoryLockStore(nil)))
		if !errors.Is(err, ErrDuplicateName) {
			t.Errorf("Expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("unresolvable import", func(t *testing.T) {
		files := map[string]string{
			"a.hl": "spending a\nimport { X } from \"./missing\"\nfunc main(_, _, _) -> Bool { true }",
		}
		_, err := New(context.Background(), mapFS(files), WithLockStore(NewMemoryLockStore(nil)))
		var nf *ModuleNotFoundError
		if !errors.As(err, &nf) || nf.Script != "a" || nf.Path != "missing" {
			t.Errorf("Expected ModuleNotFoundError, got %v", err)
		}
	})
}
