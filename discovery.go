package bundler

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/branched-services/go-bundler/compiler"
)

// ScriptExtensions lists the file extensions discovery picks up.
var ScriptExtensions = []string{".hl", ".helios"}

// skipDirs are dependency and VCS directories never searched for scripts.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	".hg":          true,
	".svn":         true,
}

// Source is a discovered script file.
type Source struct {
	// Path is slash separated and relative to the discovery root.
	Path string
	Text string
	// Name is the logical name from the header. It is set by triage.
	Name string
}

// ListSources walks fsys and reads every script file. Files are read
// concurrently; the result is sorted by path and complete before it is
// returned.
func ListSources(ctx context.Context, fsys fs.FS) ([]Source, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if slices.Contains(ScriptExtensions, path.Ext(p)) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bundler: listing scripts: %w", err)
	}
	sort.Strings(paths)

	sources := make([]Source, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("bundler: reading %s: %w", p, err)
			}
			sources[i] = Source{Path: p, Text: normalizeSource(b)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// normalizeSource strips a byte order mark and converts to NFC.
func normalizeSource(b []byte) string {
	return norm.NFC.String(strings.TrimPrefix(string(b), "\ufeff"))
}

// triaged is the result of routing sources into collections.
type triaged struct {
	sources    []Source
	validators ValidatorCollection
	modules    ModuleCollection
	endpoints  EndpointCollection
	testing    []string
}

// triage parses every header, enforces global name uniqueness and routes
// each script by purpose. It fails before any script is registered.
func triage(c compiler.Compiler, sources []Source) (*triaged, error) {
	t := &triaged{sources: make([]Source, 0, len(sources))}
	seen := make(map[string]bool, len(sources))

	for _, src := range sources {
		h, err := compiler.ParseHeader(src.Text)
		if err != nil {
			return nil, &HeaderError{Path: src.Path, Err: err}
		}
		if seen[h.Name] {
			return nil, &DuplicateNameError{Path: src.Path, Name: h.Name}
		}
		seen[h.Name] = true

		purpose, ok := compiler.ParsePurpose(h.Keyword)
		if !ok {
			return nil, &UnknownPurposeError{Path: src.Path, Purpose: h.Keyword}
		}

		switch purpose {
		case compiler.PurposeSpending, compiler.PurposeMinting, compiler.PurposeStaking:
			v, err := NewValidatorScript(c, src.Path, src.Text, h.Name, purpose)
			if err != nil {
				return nil, err
			}
			err = t.validators.Add(v)
		case compiler.PurposeEndpoint:
			if IsReservedEndpoint(h.Name) {
				return nil, fmt.Errorf("%w: '%s' in %s", ErrReservedName, h.Name, src.Path)
			}
			err = t.endpoints.Add(NewEndpointScript(c, src.Path, src.Text, h.Name))
		case compiler.PurposeModule:
			err = t.modules.Add(NewModuleScript(src.Path, src.Text, h.Name))
		case compiler.PurposeTesting:
			t.testing = append(t.testing, h.Name)
		}
		if err != nil {
			return nil, err
		}

		src.Name = h.Name
		t.sources = append(t.sources, src)
	}
	return t, nil
}
