package bundler

import (
	"path"
	"regexp"

	"github.com/branched-services/go-bundler/compiler"
)

// Script is a single source file identified by its logical name.
type Script struct {
	path    string
	src     string
	name    string
	purpose compiler.Purpose
}

// Path returns the slash-separated path relative to the discovery root.
func (s *Script) Path() string {
	return s.path
}

// Src returns the current source text. It reflects import rewriting once
// modules are registered.
func (s *Script) Src() string {
	return s.src
}

// Name returns the logical name declared in the header.
func (s *Script) Name() string {
	return s.name
}

// Purpose returns the purpose declared in the header.
func (s *Script) Purpose() compiler.Purpose {
	return s.purpose
}

// ModuleScript is a Script that can import, and be imported by, modules.
type ModuleScript struct {
	Script
	modules slot[[]*ModuleScript]
}

// NewModuleScript creates a module script.
func NewModuleScript(path, src, name string) *ModuleScript {
	return newModuleScript(path, src, name, compiler.PurposeModule)
}

func newModuleScript(path, src, name string, purpose compiler.Purpose) *ModuleScript {
	return &ModuleScript{
		Script:  Script{path: path, src: src, name: name, purpose: purpose},
		modules: newSlot[[]*ModuleScript]("modules of " + name),
	}
}

// Modules returns every module of the build, including m itself when m is a
// module.
func (m *ModuleScript) Modules() ([]*ModuleScript, error) {
	return m.modules.Get()
}

// ModuleSources returns the source text of every registered module, in
// registration order. File index i+1 in compiler diagnostics refers to
// element i.
func (m *ModuleScript) ModuleSources() ([]string, error) {
	modules, err := m.modules.Get()
	if err != nil {
		return nil, err
	}
	srcs := make([]string, len(modules))
	for i, mod := range modules {
		srcs[i] = mod.src
	}
	return srcs, nil
}

// RegisterModules rewrites imports by path into imports by logical name and
// records the module list. It may only be called once.
func (m *ModuleScript) RegisterModules(modules []*ModuleScript) error {
	if m.modules.IsSet() {
		return m.modules.Set(modules)
	}
	src, err := rewriteImports(m.path, m.name, m.src, modules)
	if err != nil {
		return err
	}
	m.src = src
	return m.modules.Set(modules)
}

// importRE matches an import whose target is still a quoted path.
var importRE = regexp.MustCompile(`import\s*\{[^}]*\}\s*from\s*("[^"]*")`)

// rewriteImports replaces the quoted path of every import in src with the
// name of the module it resolves to. Each pass removes one quoted import, so
// the loop terminates, and the result contains none.
func rewriteImports(scriptPath, scriptName, src string, modules []*ModuleScript) (string, error) {
	byPath := make(map[string]string, len(modules))
	for _, mod := range modules {
		byPath[mod.path] = mod.name
	}

	for {
		loc := importRE.FindStringSubmatchIndex(src)
		if loc == nil {
			return src, nil
		}
		rel := src[loc[2]+1 : loc[3]-1]
		name, ok := resolveImport(scriptPath, rel, byPath)
		if !ok {
			return "", &ModuleNotFoundError{Script: scriptName, Path: path.Join(path.Dir(scriptPath), rel)}
		}
		src = src[:loc[2]] + name + src[loc[3]:]
	}
}

// resolveImport looks rel up relative to the importing file. A path without
// a file extension may name a file with one, or a directory with an index.
func resolveImport(scriptPath, rel string, byPath map[string]string) (string, bool) {
	p := path.Join(path.Dir(scriptPath), rel)
	for _, candidate := range []string{p, p + ".hl", p + ".helios", p + "/index.hl", p + "/index.helios"} {
		if name, ok := byPath[candidate]; ok {
			return name, true
		}
	}
	return "", false
}
