package bundler

import (
	"errors"
	"maps"

	"github.com/branched-services/go-bundler/compiler"
)

// contextScript is the shared base of scripts that are lowered by the
// compiler: they import modules and see the type of every validator.
type contextScript struct {
	ModuleScript
	compiler    compiler.Compiler
	scriptTypes slot[compiler.ScriptTypes]
	program     compiler.Program
}

func newContextScript(c compiler.Compiler, path, src, name string, purpose compiler.Purpose) contextScript {
	return contextScript{
		ModuleScript: *newModuleScript(path, src, name, purpose),
		compiler:     c,
		scriptTypes:  newSlot[compiler.ScriptTypes]("script types of " + name),
	}
}

// ScriptTypes returns the validator types registered with this script.
func (c *contextScript) ScriptTypes() (compiler.ScriptTypes, error) {
	return c.scriptTypes.Get()
}

// RegisterScriptTypes records the type of every validator in the build. It
// may only be called once.
func (c *contextScript) RegisterScriptTypes(types compiler.ScriptTypes) error {
	return c.scriptTypes.Set(maps.Clone(types))
}

// lower parses the script once; later calls return the same program.
func (c *contextScript) lower(opts compiler.LowerOptions) (compiler.Program, error) {
	if c.program != nil {
		return c.program, nil
	}
	modules, err := c.ModuleSources()
	if err != nil {
		return nil, err
	}
	types, err := c.scriptTypes.Get()
	if err != nil {
		return nil, err
	}
	p, err := c.compiler.Lower(c.src, modules, types, opts)
	if err != nil {
		return nil, c.compileError(err)
	}
	c.program = p
	return p, nil
}

// compileError attributes a compiler failure to the file it came from.
func (c *contextScript) compileError(err error) error {
	e := &CompileError{Script: c.name, Path: c.path, Err: err}
	var serr *compiler.SourceError
	if errors.As(err, &serr) && serr.Index > 0 {
		if modules, merr := c.Modules(); merr == nil && serr.Index <= len(modules) {
			e.Path = modules[serr.Index-1].path
		}
	}
	return e
}
