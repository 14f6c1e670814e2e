package bundler

import (
	"fmt"
	"maps"
	"slices"

	"github.com/branched-services/go-bundler/compiler"
)

// reservedEndpoints are member names of the generated contract binding.
var reservedEndpoints = map[string]bool{
	"agent":              true,
	"network":            true,
	"getSources":         true,
	"jsToUplcHelpers":    true,
	"uplcToJsHelpers":    true,
	"runEndpointProgram": true,
}

// IsReservedEndpoint reports whether name clashes with the generated binding.
func IsReservedEndpoint(name string) bool {
	return reservedEndpoints[name]
}

// EndpointScript is an off-chain script. It refers to validators through a
// compile macro evaluated at run time, so compiling an endpoint never
// compiles a validator.
type EndpointScript struct {
	contextScript
	validators slot[[]*ValidatorScript]

	artifact compiler.Artifact
	deps     []string
}

// NewEndpointScript creates an endpoint script.
func NewEndpointScript(c compiler.Compiler, path, src, name string) *EndpointScript {
	return &EndpointScript{
		contextScript: newContextScript(c, path, src, name, compiler.PurposeEndpoint),
		validators:    newSlot[[]*ValidatorScript]("validators of " + name),
	}
}

// RegisterValidators records every validator of the build. It may only be
// called once.
func (e *EndpointScript) RegisterValidators(validators []*ValidatorScript) error {
	return e.validators.Set(validators)
}

// Validators returns the validators registered with e.
func (e *EndpointScript) Validators() ([]*ValidatorScript, error) {
	return e.validators.Get()
}

// Compile lowers e. The result is cached.
func (e *EndpointScript) Compile() (compiler.Artifact, error) {
	if e.artifact != nil {
		return e.artifact, nil
	}

	program, err := e.lower(compiler.LowerOptions{})
	if err != nil {
		return nil, err
	}
	types, err := e.ScriptTypes()
	if err != nil {
		return nil, err
	}
	validators, err := e.Validators()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(validators))
	for _, v := range validators {
		known[v.name] = true
	}

	ir := program.IR(true)
	var deps []string
	for _, name := range slices.Sorted(maps.Keys(types)) {
		marker := compiler.ScriptMarker(name)
		if !ir.Includes(marker) {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("%w: %s, referenced by %s", ErrScriptNotFound, name, e.name)
		}
		ir = ir.Substitute(marker, compiler.CompileMacro(name))
		deps = append(deps, name)
	}

	a, err := ir.Lower(compiler.PurposeEndpoint, true)
	if err != nil {
		return nil, e.compileError(err)
	}
	e.artifact = a
	e.deps = deps
	return a, nil
}

// Dependencies returns the sorted names of the validators e references.
// It is empty until Compile succeeds.
func (e *EndpointScript) Dependencies() []string {
	return slices.Clone(e.deps)
}
