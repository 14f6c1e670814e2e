package bundler

import (
	"fmt"
	"maps"
	"slices"

	"github.com/branched-services/go-bundler/compiler"
)

// ValidatorScript is a script compiled to on-chain bytecode. It may refer
// to itself and to sibling validators by hash.
type ValidatorScript struct {
	contextScript
	validators slot[[]*ValidatorScript]

	// compiled is keyed by the simplify flag. The optimized and the
	// source-mapped build are separate entries.
	compiled map[bool]*compiledValidator
}

type compiledValidator struct {
	artifact compiler.Artifact
	ir       compiler.IR
	deps     []string
}

// NewValidatorScript creates a validator. purpose must be spending, minting
// or staking.
func NewValidatorScript(c compiler.Compiler, path, src, name string, purpose compiler.Purpose) (*ValidatorScript, error) {
	if !purpose.IsValidator() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPurpose, purpose)
	}
	return &ValidatorScript{
		contextScript: newContextScript(c, path, src, name, purpose),
		validators:    newSlot[[]*ValidatorScript]("validators of " + name),
		compiled:      make(map[bool]*compiledValidator, 2),
	}, nil
}

// Type returns the kind of hash the validator is addressed by.
func (v *ValidatorScript) Type() (compiler.ScriptKind, error) {
	switch v.purpose {
	case compiler.PurposeSpending:
		return compiler.KindValidatorHash, nil
	case compiler.PurposeMinting:
		return compiler.KindMintingPolicyHash, nil
	case compiler.PurposeStaking:
		return compiler.KindStakingValidatorHash, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPurpose, v.purpose)
	}
}

// Validators returns the sibling set registered by the resolver.
func (v *ValidatorScript) Validators() ([]*ValidatorScript, error) {
	return v.validators.Get()
}

// RegisterValidators records every validator of the build, v included. It
// may only be called once.
func (v *ValidatorScript) RegisterValidators(validators []*ValidatorScript) error {
	return v.validators.Set(validators)
}

// NumParams returns the number of positional parameters v declares.
func (v *ValidatorScript) NumParams() (int, error) {
	p, err := v.lower(compiler.LowerOptions{AllowParams: true})
	if err != nil {
		return 0, err
	}
	return p.NumParams(), nil
}

// Compile lowers v to bytecode. callers is the chain of validators whose
// compilation is in progress; a repeat of v's name in it is a cycle.
// Sibling validators are compiled optimized regardless of simplify, so the
// hash substituted for them is their deployed hash.
func (v *ValidatorScript) Compile(callers []string, simplify bool) (compiler.Artifact, error) {
	c, err := v.compile(callers, simplify)
	if err != nil {
		return nil, err
	}
	return c.artifact, nil
}

func (v *ValidatorScript) compile(callers []string, simplify bool) (*compiledValidator, error) {
	if slices.Contains(callers, v.name) {
		return nil, &CycleError{Chain: append(slices.Clone(callers), v.name)}
	}
	if c, ok := v.compiled[simplify]; ok {
		return c, nil
	}

	program, err := v.lower(compiler.LowerOptions{AllowParams: true})
	if err != nil {
		return nil, err
	}
	types, err := v.ScriptTypes()
	if err != nil {
		return nil, err
	}

	// The unsimplified form is the canonical one to scan; substitution
	// happens on the form being lowered.
	test := program.IR(false)
	ir := program.IR(simplify)
	var deps []string

	for _, name := range slices.Sorted(maps.Keys(types)) {
		marker := compiler.ScriptMarker(name)
		if !test.Includes(marker) {
			continue
		}

		if name == v.name {
			expr, err := compiler.CurrentHashExpr(v.purpose, max(program.ContextIndex(), 0))
			if err != nil {
				return nil, v.compileError(err)
			}
			ir = ir.Substitute(marker, expr)
			continue
		}

		sibling, err := v.sibling(name)
		if err != nil {
			return nil, err
		}
		a, err := sibling.Compile(append(slices.Clone(callers), v.name), true)
		if err != nil {
			return nil, err
		}
		ir = ir.Substitute(marker, compiler.HashLiteral(a.Hash()))
		deps = append(deps, name)
	}

	var a compiler.Artifact
	if n := program.NumParams(); n > 0 {
		a, err = ir.LowerParametric(v.purpose, n, simplify)
	} else {
		a, err = ir.Lower(v.purpose, simplify)
	}
	if err != nil {
		return nil, v.compileError(err)
	}

	c := &compiledValidator{artifact: a, ir: ir, deps: deps}
	v.compiled[simplify] = c
	return c, nil
}

func (v *ValidatorScript) sibling(name string) (*ValidatorScript, error) {
	validators, err := v.Validators()
	if err != nil {
		return nil, err
	}
	for _, s := range validators {
		if s.name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s, referenced by %s", ErrScriptNotFound, name, v.name)
}

// DagDependencies returns the sorted names of the siblings v references.
// v is compiled unsimplified first if it has not been compiled yet.
func (v *ValidatorScript) DagDependencies() ([]string, error) {
	for _, simplify := range []bool{false, true} {
		if c, ok := v.compiled[simplify]; ok {
			return slices.Clone(c.deps), nil
		}
	}
	c, err := v.compile(nil, false)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.deps), nil
}

// FinalIR returns the intermediate form v was lowered from, after all
// references were substituted.
func (v *ValidatorScript) FinalIR(simplify bool) (string, error) {
	c, err := v.compile(nil, simplify)
	if err != nil {
		return "", err
	}
	return c.ir.String(), nil
}

// CompileDatumCheck compiles the datum shape check of a spending validator.
// ok is false when the validator's program has no datum.
func (v *ValidatorScript) CompileDatumCheck() (a compiler.Artifact, ok bool, err error) {
	program, err := v.lower(compiler.LowerOptions{AllowParams: true})
	if err != nil {
		return nil, false, err
	}
	a, ok, err = program.DatumCheck()
	if err != nil {
		return nil, false, v.compileError(err)
	}
	return a, ok, nil
}

// DeploymentHash derives the digest that addresses v on chain, and the
// category name used in lock diagnostics.
func (v *ValidatorScript) DeploymentHash(a compiler.Artifact) (compiler.Digest, string, error) {
	switch v.purpose {
	case compiler.PurposeSpending:
		return a.ValidatorHash(), "validator", nil
	case compiler.PurposeMinting:
		return a.MintingPolicyHash(), "policy", nil
	case compiler.PurposeStaking:
		return a.StakingValidatorHash(), "staking-validator", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedPurpose, v.purpose)
	}
}
