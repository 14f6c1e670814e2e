package bundler

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"

	"github.com/branched-services/go-bundler/compiler"
	"github.com/branched-services/go-bundler/compiler/reference"
)

// Bundle owns every script of a project and drives their compilation.
type Bundle struct {
	compiler  compiler.Compiler
	lockStore LockStore
	logger    *slog.Logger
	config    Config

	sources    []Source
	validators ValidatorCollection
	modules    ModuleCollection
	endpoints  EndpointCollection
	testing    []string
	lock       Lock
}

// New discovers the scripts under fsys and resolves them into a Bundle.
func New(ctx context.Context, fsys fs.FS, opts ...BundleOption) (*Bundle, error) {
	sources, err := ListSources(ctx, fsys)
	if err != nil {
		return nil, err
	}
	return NewFromSources(sources, opts...)
}

// NewFromSources resolves already discovered sources into a Bundle. Sources
// are taken in the given order.
func NewFromSources(sources []Source, opts ...BundleOption) (*Bundle, error) {
	b := &Bundle{
		logger: slog.New(slog.DiscardHandler),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.compiler == nil {
		b.compiler = reference.New()
	}
	if b.lockStore == nil {
		b.lockStore = NewFileLockStore(DefaultLockFile)
	}

	// Phase 1: route sources into collections
	t, err := triage(b.compiler, sources)
	if err != nil {
		return nil, err
	}

	// Phase 2: cross-register modules, types and validators
	if err := resolve(&t.validators, &t.modules, &t.endpoints); err != nil {
		return nil, err
	}

	// Phase 3: load the lock
	lock, err := b.lockStore.Load()
	if err != nil {
		return nil, err
	}
	if lock == nil {
		lock = Lock{}
	}

	b.sources = t.sources
	b.validators = t.validators
	b.modules = t.modules
	b.endpoints = t.endpoints
	b.testing = t.testing
	b.lock = lock

	b.logger.Debug("resolved bundle",
		"validators", b.validators.Len(),
		"modules", b.modules.Len(),
		"endpoints", b.endpoints.Len(),
		"testing", len(b.testing),
		"locked", len(b.lock))
	return b, nil
}

// Validators returns the validators in discovery order.
func (b *Bundle) Validators() []*ValidatorScript {
	return b.validators.Items()
}

// Modules returns the modules in discovery order.
func (b *Bundle) Modules() []*ModuleScript {
	return b.modules.Items()
}

// Endpoints returns the endpoints in discovery order.
func (b *Bundle) Endpoints() []*EndpointScript {
	return b.endpoints.Items()
}

// TestingScripts returns the names of testing scripts. They are recognized
// but never compiled into a bundle.
func (b *Bundle) TestingScripts() []string {
	return append([]string(nil), b.testing...)
}

// Sources returns the discovered sources with their logical names.
func (b *Bundle) Sources() []Source {
	return append([]Source(nil), b.sources...)
}

// Config returns the project configuration.
func (b *Bundle) Config() Config {
	return b.config
}

// Lock returns a copy of the current lock, including entries recorded by
// successful builds that have not been written yet.
func (b *Bundle) Lock() Lock {
	return b.lock.Clone()
}

// Build compiles every script the stage includes. It fails fast: on error no
// artifacts are returned and the lock is left unchanged.
func (b *Bundle) Build(stage string, opts ...BuildOption) (*Artifacts, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	st, err := b.config.Stage(stage)
	if err != nil {
		return nil, err
	}

	out := &Artifacts{
		Stage:      stage,
		Validators: []ValidatorArtifact{},
		Endpoints:  []EndpointArtifact{},
	}
	pending := make(Lock)

	// Phase 1: optimized validators and lock check
	for _, v := range b.validators.Items() {
		if !st.Includes(v.Name()) {
			continue
		}
		va, err := b.buildValidator(v, cfg, pending)
		if err != nil {
			return nil, err
		}
		out.Validators = append(out.Validators, va)
	}

	// Phase 2: source-mapped validators
	out.CodeMap, out.Sources = b.codeMap(st)
	if cfg.unsimplified {
		for _, v := range b.validators.Items() {
			if !st.Includes(v.Name()) {
				continue
			}
			a, err := v.Compile(nil, false)
			if err != nil {
				return nil, err
			}
			mapped, err := a.SerializeWithMapping(out.CodeMap)
			if err != nil {
				return nil, &CompileError{Script: v.Name(), Path: v.Path(), Err: err}
			}
			out.Unsimplified = append(out.Unsimplified, MappedArtifact{Name: v.Name(), Bytecode: hexBytes(mapped)})
		}
	}

	// Phase 3: endpoints
	for _, e := range b.endpoints.Items() {
		if !st.Includes(e.Name()) {
			continue
		}
		a, err := e.Compile()
		if err != nil {
			return nil, err
		}
		out.Endpoints = append(out.Endpoints, EndpointArtifact{
			Name:         e.Name(),
			Bytecode:     hexBytes(a.Serialize()),
			Dependencies: e.Dependencies(),
		})
		b.logger.Debug("compiled endpoint", "name", e.Name(), "dependencies", e.Dependencies())
	}

	// Phase 4: commit new lock entries
	maps.Copy(b.lock, pending)

	b.logger.Info("built stage",
		"stage", stage,
		"validators", len(out.Validators),
		"endpoints", len(out.Endpoints))
	return out, nil
}

func (b *Bundle) buildValidator(v *ValidatorScript, cfg *buildConfig, pending Lock) (ValidatorArtifact, error) {
	a, err := v.Compile(nil, true)
	if err != nil {
		return ValidatorArtifact{}, err
	}
	if cfg.dumpIR[v.Name()] {
		ir, err := v.FinalIR(true)
		if err != nil {
			return ValidatorArtifact{}, err
		}
		b.logger.Debug("final IR", "name", v.Name(), "ir", ir)
	}

	digest, category, err := v.DeploymentHash(a)
	if err != nil {
		return ValidatorArtifact{}, err
	}
	hash := digest.Hex()
	if prev, ok := b.lock[v.Name()]; ok && prev != hash {
		return ValidatorArtifact{}, &LockMismatchError{Name: v.Name(), Category: category, Locked: prev, Got: hash}
	}
	pending[v.Name()] = hash
	b.logger.Info("compiled validator", "name", v.Name(), "kind", category, "hash", hash)

	kind, err := v.Type()
	if err != nil {
		return ValidatorArtifact{}, err
	}
	deps, err := v.DagDependencies()
	if err != nil {
		return ValidatorArtifact{}, err
	}
	nParams, err := v.NumParams()
	if err != nil {
		return ValidatorArtifact{}, err
	}

	va := ValidatorArtifact{
		Name:           v.Name(),
		Purpose:        v.Purpose(),
		Kind:           kind.String(),
		Bytecode:       hexBytes(a.Serialize()),
		Hash:           a.Hash().Hex(),
		DeploymentHash: hash,
		NumParams:      nParams,
		Dependencies:   deps,
	}

	if cfg.datumChecks {
		checks, err := b.datumChecks(v)
		if err != nil {
			return ValidatorArtifact{}, err
		}
		va.DatumChecks = checks
	}
	return va, nil
}

// datumChecks compiles the built-in datum check of v followed by the checks
// for its configured extra datum types. Validators without a built-in check
// get none, and their extra datum types are ignored.
func (b *Bundle) datumChecks(v *ValidatorScript) ([]string, error) {
	extra := b.config.ExtraDatumTypes[v.Name()]
	if v.Purpose() != compiler.PurposeSpending {
		b.warnIgnoredDatumTypes(v, extra)
		return nil, nil
	}
	a, ok, err := v.CompileDatumCheck()
	if err != nil {
		return nil, err
	}
	if !ok {
		b.warnIgnoredDatumTypes(v, extra)
		return nil, nil
	}
	checks := []string{hexBytes(a.Serialize())}
	for _, dt := range extra {
		a, err := b.compileExtraDatumCheck(dt)
		if err != nil {
			return nil, err
		}
		checks = append(checks, hexBytes(a.Serialize()))
	}
	return checks, nil
}

func (b *Bundle) warnIgnoredDatumTypes(v *ValidatorScript, extra []DatumType) {
	if len(extra) == 0 {
		return
	}
	b.logger.Warn("ignoring extra datum types of validator without a datum",
		"name", v.Name(), "purpose", v.Purpose(), "count", len(extra))
}

// extraDatumCheckPath anchors extra datum type files at the project root.
const extraDatumCheckPath = "datumCheck"

func (b *Bundle) compileExtraDatumCheck(dt DatumType) (compiler.Artifact, error) {
	src := fmt.Sprintf("testing datumCheck\nimport {%s} from %q\n\nfunc main(a: %s) -> %s {\n    a\n}\n",
		dt.TypeName, dt.File, dt.TypeName, dt.TypeName)

	modules := b.modules.Items()
	src, err := rewriteImports(extraDatumCheckPath, "datumCheck", src, modules)
	if err != nil {
		return nil, err
	}
	srcs := make([]string, len(modules))
	for i, m := range modules {
		srcs[i] = m.Src()
	}
	types, err := b.validators.ScriptTypes()
	if err != nil {
		return nil, err
	}

	p, err := b.compiler.Lower(src, srcs, types, compiler.LowerOptions{})
	if err != nil {
		return nil, &CompileError{Script: "datumCheck", Path: dt.File, Err: err}
	}
	a, err := p.IR(false).Lower(compiler.PurposeTesting, false)
	if err != nil {
		return nil, &CompileError{Script: "datumCheck", Path: dt.File, Err: err}
	}
	return a, nil
}

// codeMap assigns file indices to the sources included in the stage and to
// every module, in discovery order.
func (b *Bundle) codeMap(st Stage) (map[string]int, []SourceLines) {
	indices := make(map[string]int)
	var lines []SourceLines
	for _, s := range b.sources {
		if st.Includes(s.Name) || b.modules.Has(s.Name) {
			indices[s.Name] = len(lines)
			lines = append(lines, SourceLines{Name: s.Name, Lines: lineLengths(s.Text)})
		}
	}
	return indices, lines
}

// GenerateDag returns the sibling dependencies of every validator.
func (b *Bundle) GenerateDag() (Dag, error) {
	dag := make(Dag, b.validators.Len())
	for _, v := range b.validators.Items() {
		deps, err := v.DagDependencies()
		if err != nil {
			return nil, err
		}
		if deps == nil {
			deps = []string{}
		}
		dag[v.Name()] = deps
	}
	return dag, nil
}

// WriteLock saves the current lock through the lock store. Builds never
// save on their own.
func (b *Bundle) WriteLock() error {
	if err := b.lockStore.Save(b.lock.Clone()); err != nil {
		return err
	}
	b.logger.Info("wrote lock", "entries", len(b.lock))
	return nil
}
