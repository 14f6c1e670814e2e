// Package reference implements compiler.Compiler for a small textual subset
// of the contract language.
//
// The backend understands just enough to drive the bundler end to end:
// headers, imports of modules by logical name, Scripts::<name> references to
// sibling validators, positional param declarations and the arity of main.
// Artifacts are RLP-encoded program text and digests are blake2b-224, so two
// builds of the same input always produce the same bytes.
package reference

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/branched-services/go-bundler/compiler"
)

// DefaultCacheSize is the number of lowered programs kept by default.
const DefaultCacheSize = 256

// ErrUnresolvedReference is returned when an IR is lowered while a sibling
// marker is still present.
var ErrUnresolvedReference = errors.New("reference: unresolved script reference")

// Compiler is the reference backend. It is safe for sequential use; the
// program cache is internally synchronized.
type Compiler struct {
	cacheSize int
	cache     *lru.Cache[common.Hash, *program]
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCacheSize bounds the program cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *Compiler) {
		c.cacheSize = n
	}
}

// New creates a reference compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		c.cache, _ = lru.New[common.Hash, *program](c.cacheSize)
	}
	return c
}

var _ compiler.Compiler = (*Compiler)(nil)

// Lower implements compiler.Compiler.
func (c *Compiler) Lower(src string, modules []string, types compiler.ScriptTypes, opts compiler.LowerOptions) (compiler.Program, error) {
	key, err := cacheKey(src, modules, types, opts)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if p, ok := c.cache.Get(key); ok {
			return p, nil
		}
	}

	p, err := parse(src, modules, types, opts)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Add(key, p)
	}
	return p, nil
}

// CachedPrograms returns the number of programs currently cached.
func (c *Compiler) CachedPrograms() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

type keyType struct {
	Name string
	Kind uint64
}

type keyInput struct {
	Src         string
	Modules     []string
	Types       []keyType
	AllowParams bool
}

// cacheKey hashes every input that can change the lowered program.
func cacheKey(src string, modules []string, types compiler.ScriptTypes, opts compiler.LowerOptions) (common.Hash, error) {
	in := keyInput{
		Src:         src,
		Modules:     modules,
		Types:       make([]keyType, 0, len(types)),
		AllowParams: opts.AllowParams,
	}
	for name, kind := range types {
		in.Types = append(in.Types, keyType{Name: name, Kind: uint64(kind)})
	}
	sort.Slice(in.Types, func(i, j int) bool { return in.Types[i].Name < in.Types[j].Name })

	enc, err := rlp.EncodeToBytes(&in)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}
