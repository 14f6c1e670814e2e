package reference

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"

	"github.com/branched-services/go-bundler/compiler"
)

// program is an immutable lowered script. Cached programs are shared between
// callers.
type program struct {
	name       string
	purpose    compiler.Purpose
	nParams    int
	arity      int
	datumSplit bool
	datumType  string
	text       string
}

var _ compiler.Program = (*program)(nil)

func (p *program) Name() string              { return p.name }
func (p *program) Purpose() compiler.Purpose { return p.purpose }
func (p *program) NumParams() int            { return p.nParams }
func (p *program) ContextIndex() int         { return p.arity - 1 }

func (p *program) IR(simplify bool) compiler.IR {
	if simplify {
		return &ir{text: simplifyText(p.text)}
	}
	return &ir{text: p.text}
}

func (p *program) DatumCheck() (compiler.Artifact, bool, error) {
	if !p.datumSplit {
		return nil, false, nil
	}
	body := fmt.Sprintf("func main(a: %s) -> %s { a }", p.datumType, p.datumType)
	a, err := newArtifact(compiler.PurposeTesting, 0, body)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

var (
	lineCommentRE  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)
	spaceRE        = regexp.MustCompile(`\s+`)
)

// simplifyText drops comments and collapses whitespace.
func simplifyText(s string) string {
	s = blockCommentRE.ReplaceAllString(s, "")
	s = lineCommentRE.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

type ir struct {
	text string
}

var _ compiler.IR = (*ir)(nil)

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// markerSpans returns the byte ranges where marker occurs as a whole token.
func markerSpans(text, marker string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], marker)
		if j < 0 {
			break
		}
		start, end := i+j, i+j+len(marker)
		if (start == 0 || !isIdentByte(text[start-1])) && (end == len(text) || !isIdentByte(text[end])) {
			spans = append(spans, [2]int{start, end})
		}
		i = end
	}
	return spans
}

func (r *ir) Includes(marker string) bool {
	return len(markerSpans(r.text, marker)) > 0
}

func (r *ir) Substitute(marker, expr string) compiler.IR {
	spans := markerSpans(r.text, marker)
	if len(spans) == 0 {
		return r
	}
	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(r.text[last:s[0]])
		b.WriteString(expr)
		last = s[1]
	}
	b.WriteString(r.text[last:])
	return &ir{text: b.String()}
}

func (r *ir) Lower(purpose compiler.Purpose, simplify bool) (compiler.Artifact, error) {
	return r.lower(purpose, 0, simplify)
}

func (r *ir) LowerParametric(purpose compiler.Purpose, nParams int, simplify bool) (compiler.Artifact, error) {
	if nParams <= 0 {
		return nil, fmt.Errorf("reference: parametric lowering needs at least one parameter, got %d", nParams)
	}
	return r.lower(purpose, nParams, simplify)
}

func (r *ir) lower(purpose compiler.Purpose, nParams int, simplify bool) (compiler.Artifact, error) {
	if i := strings.Index(r.text, compiler.MarkerPrefix); i >= 0 {
		rest := r.text[i+len(compiler.MarkerPrefix):]
		n := 0
		for n < len(rest) && isIdentByte(rest[n]) {
			n++
		}
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedReference, rest[:n])
	}
	text := r.text
	if simplify {
		text = simplifyText(text)
	}
	return newArtifact(purpose, nParams, text)
}

func (r *ir) String() string {
	return r.text
}

// scriptVersionTag prefixes the serialized program when hashing, matching
// the ledger's script hash derivation.
const scriptVersionTag = 0x02

type encodedProgram struct {
	Version uint64
	Purpose string
	Params  uint64
	Body    string
}

type fileIndex struct {
	Name  string
	Index uint64
}

type mappedProgram struct {
	Program []byte
	Files   []fileIndex
}

type artifact struct {
	purpose compiler.Purpose
	nParams int
	bytes   []byte
	hash    compiler.Digest
}

var _ compiler.Artifact = (*artifact)(nil)

func newArtifact(purpose compiler.Purpose, nParams int, body string) (*artifact, error) {
	enc, err := rlp.EncodeToBytes(&encodedProgram{
		Version: scriptVersionTag,
		Purpose: string(purpose),
		Params:  uint64(nParams),
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("reference: encoding program: %w", err)
	}

	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte{scriptVersionTag})
	h.Write(enc)

	return &artifact{
		purpose: purpose,
		nParams: nParams,
		bytes:   enc,
		hash:    h.Sum(nil),
	}, nil
}

func (a *artifact) Purpose() compiler.Purpose { return a.purpose }
func (a *artifact) NumParams() int            { return a.nParams }
func (a *artifact) Serialize() []byte         { return slices.Clone(a.bytes) }
func (a *artifact) Hash() compiler.Digest     { return slices.Clone(a.hash) }

// The ledger derives validator, minting policy and staking validator hashes
// identically; they differ only in how the hash is used.
func (a *artifact) ValidatorHash() compiler.Digest        { return a.Hash() }
func (a *artifact) MintingPolicyHash() compiler.Digest    { return a.Hash() }
func (a *artifact) StakingValidatorHash() compiler.Digest { return a.Hash() }

func (a *artifact) SerializeWithMapping(fileIndices map[string]int) ([]byte, error) {
	files := make([]fileIndex, 0, len(fileIndices))
	for name, i := range fileIndices {
		files = append(files, fileIndex{Name: name, Index: uint64(i)})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Index != files[j].Index {
			return files[i].Index < files[j].Index
		}
		return files[i].Name < files[j].Name
	})
	return rlp.EncodeToBytes(&mappedProgram{Program: a.bytes, Files: files})
}
