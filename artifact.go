package bundler

import (
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"

	"github.com/branched-services/go-bundler/compiler"
)

// Artifacts is the output of one stage build, ready for a code writer.
type Artifacts struct {
	Stage      string              `json:"stage" yaml:"stage"`
	Validators []ValidatorArtifact `json:"validators" yaml:"validators"`

	// Unsimplified holds the source-mapped build of every validator. It is
	// empty when the second pass is disabled.
	Unsimplified []MappedArtifact   `json:"unsimplified,omitempty" yaml:"unsimplified,omitempty"`
	Endpoints    []EndpointArtifact `json:"endpoints" yaml:"endpoints"`

	// Sources describes, in file index order, every script that CodeMap
	// refers to.
	Sources []SourceLines  `json:"sources" yaml:"sources"`
	CodeMap map[string]int `json:"codeMap" yaml:"codeMap"`
}

// ValidatorArtifact is an optimized validator.
type ValidatorArtifact struct {
	Name    string           `json:"name" yaml:"name"`
	Purpose compiler.Purpose `json:"purpose" yaml:"purpose"`
	Kind    string           `json:"kind" yaml:"kind"`

	// Bytecode is the hex encoded serialized program.
	Bytecode string `json:"bytecode" yaml:"bytecode"`

	// Hash is the program hash substituted into referencing validators.
	Hash string `json:"hash" yaml:"hash"`

	// DeploymentHash is the purpose-specific digest pinned by the lock.
	DeploymentHash string   `json:"deploymentHash" yaml:"deploymentHash"`
	NumParams      int      `json:"numParams" yaml:"numParams"`
	Dependencies   []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	DatumChecks    []string `json:"datumChecks,omitempty" yaml:"datumChecks,omitempty"`
}

// MappedArtifact is an unsimplified validator serialized with code-map
// file indices.
type MappedArtifact struct {
	Name     string `json:"name" yaml:"name"`
	Bytecode string `json:"bytecode" yaml:"bytecode"`
}

// EndpointArtifact is a compiled endpoint.
type EndpointArtifact struct {
	Name         string   `json:"name" yaml:"name"`
	Bytecode     string   `json:"bytecode" yaml:"bytecode"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// SourceLines records the length of every line of a source. Generated
// bindings rebuild a blank source of the same shape for error positions.
type SourceLines struct {
	Name  string `json:"name" yaml:"name"`
	Lines []int  `json:"lines" yaml:"lines"`
}

// Validator returns the optimized artifact of the named validator.
func (a *Artifacts) Validator(name string) (ValidatorArtifact, bool) {
	for _, v := range a.Validators {
		if v.Name == name {
			return v, true
		}
	}
	return ValidatorArtifact{}, false
}

// Endpoint returns the named endpoint artifact.
func (a *Artifacts) Endpoint(name string) (EndpointArtifact, bool) {
	for _, e := range a.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return EndpointArtifact{}, false
}

func lineLengths(text string) []int {
	lines := strings.Split(text, "\n")
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = utf8.RuneCountInString(l)
	}
	return out
}

func hexBytes(b []byte) string {
	return common.Bytes2Hex(b)
}
