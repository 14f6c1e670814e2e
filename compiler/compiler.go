// Package compiler defines the contract between the bundler and a
// contract-language compiler.
//
// The bundler never parses or type-checks contract code itself. It lowers a
// script to an intermediate form, scans that form for sibling references,
// substitutes them and lowers again to a deployable artifact. Everything a
// backend must provide for that round trip is declared here; a deterministic
// textual backend lives in the reference subpackage.
package compiler

import (
	"github.com/ethereum/go-ethereum/common"
)

// Compiler lowers contract sources to an intermediate form.
type Compiler interface {
	// Lower parses src together with the sources of every module in the build
	// and the type signature of every validator, returning a program whose
	// sibling references are still symbolic.
	Lower(src string, modules []string, types ScriptTypes, opts LowerOptions) (Program, error)
}

// LowerOptions configures a single Lower call.
type LowerOptions struct {
	// AllowParams permits positional parameter declarations.
	AllowParams bool
}

// Program is a parsed and type-checked script.
type Program interface {
	Name() string
	Purpose() Purpose

	// NumParams is the number of positional parameters the program declares.
	NumParams() int

	// ContextIndex is the argument position of the script context in the
	// entry point. Runtime lookups of the current script hash read it.
	ContextIndex() int

	// IR returns the intermediate form. The unsimplified form is canonical and
	// suitable for scanning for reference markers.
	IR(simplify bool) IR

	// DatumCheck compiles a program that accepts a datum and asserts it
	// decodes and re-encodes unchanged. ok is false when the program has no
	// datum/redeemer split.
	DatumCheck() (a Artifact, ok bool, err error)
}

// IR is an intermediate representation. Implementations are immutable;
// Substitute returns a new value.
type IR interface {
	Includes(marker string) bool
	Substitute(marker, expr string) IR
	Lower(purpose Purpose, simplify bool) (Artifact, error)
	LowerParametric(purpose Purpose, nParams int, simplify bool) (Artifact, error)
	String() string
}

// Artifact is compiled, deployable bytecode.
type Artifact interface {
	Purpose() Purpose
	NumParams() int
	Serialize() []byte

	// SerializeWithMapping embeds file indices so that runtime errors can be
	// correlated back to source positions.
	SerializeWithMapping(fileIndices map[string]int) ([]byte, error)

	Hash() Digest
	ValidatorHash() Digest
	MintingPolicyHash() Digest
	StakingValidatorHash() Digest
}

// Digest is the content hash of a compiled artifact.
type Digest []byte

// Hex returns the lowercase hex encoding without a 0x prefix.
func (d Digest) Hex() string {
	return common.Bytes2Hex(d)
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Hex()
}

// ScriptKind is the externally visible type of a validator: which hash its
// address is derived from.
type ScriptKind int

const (
	KindValidatorHash ScriptKind = iota + 1
	KindMintingPolicyHash
	KindStakingValidatorHash
)

func (k ScriptKind) String() string {
	switch k {
	case KindValidatorHash:
		return "ValidatorHash"
	case KindMintingPolicyHash:
		return "MintingPolicyHash"
	case KindStakingValidatorHash:
		return "StakingValidatorHash"
	default:
		return "Unknown"
	}
}

// ScriptTypes maps validator names to their kinds.
type ScriptTypes map[string]ScriptKind
