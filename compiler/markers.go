package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// MarkerPrefix starts every symbolic sibling reference in an IR.
const MarkerPrefix = "__helios__scripts__"

// ScriptMarker returns the symbolic reference to the script called name.
func ScriptMarker(name string) string {
	return MarkerPrefix + name
}

// ErrUnsupportedPurpose is returned when an operation is not defined for a
// script purpose.
var ErrUnsupportedPurpose = errors.New("compiler: unsupported script purpose")

// CurrentHashExpr returns the expression that looks up the hash of the
// executing script at run time. The script context is the positional
// parameter at paramIndex.
func CurrentHashExpr(purpose Purpose, paramIndex int) (string, error) {
	var getter string
	switch purpose {
	case PurposeSpending:
		getter = "get_current_validator_hash"
	case PurposeMinting:
		getter = "get_current_minting_policy_hash"
	case PurposeStaking:
		getter = "get_current_staking_validator_hash"
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPurpose, purpose)
	}
	return fmt.Sprintf("__helios__scriptcontext__%s(__PARAM_%d)()", getter, paramIndex), nil
}

// HashLiteral returns the IR literal for a compile-time constant hash.
func HashLiteral(d Digest) string {
	return "#" + d.Hex()
}

// CompileMacro returns the off-chain macro that compiles the named validator
// when an endpoint runs.
func CompileMacro(name string) string {
	return fmt.Sprintf("__core__macro__compile(%q, ())", name)
}

// SourceError is a compiler diagnostic attached to one of the sources passed
// to Lower. Index 0 is the main source; index i is modules[i-1].
type SourceError struct {
	Index int
	Line  int
	Msg   string
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString("compiler: ")
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Msg)
	return b.String()
}
