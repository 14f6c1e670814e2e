package compiler

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Purpose is the script kind declared by the first header token.
type Purpose string

const (
	PurposeSpending Purpose = "spending"
	PurposeMinting  Purpose = "minting"
	PurposeStaking  Purpose = "staking"
	PurposeModule   Purpose = "module"
	PurposeEndpoint Purpose = "endpoint"
	PurposeTesting  Purpose = "testing"
)

// purposeAliases holds keywords accepted in place of a canonical purpose.
var purposeAliases = map[string]Purpose{
	"linking": PurposeEndpoint,
}

// ParsePurpose maps a header keyword to a Purpose.
func ParsePurpose(s string) (Purpose, bool) {
	switch p := Purpose(s); p {
	case PurposeSpending, PurposeMinting, PurposeStaking, PurposeModule, PurposeEndpoint, PurposeTesting:
		return p, true
	}
	p, ok := purposeAliases[s]
	return p, ok
}

// IsValidator reports whether scripts of this purpose compile to on-chain
// validators.
func (p Purpose) IsValidator() bool {
	return p == PurposeSpending || p == PurposeMinting || p == PurposeStaking
}

// ErrMalformedHeader is returned when a source does not start with a purpose
// keyword followed by an identifier.
var ErrMalformedHeader = errors.New("compiler: unable to parse header")

// Header is the two-token declaration that starts every script.
type Header struct {
	// Keyword is the purpose token exactly as written.
	Keyword string
	Name    string
}

// ParseHeader extracts the header of src. Comments and whitespace before and
// between the two tokens are skipped. The keyword is not validated; use
// ParsePurpose for that.
func ParseHeader(src string) (Header, error) {
	h, _, err := SplitHeader(src)
	return h, err
}

// SplitHeader is ParseHeader that also returns the text following the header.
func SplitHeader(src string) (Header, string, error) {
	var words [2]string
	rest := src
	for i := range words {
		var ok bool
		rest, ok = skipSpaceAndComments(rest)
		if !ok {
			return Header{}, "", ErrMalformedHeader
		}
		n := identLen(rest)
		if n == 0 {
			return Header{}, "", fmt.Errorf("%w: expected identifier at %q", ErrMalformedHeader, excerpt(rest))
		}
		words[i] = rest[:n]
		rest = rest[n:]
	}
	return Header{Keyword: words[0], Name: words[1]}, rest, nil
}

// skipSpaceAndComments drops leading whitespace and comments. ok is false for
// an unterminated block comment.
func skipSpaceAndComments(s string) (string, bool) {
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		switch {
		case strings.HasPrefix(s, "//"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
			} else {
				s = ""
			}
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return "", false
			}
			s = s[i+4:]
		default:
			return s, true
		}
	}
}

// identLen returns the length of the identifier at the start of s.
func identLen(s string) int {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return i
	}
	return len(s)
}

func excerpt(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 20 {
		s = s[:20]
	}
	return s
}
