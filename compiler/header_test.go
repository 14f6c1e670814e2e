package compiler

import (
	"errors"
	"testing"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		keyword string
		script  string
	}{
		{"plain header", "spending vault\n\nfunc main() -> Bool { true }", "spending", "vault"},
		{"leading line comment", "// owned by ops\nminting token", "minting", "token"},
		{"leading block comment", "/* header */ module utils", "module", "utils"},
		{"comment between tokens", "endpoint /* off-chain */ mint_nft", "endpoint", "mint_nft"},
		{"identifier with digits", "staking pool2", "staking", "pool2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.src)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if h.Keyword != tt.keyword {
				t.Errorf("Expected keyword %q, got %q", tt.keyword, h.Keyword)
			}
			if h.Name != tt.script {
				t.Errorf("Expected name %q, got %q", tt.script, h.Name)
			}
		})
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty source", ""},
		{"single token", "spending"},
		{"name starts with digit", "spending 1vault"},
		{"unterminated block comment", "/* spending vault"},
		{"punctuation instead of name", "module {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.src)
			if !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("Expected ErrMalformedHeader, got %v", err)
			}
		})
	}
}

func TestSplitHeaderReturnsBody(t *testing.T) {
	_, body, err := SplitHeader("module utils\nfunc id(a: Int) -> Int { a }")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if body != "\nfunc id(a: Int) -> Int { a }" {
		t.Errorf("Unexpected body %q", body)
	}
}

func TestParsePurpose(t *testing.T) {
	t.Run("canonical keywords", func(t *testing.T) {
		for _, kw := range []string{"spending", "minting", "staking", "module", "endpoint", "testing"} {
			p, ok := ParsePurpose(kw)
			if !ok || string(p) != kw {
				t.Errorf("Expected %q to parse as itself, got %q (ok=%v)", kw, p, ok)
			}
		}
	})

	t.Run("linking is an alias of endpoint", func(t *testing.T) {
		p, ok := ParsePurpose("linking")
		if !ok || p != PurposeEndpoint {
			t.Errorf("Expected PurposeEndpoint, got %q (ok=%v)", p, ok)
		}
	})

	t.Run("unknown keyword", func(t *testing.T) {
		if _, ok := ParsePurpose("oracle"); ok {
			t.Error("Expected oracle to be rejected")
		}
	})

	t.Run("validator purposes", func(t *testing.T) {
		if !PurposeStaking.IsValidator() || PurposeModule.IsValidator() || PurposeEndpoint.IsValidator() {
			t.Error("IsValidator classification is wrong")
		}
	})
}

func TestCurrentHashExpr(t *testing.T) {
	t.Run("spending", func(t *testing.T) {
		expr, err := CurrentHashExpr(PurposeSpending, 2)
		if err != nil {
			t.Fatal(err)
		}
		want := "__helios__scriptcontext__get_current_validator_hash(__PARAM_2)()"
		if expr != want {
			t.Errorf("Expected %q, got %q", want, expr)
		}
	})

	t.Run("minting", func(t *testing.T) {
		expr, _ := CurrentHashExpr(PurposeMinting, 0)
		want := "__helios__scriptcontext__get_current_minting_policy_hash(__PARAM_0)()"
		if expr != want {
			t.Errorf("Expected %q, got %q", want, expr)
		}
	})

	t.Run("module has no current hash", func(t *testing.T) {
		_, err := CurrentHashExpr(PurposeModule, 0)
		if !errors.Is(err, ErrUnsupportedPurpose) {
			t.Errorf("Expected ErrUnsupportedPurpose, got %v", err)
		}
	})
}

func TestDigestHex(t *testing.T) {
	d := Digest{0x00, 0xab, 0xff}
	if d.Hex() != "00abff" {
		t.Errorf("Expected 00abff, got %s", d.Hex())
	}
}

func TestSourceError(t *testing.T) {
	err := &SourceError{Index: 1, Line: 4, Msg: "unknown script oracle"}
	if err.Error() != "compiler: line 4: unknown script oracle" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	err = &SourceError{Msg: "missing main function"}
	if err.Error() != "compiler: missing main function" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestCompileMacro(t *testing.T) {
	if got := CompileMacro("vault"); got != `__core__macro__compile("vault", ())` {
		t.Errorf("Unexpected macro %q", got)
	}
}
