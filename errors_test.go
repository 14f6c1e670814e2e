package bundler

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidHeader", ErrInvalidHeader, "bundler: unable to parse header"},
		{"ErrDuplicateName", ErrDuplicateName, "bundler: duplicate script name"},
		{"ErrUnknownPurpose", ErrUnknownPurpose, "bundler: unhandled script purpose"},
		{"ErrReservedName", ErrReservedName, "bundler: reserved endpoint name"},
		{"ErrModuleNotFound", ErrModuleNotFound, "bundler: module not found"},
		{"ErrNotRegistered", ErrNotRegistered, "bundler: not yet registered"},
		{"ErrAlreadyRegistered", ErrAlreadyRegistered, "bundler: already registered"},
		{"ErrCircularDependency", ErrCircularDependency, "bundler: circular dependency detected"},
		{"ErrUnsupportedPurpose", ErrUnsupportedPurpose, "bundler: unsupported validator purpose"},
		{"ErrScriptNotFound", ErrScriptNotFound, "bundler: script not found"},
		{"ErrLockMismatch", ErrLockMismatch, "bundler: hash changed"},
		{"ErrUnknownStage", ErrUnknownStage, "bundler: unknown stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("Expected error message %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestHeaderError(t *testing.T) {
	inner := errors.New("expected identifier")
	err := &HeaderError{Path: "contracts/bad.hl", Err: inner}

	expected := "bundler: contracts/bad.hl: unable to parse header: expected identifier"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrInvalidHeader) {
		t.Error("errors.Is should find ErrInvalidHeader")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the inner error")
	}
}

func TestDuplicateNameError(t *testing.T) {
	err := &DuplicateNameError{Path: "b/vault.hl", Name: "vault"}

	expected := "bundler: b/vault.hl: duplicate name 'vault'"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrDuplicateName) {
		t.Error("errors.Is should find ErrDuplicateName")
	}
}

func TestUnknownPurposeError(t *testing.T) {
	err := &UnknownPurposeError{Path: "x.hl", Purpose: "oracle"}

	expected := "bundler: x.hl: unhandled script purpose 'oracle'"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrUnknownPurpose) {
		t.Error("errors.Is should find ErrUnknownPurpose")
	}
}

func TestModuleNotFoundError(t *testing.T) {
	err := &ModuleNotFoundError{Script: "vault", Path: "contracts/missing"}

	expected := "bundler: dependency contracts/missing of vault not found"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrModuleNotFound) {
		t.Error("errors.Is should find ErrModuleNotFound")
	}
}

func TestCycleError(t *testing.T) {
	err := &CycleError{Chain: []string{"a", "b", "a"}}

	expected := "bundler: circular dependency detected: a -> b -> a"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrCircularDependency) {
		t.Error("errors.Is should find ErrCircularDependency")
	}
}

func TestCompileError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		inner := errors.New("type error")
		err := &CompileError{Script: "vault", Path: "contracts/vault.hl", Err: inner}

		expected := "bundler: compiling vault (contracts/vault.hl): type error"
		if err.Error() != expected {
			t.Errorf("Expected error message %q, got %q", expected, err.Error())
		}
		if err.Unwrap() != inner {
			t.Error("Unwrap should return the inner error")
		}
	})

	t.Run("without path", func(t *testing.T) {
		err := &CompileError{Script: "vault", Err: errors.New("boom")}

		expected := "bundler: compiling vault: boom"
		if err.Error() != expected {
			t.Errorf("Expected error message %q, got %q", expected, err.Error())
		}
	})

	t.Run("error chain with errors.As", func(t *testing.T) {
		err := &CompileError{Script: "vault", Err: &CycleError{Chain: []string{"vault", "vault"}}}

		var cycle *CycleError
		if !errors.As(err, &cycle) {
			t.Error("errors.As should find the CycleError in chain")
		}
	})
}

func TestLockMismatchError(t *testing.T) {
	err := &LockMismatchError{Name: "oracle", Category: "policy", Locked: "aa", Got: "bb"}

	expected := "bundler: hash changed for policy oracle (locked aa, got bb)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrLockMismatch) {
		t.Error("errors.Is should find ErrLockMismatch")
	}
}
