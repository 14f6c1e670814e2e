package bundler

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
var (
	// ErrInvalidHeader indicates a source does not start with a purpose and a name.
	ErrInvalidHeader = errors.New("bundler: unable to parse header")

	// ErrDuplicateName indicates two scripts share a logical name.
	ErrDuplicateName = errors.New("bundler: duplicate script name")

	// ErrUnknownPurpose indicates a header declares a purpose the bundler does not route.
	ErrUnknownPurpose = errors.New("bundler: unhandled script purpose")

	// ErrReservedName indicates an endpoint uses a name taken by the generated bindings.
	ErrReservedName = errors.New("bundler: reserved endpoint name")

	// ErrModuleNotFound indicates an import path that matches no module.
	ErrModuleNotFound = errors.New("bundler: module not found")

	// ErrNotRegistered indicates a relation was read before the resolver assigned it.
	ErrNotRegistered = errors.New("bundler: not yet registered")

	// ErrAlreadyRegistered indicates a one-shot relation was assigned twice.
	ErrAlreadyRegistered = errors.New("bundler: already registered")

	// ErrCircularDependency indicates validators reference each other in a loop.
	ErrCircularDependency = errors.New("bundler: circular dependency detected")

	// ErrUnsupportedPurpose indicates a validator purpose with no hash derivation.
	ErrUnsupportedPurpose = errors.New("bundler: unsupported validator purpose")

	// ErrScriptNotFound indicates a reference to a script that is not in the build.
	ErrScriptNotFound = errors.New("bundler: script not found")

	// ErrLockMismatch indicates a compiled digest differs from the locked one.
	ErrLockMismatch = errors.New("bundler: hash changed")

	// ErrUnknownStage indicates a build stage missing from the configuration.
	ErrUnknownStage = errors.New("bundler: unknown stage")
)

// HeaderError indicates a source whose header could not be parsed.
type HeaderError struct {
	Path string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("bundler: %s: unable to parse header: %v", e.Path, e.Err)
}

func (e *HeaderError) Unwrap() []error {
	return []error{ErrInvalidHeader, e.Err}
}

// DuplicateNameError indicates a logical name seen in more than one file.
type DuplicateNameError struct {
	Path string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("bundler: %s: duplicate name '%s'", e.Path, e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// UnknownPurposeError indicates a header keyword outside the purpose set.
type UnknownPurposeError struct {
	Path    string
	Purpose string
}

func (e *UnknownPurposeError) Error() string {
	return fmt.Sprintf("bundler: %s: unhandled script purpose '%s'", e.Path, e.Purpose)
}

func (e *UnknownPurposeError) Unwrap() error {
	return ErrUnknownPurpose
}

// ModuleNotFoundError indicates an import in Script that resolves to no module.
type ModuleNotFoundError struct {
	Script string
	Path   string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("bundler: dependency %s of %s not found", e.Path, e.Script)
}

func (e *ModuleNotFoundError) Unwrap() error {
	return ErrModuleNotFound
}

// CycleError reports the compilation stack that closed a loop. The last
// element of Chain repeats an earlier one.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "bundler: circular dependency detected: " + strings.Join(e.Chain, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCircularDependency
}

// CompileError attaches script identity to a compiler failure.
type CompileError struct {
	Script string
	// Path is the file the failure was located in. It differs from the
	// script's own path when the compiler blames an imported module.
	Path string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bundler: compiling %s (%s): %v", e.Script, e.Path, e.Err)
	}
	return fmt.Sprintf("bundler: compiling %s: %v", e.Script, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// LockMismatchError indicates a validator whose digest no longer matches the
// lock. Category is validator, policy or staking-validator.
type LockMismatchError struct {
	Name     string
	Category string
	Locked   string
	Got      string
}

func (e *LockMismatchError) Error() string {
	return fmt.Sprintf("bundler: hash changed for %s %s (locked %s, got %s)", e.Category, e.Name, e.Locked, e.Got)
}

func (e *LockMismatchError) Unwrap() error {
	return ErrLockMismatch
}
