package bundler

import "fmt"

// slot is a one-shot cell: unset until the resolver assigns it, immutable
// afterwards.
type slot[T any] struct {
	what  string
	set   bool
	value T
}

func newSlot[T any](what string) slot[T] {
	return slot[T]{what: what}
}

// Set assigns the value. A second call fails with ErrAlreadyRegistered.
func (s *slot[T]) Set(v T) error {
	if s.set {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, s.what)
	}
	s.value = v
	s.set = true
	return nil
}

// Get returns the value or ErrNotRegistered if Set has not run.
func (s *slot[T]) Get() (T, error) {
	if !s.set {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotRegistered, s.what)
	}
	return s.value, nil
}

// IsSet reports whether the slot has been assigned.
func (s *slot[T]) IsSet() bool {
	return s.set
}
