package bundler

import (
	"fmt"

	"github.com/branched-services/go-bundler/compiler"
)

// scriptItem is the element constraint of Collection.
type scriptItem interface {
	Name() string
	RegisterModules(modules []*ModuleScript) error
}

// Collection is an ordered, name-unique set of scripts of one kind. The zero
// value is empty and ready to use.
type Collection[T scriptItem] struct {
	items []T
	index map[string]int
}

// Add appends item. A second item with the same name is rejected.
func (c *Collection[T]) Add(item T) error {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if _, dup := c.index[item.Name()]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateName, item.Name())
	}
	c.index[item.Name()] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Items returns a snapshot of the collection in insertion order.
func (c *Collection[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Has reports whether an item called name exists.
func (c *Collection[T]) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Get returns the item called name.
func (c *Collection[T]) Get(name string) (T, bool) {
	i, ok := c.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// ForEach iterates over the items in order. Return false to stop iteration.
func (c *Collection[T]) ForEach(fn func(int, T) bool) {
	for i, item := range c.items {
		if !fn(i, item) {
			return
		}
	}
}

// RegisterModules registers modules with every item, stopping at the first
// failure.
func (c *Collection[T]) RegisterModules(modules []*ModuleScript) error {
	for _, item := range c.items {
		if err := item.RegisterModules(modules); err != nil {
			return err
		}
	}
	return nil
}

// MapCollection applies fn to every item and keys the results by name.
func MapCollection[T scriptItem, R any](c *Collection[T], fn func(T) (R, error)) (map[string]R, error) {
	out := make(map[string]R, len(c.items))
	for _, item := range c.items {
		r, err := fn(item)
		if err != nil {
			return nil, err
		}
		out[item.Name()] = r
	}
	return out, nil
}

// ValidatorCollection holds the validators of a build.
type ValidatorCollection struct {
	Collection[*ValidatorScript]
}

// ScriptTypes returns the type of every validator.
func (c *ValidatorCollection) ScriptTypes() (compiler.ScriptTypes, error) {
	types, err := MapCollection(&c.Collection, (*ValidatorScript).Type)
	if err != nil {
		return nil, err
	}
	return compiler.ScriptTypes(types), nil
}

// RegisterScriptTypes registers types with every validator.
func (c *ValidatorCollection) RegisterScriptTypes(types compiler.ScriptTypes) error {
	for _, v := range c.items {
		if err := v.RegisterScriptTypes(types); err != nil {
			return err
		}
	}
	return nil
}

// RegisterValidators gives every validator the full validator set.
func (c *ValidatorCollection) RegisterValidators() error {
	all := c.Items()
	for _, v := range c.items {
		if err := v.RegisterValidators(all); err != nil {
			return err
		}
	}
	return nil
}

// EndpointCollection holds the endpoints of a build.
type EndpointCollection struct {
	Collection[*EndpointScript]
}

// RegisterScriptTypes registers validator types with every endpoint.
func (c *EndpointCollection) RegisterScriptTypes(types compiler.ScriptTypes) error {
	for _, e := range c.items {
		if err := e.RegisterScriptTypes(types); err != nil {
			return err
		}
	}
	return nil
}

// RegisterValidators gives every endpoint the validator set.
func (c *EndpointCollection) RegisterValidators(validators []*ValidatorScript) error {
	for _, e := range c.items {
		if err := e.RegisterValidators(validators); err != nil {
			return err
		}
	}
	return nil
}

// ModuleCollection holds the modules of a build.
type ModuleCollection struct {
	Collection[*ModuleScript]
}

// resolve cross-registers the collections. Imports are rewritten before
// anything is lowered, and every validator sees the full type map before
// any of them compiles.
func resolve(validators *ValidatorCollection, modules *ModuleCollection, endpoints *EndpointCollection) error {
	mods := modules.Items()

	// Pass 1: modules, including to modules themselves
	if err := validators.RegisterModules(mods); err != nil {
		return err
	}
	if err := endpoints.RegisterModules(mods); err != nil {
		return err
	}
	if err := modules.RegisterModules(mods); err != nil {
		return err
	}

	// Pass 2: validator types and the validator set
	types, err := validators.ScriptTypes()
	if err != nil {
		return err
	}
	if err := validators.RegisterScriptTypes(types); err != nil {
		return err
	}
	if err := endpoints.RegisterScriptTypes(types); err != nil {
		return err
	}
	if err := validators.RegisterValidators(); err != nil {
		return err
	}
	return endpoints.RegisterValidators(validators.Items())
}
