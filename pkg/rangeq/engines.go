package rangeq

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
	"github.com/Sumatoshi-tech/rangeq/pkg/refset"
)

// ErrUnknownEngine is returned for engine names missing from the registry.
var ErrUnknownEngine = errors.New("unknown engine")

// Engine names.
const (
	EngineRBTree = "rbtree"
	EngineBTree  = "btree"
	EngineLLRB   = "llrb"
	EngineGods   = "gods"
)

// DefaultEngine is the red-black tree engine.
const DefaultEngine = EngineRBTree

// Factory builds an empty Set. capacity is a sizing hint.
type Factory func(capacity int) Set

var engines = map[string]Factory{
	EngineRBTree: func(capacity int) Set { return NewTreeSet(rbtree.WithCapacity(capacity)) },
	EngineBTree:  func(int) Set { return refset.NewBTree() },
	EngineLLRB:   func(int) Set { return refset.NewLLRB() },
	EngineGods:   func(int) Set { return refset.NewGods() },
}

// Engines returns the registered engine names in sorted order.
func Engines() []string {
	return slices.Sorted(maps.Keys(engines))
}

// HasEngine reports whether name is registered.
func HasEngine(name string) bool {
	_, ok := engines[name]

	return ok
}

// NewSet builds an empty Set of the named engine.
func NewSet(name string, capacity int) (Set, error) {
	factory, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownEngine, name, Engines())
	}

	return factory(capacity), nil
}
