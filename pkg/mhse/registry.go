package mhse

import (
	"fmt"
	"sort"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
)

// Factory constructs an engine over g.
type Factory func(g graph.Graph, params Params, opts ...Option) (Algorithm, error)

// Registry manages available engines.
type Registry struct {
	factories map[AlgorithmName]Factory
}

// NewRegistry creates a registry holding every built-in engine.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[AlgorithmName]Factory)}
	r.Register(MHSE, func(g graph.Graph, p Params, opts ...Option) (Algorithm, error) {
		e, err := NewSignatureEngine(g, p, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	r.Register(SEMHSE, func(g graph.Graph, p Params, opts ...Option) (Algorithm, error) {
		e, err := NewCollisionEngine(g, p, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	r.Register(BMinHash, func(g graph.Graph, p Params, opts ...Option) (Algorithm, error) {
		e, err := NewBooleanEngine(g, p, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
	return r
}

// Register adds or replaces an engine.
func (r *Registry) Register(name AlgorithmName, f Factory) {
	r.factories[name] = f
}

// Get retrieves an engine factory by name.
func (r *Registry) Get(name AlgorithmName) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []AlgorithmName {
	names := make([]AlgorithmName, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// New constructs the named engine.
func (r *Registry) New(name AlgorithmName, g graph.Graph, params Params, opts ...Option) (Algorithm, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return f(g, params, opts...)
}

var defaultRegistry = NewRegistry()

// New constructs the named engine from the default registry.
func New(name AlgorithmName, g graph.Graph, params Params, opts ...Option) (Algorithm, error) {
	return defaultRegistry.New(name, g, params, opts...)
}
