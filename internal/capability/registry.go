package capability

import (
	"sort"
	"sync"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// Built-in capability names.
const (
	PreprocessorStandard = "standard"
	PreprocessorNone     = "none"
	AdapterStatic        = "static"
)

// Registry maps capability names to implementations. It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	preprocessors map[string]Preprocessor
	adapters      map[string]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		preprocessors: map[string]Preprocessor{},
		adapters:      map[string]Adapter{},
	}
}

// DefaultRegistry returns a fresh registry holding the built-in capabilities.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterPreprocessor(StandardPreprocessor{})
	r.RegisterPreprocessor(NoopPreprocessor{})
	r.RegisterAdapter(StaticAdapter{})
	return r
}

// RegisterPreprocessor registers p under p.Name(). The first registration wins.
func (r *Registry) RegisterPreprocessor(p Preprocessor) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.preprocessors[p.Name()]; !ok {
		r.preprocessors[p.Name()] = p
	}
}

// RegisterAdapter registers a under a.Name(). The first registration wins.
func (r *Registry) RegisterAdapter(a Adapter) {
	if a == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.Name()]; !ok {
		r.adapters[a.Name()] = a
	}
}

// Preprocessor looks up a preprocessor capability.
func (r *Registry) Preprocessor(name string) (Preprocessor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.preprocessors[name]
	if !ok {
		return nil, ferrors.UnknownCapability("preprocessor", name).
			WithContext("available", sortedKeys(r.preprocessors)).
			Build()
	}
	return p, nil
}

// Adapter looks up an output-adapter capability.
func (r *Registry) Adapter(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return nil, ferrors.UnknownCapability("adapter", name).
			WithContext("available", sortedKeys(r.adapters)).
			Build()
	}
	return a, nil
}

// Names returns the sorted preprocessor and adapter names.
func (r *Registry) Names() (preprocessors, adapters []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.preprocessors), sortedKeys(r.adapters)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
