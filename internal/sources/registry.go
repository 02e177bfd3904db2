package sources

import (
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/sources/codechef"
	"github.com/MrSnakeDoc/contesthub/internal/sources/codeforces"
	"github.com/MrSnakeDoc/contesthub/internal/sources/leetcode"
)

// Adapter maps one source's raw payload to normalized contests.
// Implementations are pure: no I/O, and a payload they do not recognise
// yields no contests rather than an error.
type Adapter interface {
	Name() domain.SourceName
	Adapt(raw []byte) []domain.Contest
}

// Registry resolves source names to adapters.
type Registry struct {
	adapters map[domain.SourceName]Adapter
}

// NewRegistry builds a registry from adapters. Later adapters replace earlier
// ones registered under the same name.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.SourceName]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// DefaultRegistry knows every built-in source.
func DefaultRegistry() *Registry {
	return NewRegistry(codeforces.New(), codechef.New(), leetcode.New())
}

// Lookup returns the adapter for name.
func (r *Registry) Lookup(name domain.SourceName) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}
