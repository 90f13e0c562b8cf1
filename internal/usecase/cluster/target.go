package cluster

import (
	"sync"

	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
)

// LastUsed remembers the target of the last run. Queries read it for
// defaults but never replace it.
type LastUsed struct {
	mu sync.RWMutex
	t  request.Target
}

// Get returns the remembered target.
func (l *LastUsed) Get() request.Target {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.t
}

// Set replaces the remembered target.
func (l *LastUsed) Set(t request.Target) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.t = t
}

// Resolve fills empty parts of t from the remembered target and
// returns the names of the parts that were filled in.
func (l *LastUsed) Resolve(t request.Target) (request.Target, []string) {
	last := l.Get()
	var defaulted []string
	if t.Dataset == "" && last.Dataset != "" {
		t.Dataset = last.Dataset
		defaulted = append(defaulted, "dataset")
	}
	if t.VectorField == "" && last.VectorField != "" {
		t.VectorField = last.VectorField
		defaulted = append(defaulted, "vector field")
	}
	if t.Alias == "" && last.Alias != "" {
		t.Alias = last.Alias
		defaulted = append(defaulted, "alias")
	}
	return t, defaulted
}
