package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

// Factory builds a model from hyperparameters.
type Factory func(p Params) (Model, error)

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{
	factories: map[string]Factory{
		KMeansName: NewKMeans,
	},
}

// Normalize lowercases a model name and strips spaces, underscores and hyphens.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// Register adds or replaces a named model factory.
func Register(name string, f Factory) error {
	key := Normalize(name)
	if key == "" {
		return fmt.Errorf("model name is required")
	}
	if f == nil {
		return fmt.Errorf("factory for %q is nil", name)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[key] = f
	return nil
}

// FromName builds a registered model by name.
func FromName(name string, p Params) (Model, error) {
	key := Normalize(name)
	registry.mu.RLock()
	f, ok := registry.factories[key]
	registry.mu.RUnlock()
	if !ok {
		return Model{}, fmt.Errorf("model %q (available: %s): %w",
			name, strings.Join(Names(), ", "), domain.ErrUnsupportedModel)
	}
	m, err := f(p)
	if err != nil {
		return Model{}, fmt.Errorf("build model %q: %w", name, err)
	}
	return m, nil
}

// Names returns the registered model names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.factories))
	for n := range registry.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
