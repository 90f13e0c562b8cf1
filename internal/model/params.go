package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

// Default hyperparameters.
const (
	DefaultNClusters      = 8
	DefaultDeltaThreshold = 0.01
)

// Params are the hyperparameters understood by built-in backends.
type Params struct {
	NClusters      int     `yaml:"n_clusters" json:"n_clusters"`
	DeltaThreshold float64 `yaml:"delta_threshold" json:"delta_threshold"`
}

// DefaultParams returns the default hyperparameters.
func DefaultParams() Params {
	return Params{NClusters: DefaultNClusters, DeltaThreshold: DefaultDeltaThreshold}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.NClusters < 1 {
		return fmt.Errorf("n_clusters must be at least 1, got %d", p.NClusters)
	}
	if p.DeltaThreshold <= 0 || p.DeltaThreshold >= 1 {
		return fmt.Errorf("delta_threshold must be in (0, 1), got %g", p.DeltaThreshold)
	}
	return nil
}

var knownParams = []string{"delta_threshold", "n_clusters"}

// ParseParams builds Params from loosely typed options on top of the defaults.
// Unrecognized keys are rejected with ErrUnknownOption.
func ParseParams(raw map[string]any) (Params, error) {
	p := DefaultParams()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		switch strings.ToLower(k) {
		case "n_clusters":
			n, ok := asInt(v)
			if !ok {
				return Params{}, fmt.Errorf("n_clusters must be an integer, got %T", v)
			}
			p.NClusters = n
		case "delta_threshold":
			f, ok := asFloat(v)
			if !ok {
				return Params{}, fmt.Errorf("delta_threshold must be a number, got %T", v)
			}
			p.DeltaThreshold = f
		default:
			return Params{}, fmt.Errorf(
				"model parameter %q (known: %s): %w",
				k, strings.Join(knownParams, ", "), domain.ErrUnknownOption,
			)
		}
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
