package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/clusterops"
)

// parseParams turns key=value pairs into model parameters. Values are YAML
// scalars, so "8" is an int and "0.05" a float.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("param %q: want key=value", p)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("param %q: %w", p, err)
		}
		params[key] = v
	}
	return params, nil
}

// parseFilter parses "field:type:condition:value", e.g. "price:numeric:>=:10".
// The value may contain colons.
func parseFilter(arg string) (clusterops.Filter, error) {
	parts := strings.SplitN(arg, ":", 4)
	if len(parts) != 4 {
		return clusterops.Filter{}, fmt.Errorf("filter %q: want field:type:condition:value", arg)
	}
	var v any
	if err := yaml.Unmarshal([]byte(parts[3]), &v); err != nil {
		return clusterops.Filter{}, fmt.Errorf("filter %q: %w", arg, err)
	}
	f, err := clusterops.NewFilter(parts[0], clusterops.FilterType(parts[1]), parts[2], v)
	if err != nil {
		return clusterops.Filter{}, fmt.Errorf("filter %q: %w", arg, err)
	}
	return f, nil
}

func parseFilters(specs []string) ([]clusterops.Filter, error) {
	out := make([]clusterops.Filter, 0, len(specs))
	for _, s := range specs {
		f, err := parseFilter(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// parseAgg parses "agg(field)" or "name=agg(field)", e.g. "avg_price=avg(price)".
func parseAgg(arg string) (name, agg, field string, err error) {
	name, expr, ok := strings.Cut(arg, "=")
	if !ok {
		expr, name = arg, ""
	}
	agg, rest, ok := strings.Cut(expr, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return "", "", "", fmt.Errorf("aggregation %q: want agg(field)", arg)
	}
	field = strings.TrimSuffix(rest, ")")
	if agg == "" || field == "" {
		return "", "", "", fmt.Errorf("aggregation %q: want agg(field)", arg)
	}
	return name, agg, field, nil
}

func parseGroupBy(specs []string) ([]clusterops.GroupBy, error) {
	out := make([]clusterops.GroupBy, 0, len(specs))
	for _, s := range specs {
		name, agg, field, err := parseAgg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, clusterops.GroupBy{Name: name, Field: field, Agg: agg})
	}
	return out, nil
}

func parseMetrics(specs []string) ([]clusterops.Metric, error) {
	out := make([]clusterops.Metric, 0, len(specs))
	for _, s := range specs {
		name, agg, field, err := parseAgg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, clusterops.Metric{Name: name, Field: field, Agg: agg})
	}
	return out, nil
}
