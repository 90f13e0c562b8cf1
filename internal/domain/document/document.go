package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IDField is the reserved identifier field of every document.
const IDField = "_id"

// VectorSuffix marks vector fields in the hosted service schema.
const VectorSuffix = "_vector_"

// Document is a schemaless document: field name -> value.
// Nested objects are addressed with dotted paths ("_cluster_.title_vector_.kmeans-3").
type Document map[string]any

// PageFunc receives one page of documents read from a dataset.
type PageFunc func(page []Document) error

// New validates and creates a Document with the given id.
func New(id string, fields map[string]any) (Document, error) {
	if id == "" {
		return nil, fmt.Errorf("document ID is required")
	}
	d := make(Document, len(fields)+1)
	for k, v := range fields {
		d[k] = v
	}
	d[IDField] = id
	return d, nil
}

// ID returns the document identifier, or "" if absent.
func (d Document) ID() string {
	v, ok := d[IDField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Get returns the value at a dotted path.
func (d Document) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether a non-nil value exists at a dotted path.
func (d Document) Has(path string) bool {
	v, ok := d.Get(path)
	return ok && v != nil
}

// Set stores value at a dotted path, creating intermediate objects.
// Non-object intermediates are replaced.
func (d Document) Set(path string, value any) {
	parts := strings.Split(path, ".")
	cur := map[string]any(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cur[part])
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// Vector returns the float64 vector stored at path.
// Returns false if the field is missing or not a numeric array.
func (d Document) Vector(path string) ([]float64, bool) {
	v, ok := d.Get(path)
	if !ok {
		return nil, false
	}
	return toVector(v)
}

// Select returns a copy containing only _id and the given dotted paths.
func (d Document) Select(paths ...string) Document {
	out := Document{IDField: d[IDField]}
	for _, p := range paths {
		if v, ok := d.Get(p); ok {
			out.Set(p, v)
		}
	}
	return out
}

// Clone returns a deep copy of nested objects; leaf values are shared.
func (d Document) Clone() Document {
	return Document(cloneMap(d))
}

// IDs returns the identifiers of docs in order.
func IDs(docs []Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID()
	}
	return ids
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := asMap(v); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func toVector(v any) ([]float64, bool) {
	switch vec := v.(type) {
	case []float64:
		return vec, len(vec) > 0
	case []float32:
		out := make([]float64, len(vec))
		for i, f := range vec {
			out[i] = float64(f)
		}
		return out, len(out) > 0
	case []any:
		if len(vec) == 0 {
			return nil, false
		}
		out := make([]float64, len(vec))
		for i, e := range vec {
			f, ok := Number(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

// Number converts a Go or JSON numeric value to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
