package result

import (
	"sort"

	"github.com/kailas-cloud/clusterops/internal/domain/document"
)

// Hit is a document returned for a cluster with its distance score.
type Hit struct {
	score float64
	doc   document.Document
}

// NewHit creates a hit.
func NewHit(score float64, doc document.Document) Hit {
	return Hit{score: score, doc: doc}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.doc.ID() }

// Score returns the similarity score to the centroid.
func (h *Hit) Score() float64 { return h.score }

// Document returns the returned document fields.
func (h *Hit) Document() document.Document { return h.doc }

// Nearest maps cluster labels to hits ranked by distance to their centroid.
type Nearest struct {
	groups map[string][]Hit
}

// NewNearest creates a nearest result from per-cluster hits.
func NewNearest(groups map[string][]Hit) Nearest {
	if groups == nil {
		groups = map[string][]Hit{}
	}
	return Nearest{groups: groups}
}

// Labels returns the cluster labels in sorted order.
func (n *Nearest) Labels() []string {
	labels := make([]string, 0, len(n.groups))
	for l := range n.groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Hits returns the hits of a cluster.
func (n *Nearest) Hits(label string) []Hit { return n.groups[label] }

// Len returns the number of clusters.
func (n *Nearest) Len() int { return len(n.groups) }

// Aggregate is the rows returned by an aggregation query.
type Aggregate struct {
	rows []map[string]any
}

// NewAggregate creates an aggregation result.
func NewAggregate(rows []map[string]any) Aggregate {
	return Aggregate{rows: rows}
}

// Rows returns the aggregation rows.
func (a *Aggregate) Rows() []map[string]any { return a.rows }
