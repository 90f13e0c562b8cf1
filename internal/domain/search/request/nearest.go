package request

import (
	"fmt"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
)

// Similarity metrics accepted by the hosted service.
const (
	MetricCosine     = "cosine"
	MetricL1         = "l1"
	MetricL2         = "l2"
	MetricDotProduct = "dp"
)

// NearestParams are the raw inputs of a closest/furthest query.
type NearestParams struct {
	Target
	ClusterIDs       []string
	SelectFields     []string
	Filters          []filter.Condition
	PageSize         int
	Page             int
	SimilarityMetric string
	Approx           int
	SumFields        bool
	MinScore         float64
	IncludeVector    bool
}

// Nearest is a validated query for documents ranked by distance to their centroid.
type Nearest struct {
	target           Target
	dir              direction.Direction
	clusterIDs       []string
	selectFields     []string
	filters          []filter.Condition
	pageSize         int
	page             int
	similarityMetric string
	approx           int
	sumFields        bool
	minScore         float64
	includeVector    bool
}

// NewNearest validates and normalizes a nearest query.
// Defaults: page_size=20, page=1, similarity_metric=cosine.
func NewNearest(dir direction.Direction, p NearestParams) (Nearest, error) {
	if !dir.IsValid() {
		return Nearest{}, fmt.Errorf("direction %q: %w", dir, domain.ErrInvalidQuery)
	}
	if err := p.Target.Validate(); err != nil {
		return Nearest{}, err
	}
	if err := filter.Validate(p.Filters); err != nil {
		return Nearest{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	pageSize, page, err := normalizePaging(p.PageSize, p.Page)
	if err != nil {
		return Nearest{}, err
	}
	metric := p.SimilarityMetric
	if metric == "" {
		metric = MetricCosine
	}
	switch metric {
	case MetricCosine, MetricL1, MetricL2, MetricDotProduct:
	default:
		return Nearest{}, fmt.Errorf("similarity metric %q: %w", metric, domain.ErrInvalidQuery)
	}
	if p.Approx < 0 {
		return Nearest{}, fmt.Errorf("approx must not be negative: %w", domain.ErrInvalidQuery)
	}

	return Nearest{
		target:           p.Target,
		dir:              dir,
		clusterIDs:       p.ClusterIDs,
		selectFields:     p.SelectFields,
		filters:          p.Filters,
		pageSize:         pageSize,
		page:             page,
		similarityMetric: metric,
		approx:           p.Approx,
		sumFields:        p.SumFields,
		minScore:         p.MinScore,
		includeVector:    p.IncludeVector,
	}, nil
}

// Target returns the dataset, vector field and alias of the query.
func (n *Nearest) Target() Target { return n.target }

// Direction returns closest or furthest.
func (n *Nearest) Direction() direction.Direction { return n.dir }

// ClusterIDs returns the cluster labels to restrict to; empty means all.
func (n *Nearest) ClusterIDs() []string { return n.clusterIDs }

// SelectFields returns the fields to include; empty means all.
func (n *Nearest) SelectFields() []string { return n.selectFields }

// Filters returns the filter conditions.
func (n *Nearest) Filters() []filter.Condition { return n.filters }

// PageSize returns the number of documents per cluster.
func (n *Nearest) PageSize() int { return n.pageSize }

// Page returns the 1-based page number.
func (n *Nearest) Page() int { return n.page }

// SimilarityMetric returns the distance metric.
func (n *Nearest) SimilarityMetric() string { return n.similarityMetric }

// Approx returns the approximation level, 0 for exact.
func (n *Nearest) Approx() int { return n.approx }

// SumFields reports whether multi-vector scores are summed.
func (n *Nearest) SumFields() bool { return n.sumFields }

// MinScore returns the minimum similarity score.
func (n *Nearest) MinScore() float64 { return n.minScore }

// IncludeVector reports whether vectors are returned.
func (n *Nearest) IncludeVector() bool { return n.includeVector }
