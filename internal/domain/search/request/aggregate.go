package request

import (
	"fmt"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
)

var groupByAggs = map[string]bool{
	"category": true, "numeric": true, "array": true, "wordcloud": true,
}

var metricAggs = map[string]bool{
	"avg": true, "max": true, "min": true, "sum": true, "cardinality": true,
}

// GroupBy splits the documents of each cluster by a field.
type GroupBy struct {
	Name         string   `json:"name,omitempty"`
	Field        string   `json:"field"`
	Agg          string   `json:"agg"`
	GroupSize    int      `json:"group_size,omitempty"`
	SelectFields []string `json:"select_fields,omitempty"`
}

// Metric is a statistic computed per group.
type Metric struct {
	Name  string `json:"name,omitempty"`
	Field string `json:"field"`
	Agg   string `json:"agg"`
}

// AggregateParams are the raw inputs of an aggregation query.
// Nil or empty slices mean "no constraint". Nil Flatten means true.
type AggregateParams struct {
	Dataset      string
	VectorFields []string
	Alias        string
	GroupBy      []GroupBy
	Metrics      []Metric
	Sort         []string
	Filters      []filter.Condition
	PageSize     int
	Page         int
	Asc          bool
	Flatten      *bool
}

// Aggregate is a validated per-cluster aggregation query.
type Aggregate struct {
	dataset      string
	vectorFields []string
	alias        string
	groupBy      []GroupBy
	metrics      []Metric
	sort         []string
	filters      []filter.Condition
	pageSize     int
	page         int
	asc          bool
	flatten      bool
}

// NewAggregate validates and normalizes an aggregation query.
// Defaults: page_size=20, page=1, asc=false, flatten=true.
func NewAggregate(p AggregateParams) (Aggregate, error) {
	t := Target{Dataset: p.Dataset, Alias: p.Alias}
	if len(p.VectorFields) > 0 {
		t.VectorField = p.VectorFields[0]
	}
	if err := t.Validate(); err != nil {
		return Aggregate{}, err
	}
	for _, f := range p.VectorFields {
		if f == "" {
			return Aggregate{}, fmt.Errorf("empty vector field: %w", domain.ErrInvalidQuery)
		}
	}
	for _, g := range p.GroupBy {
		if g.Field == "" || !groupByAggs[g.Agg] {
			return Aggregate{}, fmt.Errorf("groupby %q agg %q: %w", g.Field, g.Agg, domain.ErrInvalidQuery)
		}
	}
	for _, m := range p.Metrics {
		if m.Field == "" || !metricAggs[m.Agg] {
			return Aggregate{}, fmt.Errorf("metric %q agg %q: %w", m.Field, m.Agg, domain.ErrInvalidQuery)
		}
	}
	if err := filter.Validate(p.Filters); err != nil {
		return Aggregate{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	pageSize, page, err := normalizePaging(p.PageSize, p.Page)
	if err != nil {
		return Aggregate{}, err
	}
	flatten := true
	if p.Flatten != nil {
		flatten = *p.Flatten
	}

	return Aggregate{
		dataset:      p.Dataset,
		vectorFields: p.VectorFields,
		alias:        p.Alias,
		groupBy:      nonNil(p.GroupBy),
		metrics:      nonNil(p.Metrics),
		sort:         nonNil(p.Sort),
		filters:      nonNil(p.Filters),
		pageSize:     pageSize,
		page:         page,
		asc:          p.Asc,
		flatten:      flatten,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Dataset returns the dataset id.
func (a *Aggregate) Dataset() string { return a.dataset }

// VectorFields returns the clustered vector fields.
func (a *Aggregate) VectorFields() []string { return a.vectorFields }

// Alias returns the clustering alias.
func (a *Aggregate) Alias() string { return a.alias }

// GroupBy returns the groupby clauses, never nil.
func (a *Aggregate) GroupBy() []GroupBy { return a.groupBy }

// Metrics returns the metric clauses, never nil.
func (a *Aggregate) Metrics() []Metric { return a.metrics }

// Sort returns the sort fields, never nil.
func (a *Aggregate) Sort() []string { return a.sort }

// Filters returns the filter conditions, never nil.
func (a *Aggregate) Filters() []filter.Condition { return a.filters }

// PageSize returns the number of groups per page.
func (a *Aggregate) PageSize() int { return a.pageSize }

// Page returns the 1-based page number.
func (a *Aggregate) Page() int { return a.page }

// Asc reports ascending sort order.
func (a *Aggregate) Asc() bool { return a.asc }

// Flatten reports whether nested groups are flattened.
func (a *Aggregate) Flatten() bool { return a.flatten }
