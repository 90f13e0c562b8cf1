package chi

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/kailas-cloud/clusterops/internal/domain"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/filter"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
)

// scoreField carries the centroid score of a returned document.
const scoreField = "_score"

// clusterIDField names the cluster label column of aggregation rows.
const clusterIDField = "_cluster_id_"

// frequencyField counts documents per aggregation row.
const frequencyField = "frequency"

type scored struct {
	score float64
	doc   domdoc.Document
}

// similarity scores vec against centroid. For cosine and dp higher is closer;
// for l1 and l2 the score is a distance and lower is closer.
func similarity(metric string, vec, centroid []float64) (float64, error) {
	if len(vec) != len(centroid) {
		return 0, fmt.Errorf("vector dim %d vs centroid dim %d: %w", len(vec), len(centroid), domain.ErrShapeMismatch)
	}
	switch metric {
	case request.MetricDotProduct:
		return floats.Dot(vec, centroid), nil
	case request.MetricL1:
		return floats.Distance(vec, centroid, 1), nil
	case request.MetricL2:
		return floats.Distance(vec, centroid, 2), nil
	default:
		na, nb := floats.Norm(vec, 2), floats.Norm(centroid, 2)
		if na == 0 || nb == 0 {
			return 0, nil
		}
		return floats.Dot(vec, centroid) / (na * nb), nil
	}
}

func isDistance(metric string) bool {
	return metric == request.MetricL1 || metric == request.MetricL2
}

// rankNearest groups labelled documents by cluster and orders each group by
// closeness to its centroid. Documents without a vector, a label or a known
// centroid are left out.
func rankNearest(docs []domdoc.Document, centroids []domcluster.Centroid, q request.Nearest) map[string][]map[string]any {
	t := q.Target()
	path := domcluster.FieldPath(t.VectorField, t.Alias)
	metric := q.SimilarityMetric()

	byLabel := make(map[string][]float64, len(centroids))
	for _, c := range centroids {
		byLabel[c.Label] = c.Vector
	}
	wanted := make(map[string]bool, len(q.ClusterIDs()))
	for _, id := range q.ClusterIDs() {
		wanted[id] = true
	}

	groups := make(map[string][]scored)
	for _, d := range docs {
		raw, ok := d.Get(path)
		if !ok {
			continue
		}
		label, ok := raw.(string)
		if !ok || (len(wanted) > 0 && !wanted[label]) {
			continue
		}
		center, ok := byLabel[label]
		if !ok {
			continue
		}
		vec, ok := d.Vector(t.VectorField)
		if !ok || !filter.MatchAll(q.Filters(), d) {
			continue
		}
		s, err := similarity(metric, vec, center)
		if err != nil {
			continue
		}
		if q.MinScore() != 0 && s < q.MinScore() {
			continue
		}
		groups[label] = append(groups[label], scored{score: s, doc: d})
	}

	// closest first means descending similarity, ascending distance
	descending := !isDistance(metric)
	if q.Direction() == direction.Furthest {
		descending = !descending
	}

	out := make(map[string][]map[string]any, len(groups))
	for label, hits := range groups {
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].score == hits[j].score {
				return hits[i].doc.ID() < hits[j].doc.ID()
			}
			if descending {
				return hits[i].score > hits[j].score
			}
			return hits[i].score < hits[j].score
		})
		lo, hi := pageBounds(len(hits), q.PageSize(), q.Page())
		page := make([]map[string]any, 0, hi-lo)
		for _, h := range hits[lo:hi] {
			doc := project(h.doc, q.SelectFields(), q.IncludeVector())
			doc[scoreField] = h.score
			page = append(page, doc)
		}
		out[label] = page
	}
	return out
}

// project applies field selection and drops vector fields unless requested.
func project(d domdoc.Document, fields []string, includeVector bool) domdoc.Document {
	out := d.Clone()
	if len(fields) > 0 {
		out = d.Select(fields...)
	}
	if !includeVector {
		for k := range out {
			if strings.HasSuffix(k, domdoc.VectorSuffix) {
				delete(out, k)
			}
		}
	}
	return out
}

func pageBounds(n, pageSize, page int) (int, int) {
	lo := (page - 1) * pageSize
	if lo > n {
		lo = n
	}
	hi := lo + pageSize
	if hi > n {
		hi = n
	}
	return lo, hi
}

type aggRow struct {
	label  string
	keys   map[string]any
	docs   []domdoc.Document
	values map[string]any
}

// aggregate builds one row per cluster and groupby key combination.
func aggregate(docs []domdoc.Document, q request.Aggregate) []map[string]any {
	path := domcluster.FieldPath(q.VectorFields()[0], q.Alias())

	rows := make(map[string]*aggRow)
	var order []string
	for _, d := range docs {
		raw, ok := d.Get(path)
		if !ok {
			continue
		}
		label, ok := raw.(string)
		if !ok || !filter.MatchAll(q.Filters(), d) {
			continue
		}
		for _, keys := range groupKeys(d, q.GroupBy()) {
			id := label + "\x00" + fmt.Sprint(keys)
			r, ok := rows[id]
			if !ok {
				r = &aggRow{label: label, keys: keys}
				rows[id] = r
				order = append(order, id)
			}
			r.docs = append(r.docs, d)
		}
	}

	list := make([]*aggRow, 0, len(order))
	for _, id := range order {
		r := rows[id]
		r.values = metricValues(r.docs, q.Metrics())
		list = append(list, r)
	}
	sortRows(list, q.Sort(), q.Asc())

	lo, hi := pageBounds(len(list), q.PageSize(), q.Page())
	list = list[lo:hi]
	if q.Flatten() {
		out := make([]map[string]any, len(list))
		for i, r := range list {
			out[i] = r.flat()
		}
		return out
	}
	return nestByCluster(list)
}

func (r *aggRow) flat() map[string]any {
	m := make(map[string]any, len(r.keys)+len(r.values)+2)
	m[clusterIDField] = r.label
	for k, v := range r.keys {
		m[k] = v
	}
	for k, v := range r.values {
		m[k] = v
	}
	m[frequencyField] = len(r.docs)
	return m
}

// nestByCluster groups rows under their cluster, keeping first-seen order.
func nestByCluster(list []*aggRow) []map[string]any {
	var out []map[string]any
	index := make(map[string]int)
	for _, r := range list {
		row := r.flat()
		delete(row, clusterIDField)
		i, ok := index[r.label]
		if !ok {
			i = len(out)
			index[r.label] = i
			out = append(out, map[string]any{clusterIDField: r.label, "results": []map[string]any{}})
		}
		out[i]["results"] = append(out[i]["results"].([]map[string]any), row)
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out
}

// groupKeys returns the groupby key combinations a document falls into.
// array groupbys fan out per element, wordcloud per lowercased word.
func groupKeys(d domdoc.Document, groupBy []request.GroupBy) []map[string]any {
	combos := []map[string]any{{}}
	for _, g := range groupBy {
		name := g.Name
		if name == "" {
			name = g.Field
		}
		values := groupValues(d, g)
		next := make([]map[string]any, 0, len(combos)*len(values))
		for _, c := range combos {
			for _, v := range values {
				m := make(map[string]any, len(c)+1)
				for k, cv := range c {
					m[k] = cv
				}
				m[name] = v
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

func groupValues(d domdoc.Document, g request.GroupBy) []any {
	v, ok := d.Get(g.Field)
	if !ok || v == nil {
		return []any{nil}
	}
	switch g.Agg {
	case "array":
		if list, isList := v.([]any); isList && len(list) > 0 {
			return list
		}
	case "wordcloud":
		words := strings.Fields(strings.ToLower(fmt.Sprint(v)))
		if len(words) > 0 {
			out := make([]any, len(words))
			for i, w := range words {
				out[i] = w
			}
			return out
		}
	}
	return []any{v}
}

func metricValues(docs []domdoc.Document, ms []request.Metric) map[string]any {
	out := make(map[string]any, len(ms))
	for _, m := range ms {
		name := m.Name
		if name == "" {
			name = m.Agg + "_" + m.Field
		}
		if m.Agg == "cardinality" {
			seen := make(map[string]struct{})
			for _, d := range docs {
				if v, ok := d.Get(m.Field); ok && v != nil {
					seen[fmt.Sprint(v)] = struct{}{}
				}
			}
			out[name] = len(seen)
			continue
		}

		var xs []float64
		for _, d := range docs {
			if v, ok := d.Get(m.Field); ok {
				if f, ok := domdoc.Number(v); ok {
					xs = append(xs, f)
				}
			}
		}
		if len(xs) == 0 {
			out[name] = nil
			continue
		}
		switch m.Agg {
		case "sum":
			out[name] = floats.Sum(xs)
		case "avg":
			out[name] = floats.Sum(xs) / float64(len(xs))
		case "min":
			out[name] = floats.Min(xs)
		case "max":
			out[name] = floats.Max(xs)
		}
	}
	return out
}

// sortRows orders by the sort fields, then frequency, then cluster label.
// Without sort fields rows are ordered by frequency.
func sortRows(rows []*aggRow, fields []string, asc bool) {
	keys := append(append([]string(nil), fields...), frequencyField)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].flat(), rows[j].flat()
		for _, k := range keys {
			c := compareValues(a[k], b[k])
			if c == 0 {
				continue
			}
			if asc {
				return c < 0
			}
			return c > 0
		}
		return rows[i].label < rows[j].label
	})
}

func compareValues(a, b any) int {
	fa, okA := domdoc.Number(a)
	fb, okB := domdoc.Number(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
