// Package cluster holds the pure parts of the clustering workflow:
// label formatting, centroid computation and result namespacing.
package cluster

import "strconv"

// Default outlier sentinel and label.
const (
	DefaultOutlierValue = -1
	DefaultOutlierLabel = "outlier"
)

// LabelPrefix prefixes every non-outlier canonical label.
const LabelPrefix = "cluster-"

// Formatter maps raw model codes to canonical cluster labels.
type Formatter struct {
	OutlierValue int
	OutlierLabel string
}

// DefaultFormatter returns a formatter with the -1 / "outlier" convention.
func DefaultFormatter() Formatter {
	return Formatter{OutlierValue: DefaultOutlierValue, OutlierLabel: DefaultOutlierLabel}
}

// Label formats a single code.
func (f Formatter) Label(code int) string {
	if code == f.OutlierValue {
		return f.OutlierLabel
	}
	return LabelPrefix + strconv.Itoa(code)
}

// Format formats codes in order.
func (f Formatter) Format(codes []int) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = f.Label(c)
	}
	return out
}
