package cluster

import (
	"time"
)

// HistoryField is the dataset metadata key holding finished operations,
// keyed by finish time.
const HistoryField = "_operationhistory_"

// Operation describes one finished clustering run.
type Operation struct {
	Name        string         `json:"operation"`
	VectorField string         `json:"vector_field"`
	Alias       string         `json:"alias"`
	Model       string         `json:"model"`
	NClusters   int            `json:"n_clusters,omitempty"`
	Labelled    int            `json:"labelled"`
	Skipped     int            `json:"skipped"`
	Centroids   int            `json:"centroids"`
	Values      map[string]any `json:"values,omitempty"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// Key returns the history key of op.
func (op Operation) Key() string {
	return op.FinishedAt.UTC().Format(time.RFC3339Nano)
}

// AppendOperation returns a copy of metadata with op added to its history.
// Other metadata keys and earlier history entries are kept.
func AppendOperation(metadata map[string]any, op Operation) map[string]any {
	out := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	history := make(map[string]any)
	if prev, ok := out[HistoryField].(map[string]any); ok {
		for k, v := range prev {
			history[k] = v
		}
	}
	history[op.Key()] = op
	out[HistoryField] = history
	return out
}
