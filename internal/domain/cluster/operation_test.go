package cluster

import (
	"testing"
	"time"
)

func TestAppendOperation(t *testing.T) {
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	md := map[string]any{
		"owner":      "team",
		HistoryField: map[string]any{"2025-12-31T00:00:00Z": map[string]any{"operation": "cluster"}},
	}

	out := AppendOperation(md, Operation{Name: "cluster", Alias: "kmeans-2", FinishedAt: first})

	if out["owner"] != "team" {
		t.Errorf("metadata key lost: %v", out)
	}
	history, ok := out[HistoryField].(map[string]any)
	if !ok || len(history) != 2 {
		t.Fatalf("history = %v", out[HistoryField])
	}
	op, ok := history["2026-01-02T03:04:05Z"].(Operation)
	if !ok || op.Alias != "kmeans-2" {
		t.Errorf("appended entry = %v", history["2026-01-02T03:04:05Z"])
	}
	if prev := md[HistoryField].(map[string]any); len(prev) != 1 {
		t.Errorf("input history modified: %v", prev)
	}
}

func TestAppendOperation_NilMetadata(t *testing.T) {
	out := AppendOperation(nil, Operation{Name: "cluster", FinishedAt: time.Unix(0, 0)})
	if h, ok := out[HistoryField].(map[string]any); !ok || len(h) != 1 {
		t.Errorf("history = %v", out[HistoryField])
	}
}
