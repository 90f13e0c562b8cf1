package model

import (
	"context"
	"testing"
)

func TestKMeans_SeparatesGroups(t *testing.T) {
	m, err := NewKMeans(Params{NClusters: 2, DeltaThreshold: 0.01})
	if err != nil {
		t.Fatalf("NewKMeans: %v", err)
	}
	vectors := [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{50, 50}, {50, 51}, {51, 50},
	}
	labels, err := m.FitPredict(context.Background(), vectors)
	if err != nil {
		t.Fatalf("FitPredict: %v", err)
	}
	if len(labels) != len(vectors) {
		t.Fatalf("len(labels) = %d", len(labels))
	}
	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Errorf("first group split: %v", labels)
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Errorf("second group split: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Errorf("groups merged: %v", labels)
	}
}

func TestKMeans_TooFewVectors(t *testing.T) {
	m, _ := NewKMeans(Params{NClusters: 5, DeltaThreshold: 0.01})
	if _, err := m.FitPredict(context.Background(), [][]float64{{1}, {2}}); err == nil {
		t.Fatal("expected error when n_clusters exceeds vectors")
	}
}

func TestKMeans_CanceledContext(t *testing.T) {
	m, _ := NewKMeans(Params{NClusters: 1, DeltaThreshold: 0.01})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.FitPredict(ctx, [][]float64{{1}}); err == nil {
		t.Fatal("expected context error")
	}
}
