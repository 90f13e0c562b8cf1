package model

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"KMeans", "kmeans"},
		{"k_means", "kmeans"},
		{"K Means", "kmeans"},
		{"mini-batch-kmeans", "minibatchkmeans"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFromName_Unsupported(t *testing.T) {
	_, err := FromName("not-a-real-model", DefaultParams())
	if !errors.Is(err, domain.ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
}

func TestFromName_KMeansAliases(t *testing.T) {
	for _, name := range []string{"kmeans", "KMeans", "k_means", "K-Means"} {
		m, err := FromName(name, Params{NClusters: 3, DeltaThreshold: 0.01})
		if err != nil {
			t.Fatalf("FromName(%q): %v", name, err)
		}
		if m.Kind() != KindStandard || m.NClusters() != 3 {
			t.Errorf("FromName(%q) = %v/%d", name, m.Kind(), m.NClusters())
		}
		if m.Alias() != "kmeans-3" {
			t.Errorf("Alias() = %q", m.Alias())
		}
	}
}

func TestFromName_InvalidParams(t *testing.T) {
	if _, err := FromName("kmeans", Params{}); err == nil {
		t.Fatal("expected error for zero n_clusters")
	}
}

func TestRegister(t *testing.T) {
	err := Register("Always_Zero", func(p Params) (Model, error) {
		return Callable("always-zero", p.NClusters, func(_ context.Context, v [][]float64) ([]int, error) {
			return make([]int, len(v)), nil
		}), nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	m, err := FromName("always zero", DefaultParams())
	if err != nil {
		t.Fatalf("FromName: %v", err)
	}
	if m.Kind() != KindCallable {
		t.Errorf("Kind() = %v", m.Kind())
	}

	found := false
	for _, n := range Names() {
		if n == "alwayszero" {
			found = true
		}
	}
	if !found {
		t.Errorf("Names() = %v, missing alwayszero", Names())
	}
}

func TestRegister_Invalid(t *testing.T) {
	if err := Register("", NewKMeans); err == nil {
		t.Error("expected error for empty name")
	}
	if err := Register("x", nil); err == nil {
		t.Error("expected error for nil factory")
	}
}
