package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
)

func seeded() request.Target {
	return request.Target{Dataset: "ds", VectorField: "v_vector_", Alias: "kmeans-2"}
}

func TestClosest_DefaultsWithNotice(t *testing.T) {
	var got request.Nearest
	remote := &mockRemote{nearestFn: func(q request.Nearest) (result.Nearest, error) {
		got = q
		return result.NewNearest(nil), nil
	}}
	n := &recordingNotifier{}
	svc := New(remote).WithNotifier(n).WithTarget(seeded())

	if _, err := svc.Closest(context.Background(), request.NearestParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Target() != seeded() {
		t.Errorf("target = %+v", got.Target())
	}
	if got.Direction() != direction.Closest {
		t.Errorf("direction = %q", got.Direction())
	}
	if len(n.msgs) != 3 {
		t.Errorf("notices = %v, want 3", n.msgs)
	}
}

func TestFurthest_ExplicitNoNotice(t *testing.T) {
	var got request.Nearest
	remote := &mockRemote{nearestFn: func(q request.Nearest) (result.Nearest, error) {
		got = q
		return result.NewNearest(nil), nil
	}}
	n := &recordingNotifier{}
	svc := New(remote).WithNotifier(n).WithTarget(seeded())

	explicit := request.Target{Dataset: "other", VectorField: "w_vector_", Alias: "hdbscan"}
	if _, err := svc.Furthest(context.Background(), request.NearestParams{Target: explicit, PageSize: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Target() != explicit || got.Direction() != direction.Furthest || got.PageSize() != 3 {
		t.Errorf("query = %+v", got)
	}
	if len(n.msgs) != 0 {
		t.Errorf("unexpected notices: %v", n.msgs)
	}
}

func TestClosest_NothingToDefault(t *testing.T) {
	remote := &mockRemote{}
	_, err := New(remote).Closest(context.Background(), request.NearestParams{})
	if !errors.Is(err, domain.ErrMissingTarget) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
}

func TestClosest_RemoteError(t *testing.T) {
	boom := errors.New("down")
	remote := &mockRemote{nearestFn: func(request.Nearest) (result.Nearest, error) {
		return result.Nearest{}, boom
	}}
	_, err := New(remote).WithTarget(seeded()).Closest(context.Background(), request.NearestParams{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestAggregate_EmptyClauses(t *testing.T) {
	var got request.Aggregate
	remote := &mockRemote{aggregateFn: func(q request.Aggregate) (result.Aggregate, error) {
		got = q
		return result.NewAggregate([]map[string]any{{"frequency": 3}}), nil
	}}
	svc := New(remote).WithTarget(seeded())

	res, err := svc.Aggregate(context.Background(), request.AggregateParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows()) != 1 {
		t.Errorf("rows = %v", res.Rows())
	}
	if got.Dataset() != "ds" || got.Alias() != "kmeans-2" {
		t.Errorf("target = %s/%s", got.Dataset(), got.Alias())
	}
	if len(got.VectorFields()) != 1 || got.VectorFields()[0] != "v_vector_" {
		t.Errorf("vector fields = %v", got.VectorFields())
	}
	if got.PageSize() != 20 || got.Page() != 1 || got.Asc() || !got.Flatten() {
		t.Errorf("defaults = %d/%d/%v/%v", got.PageSize(), got.Page(), got.Asc(), got.Flatten())
	}
}

func TestAggregate_InvalidQuery_NoRemoteCall(t *testing.T) {
	called := false
	remote := &mockRemote{aggregateFn: func(request.Aggregate) (result.Aggregate, error) {
		called = true
		return result.Aggregate{}, nil
	}}
	_, err := New(remote).WithTarget(seeded()).Aggregate(context.Background(), request.AggregateParams{
		Metrics: []request.Metric{{Field: "price", Agg: "median"}},
	})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if called {
		t.Error("remote called with invalid query")
	}
}

func TestResolveTarget_DefaultsWithNotice(t *testing.T) {
	n := &recordingNotifier{}
	svc := New(&mockRemote{}).WithNotifier(n).WithTarget(seeded())

	got, err := svc.ResolveTarget(context.Background(), "centroids", request.Target{Alias: "other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := request.Target{Dataset: "ds", VectorField: "v_vector_", Alias: "other"}
	if got != want {
		t.Errorf("target = %+v, want %+v", got, want)
	}
	if len(n.msgs) != 2 {
		t.Errorf("notices = %v, want 2", n.msgs)
	}
	if svc.Target() != seeded() {
		t.Errorf("last used target changed to %+v", svc.Target())
	}
}

func TestResolveTarget_NothingToDefault(t *testing.T) {
	n := &recordingNotifier{}
	_, err := New(&mockRemote{}).WithNotifier(n).ResolveTarget(context.Background(), "centroids", request.Target{})
	if !errors.Is(err, domain.ErrMissingTarget) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
	if len(n.msgs) != 0 {
		t.Errorf("unexpected notices: %v", n.msgs)
	}
}
