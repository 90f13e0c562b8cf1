package cluster

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/clusterops/internal/domain/search/direction"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
)

// Closest lists documents closest to their cluster centroid.
func (s *Service) Closest(ctx context.Context, p request.NearestParams) (result.Nearest, error) {
	return s.nearest(ctx, direction.Closest, p)
}

// Furthest lists documents furthest from their cluster centroid.
func (s *Service) Furthest(ctx context.Context, p request.NearestParams) (result.Nearest, error) {
	return s.nearest(ctx, direction.Furthest, p)
}

func (s *Service) nearest(
	ctx context.Context, dir direction.Direction, p request.NearestParams,
) (result.Nearest, error) {
	target, defaulted := s.last.Resolve(p.Target)
	p.Target = target

	q, err := request.NewNearest(dir, p)
	if err != nil {
		return result.Nearest{}, fmt.Errorf("%s: %w", dir, err)
	}
	s.notifyDefaults(ctx, string(dir), defaulted, target)

	res, err := s.remote.QueryNearest(ctx, q)
	if err != nil {
		return result.Nearest{}, fmt.Errorf("%s: %w", dir, err)
	}
	return res, nil
}

// ResolveTarget fills empty parts of t from the last run, announcing every
// substituted part, and validates the result. The last used target is not changed.
func (s *Service) ResolveTarget(ctx context.Context, op string, t request.Target) (request.Target, error) {
	resolved, defaulted := s.last.Resolve(t)
	if err := resolved.Validate(); err != nil {
		return request.Target{}, fmt.Errorf("%s: %w", op, err)
	}
	s.notifyDefaults(ctx, op, defaulted, resolved)
	return resolved, nil
}

// Aggregate runs an aggregation over the clusters of a vector field.
// Empty groupby, metrics, sort and filters mean no constraint.
func (s *Service) Aggregate(ctx context.Context, p request.AggregateParams) (result.Aggregate, error) {
	t := request.Target{Dataset: p.Dataset, Alias: p.Alias}
	if len(p.VectorFields) > 0 {
		t.VectorField = p.VectorFields[0]
	}
	resolved, defaulted := s.last.Resolve(t)
	p.Dataset = resolved.Dataset
	p.Alias = resolved.Alias
	if len(p.VectorFields) == 0 && resolved.VectorField != "" {
		p.VectorFields = []string{resolved.VectorField}
	}

	q, err := request.NewAggregate(p)
	if err != nil {
		return result.Aggregate{}, fmt.Errorf("aggregate: %w", err)
	}
	s.notifyDefaults(ctx, "aggregate", defaulted, resolved)

	res, err := s.remote.Aggregate(ctx, q)
	if err != nil {
		return result.Aggregate{}, fmt.Errorf("aggregate: %w", err)
	}
	return res, nil
}
