package clusterops

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DatasetService manages datasets.
type DatasetService struct {
	remote datasetRemote
	obs    *observer
}

// List returns the dataset ids of the project.
func (s *DatasetService) List(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.list", start, err) }()

	ids, err := s.remote.ListDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return ids, nil
}

// Create creates a dataset. schema maps field names to types and may be nil;
// the service infers missing fields on insert.
func (s *DatasetService) Create(ctx context.Context, id string, schema map[string]string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.create", start, err) }()

	if err = s.remote.CreateDataset(ctx, id, schema); err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	return nil
}

// Ensure creates a dataset unless it already exists.
func (s *DatasetService) Ensure(ctx context.Context, id string, schema map[string]string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.ensure", start, err) }()

	if err = s.remote.CreateDataset(ctx, id, schema); err != nil && !errors.Is(err, ErrAlreadyExists) {
		return fmt.Errorf("ensure dataset: %w", err)
	}
	return nil
}

// Delete deletes a dataset and its documents.
func (s *DatasetService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.delete", start, err) }()

	if err = s.remote.DeleteDataset(ctx, id); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	return nil
}

// Metadata returns the dataset metadata, including the operation history
// under OperationHistoryField.
func (s *DatasetService) Metadata(ctx context.Context, id string) (_ map[string]any, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.metadata", start, err) }()

	md, err := s.remote.Metadata(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dataset metadata: %w", err)
	}
	return md, nil
}

// Schema returns the field types of a dataset.
func (s *DatasetService) Schema(ctx context.Context, id string) (_ map[string]string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dataset.schema", start, err) }()

	schema, err := s.remote.Schema(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dataset schema: %w", err)
	}
	return schema, nil
}
