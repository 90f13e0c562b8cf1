package rest

import (
	"context"
	"fmt"
	"net/http"
)

// ListDatasets returns the ids of all datasets in the project.
func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	var resp datasetListResponse
	if err := c.do(ctx, http.MethodGet, "datasets_list", "/datasets/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Datasets, nil
}

// CreateDataset creates a dataset with an optional field -> type schema.
func (c *Client) CreateDataset(ctx context.Context, id string, schema map[string]string) error {
	if id == "" {
		return fmt.Errorf("datasets_create: dataset id is required")
	}
	return c.do(ctx, http.MethodPost, "datasets_create", "/datasets/create",
		createDatasetRequest{ID: id, Schema: schema}, nil)
}

// DeleteDataset deletes a dataset and all its documents.
func (c *Client) DeleteDataset(ctx context.Context, id string) error {
	path, err := datasetPath(id, "/delete")
	if err != nil {
		return fmt.Errorf("datasets_delete: %w", err)
	}
	return c.do(ctx, http.MethodPost, "datasets_delete", path, nil, nil)
}

// Schema returns the field -> type schema of a dataset.
func (c *Client) Schema(ctx context.Context, id string) (map[string]string, error) {
	path, err := datasetPath(id, "/schema")
	if err != nil {
		return nil, fmt.Errorf("datasets_schema: %w", err)
	}
	var resp schemaResponse
	if err := c.do(ctx, http.MethodGet, "datasets_schema", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
