package rest

import (
	"context"
	"fmt"
	"net/http"

	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
)

// Metadata returns the free-form metadata of a dataset.
func (c *Client) Metadata(ctx context.Context, dataset string) (map[string]any, error) {
	path, err := datasetPath(dataset, "/metadata")
	if err != nil {
		return nil, fmt.Errorf("datasets_metadata: %w", err)
	}
	var resp metadataResponse
	if err := c.do(ctx, http.MethodGet, "datasets_metadata", path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return map[string]any{}, nil
	}
	return resp.Results, nil
}

// SetMetadata replaces the metadata of a dataset.
func (c *Client) SetMetadata(ctx context.Context, dataset string, md map[string]any) error {
	path, err := datasetPath(dataset, "/metadata")
	if err != nil {
		return fmt.Errorf("datasets_metadata_set: %w", err)
	}
	return c.do(ctx, http.MethodPost, "datasets_metadata_set", path, metadataRequest{Metadata: md}, nil)
}

// StoreOperation appends op to the operation history in the dataset metadata.
func (c *Client) StoreOperation(ctx context.Context, dataset string, op domcluster.Operation) error {
	md, err := c.Metadata(ctx, dataset)
	if err != nil {
		return err
	}
	return c.SetMetadata(ctx, dataset, domcluster.AppendOperation(md, op))
}
