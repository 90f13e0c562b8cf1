package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
)

// InsertDocuments inserts or replaces whole documents.
func (c *Client) InsertDocuments(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error) {
	return c.bulk(ctx, "documents_bulk_insert", dataset, "/documents/bulk_insert", docs)
}

// UpdateDocuments merges the given fields into existing documents.
func (c *Client) UpdateDocuments(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error) {
	return c.bulk(ctx, "documents_bulk_update", dataset, "/documents/bulk_update", docs)
}

func (c *Client) bulk(
	ctx context.Context, endpoint, dataset, suffix string, docs []domdoc.Document,
) (dombatch.Result, error) {
	path, err := datasetPath(dataset, suffix)
	if err != nil {
		return dombatch.Result{}, fmt.Errorf("%s: %w", endpoint, err)
	}
	body := documentsRequest{Documents: make([]map[string]any, len(docs))}
	for i, d := range docs {
		body.Documents[i] = d
	}

	var resp bulkResponse
	if err := c.do(ctx, http.MethodPost, endpoint, path, body, &resp); err != nil {
		return dombatch.Result{}, err
	}
	return dombatch.NewResult(resp.Inserted, failedIDs(resp.FailedDocuments)), nil
}

// failedIDs accepts both bare ids and {"_id": ...} objects.
func failedIDs(raw []json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var id string
		if json.Unmarshal(r, &id) == nil {
			ids = append(ids, id)
			continue
		}
		var obj map[string]any
		if json.Unmarshal(r, &obj) == nil {
			ids = append(ids, domdoc.Document(obj).ID())
		}
	}
	return ids
}

// FetchDocuments pages through every document of a dataset, calling fn per page.
// Only _id and fields are requested.
func (c *Client) FetchDocuments(
	ctx context.Context, dataset string, fields []string, includeVector bool, fn domdoc.PageFunc,
) error {
	path, err := datasetPath(dataset, "/documents/get_where")
	if err != nil {
		return fmt.Errorf("documents_get_where: %w", err)
	}
	req := getWhereRequest{
		SelectFields:  nonNilStrings(fields),
		PageSize:      c.pageSize,
		IncludeVector: includeVector,
		Filters:       []filterDTO{},
	}
	for {
		var resp getWhereResponse
		if err := c.do(ctx, http.MethodPost, "documents_get_where", path, req, &resp); err != nil {
			return err
		}
		if len(resp.Documents) == 0 {
			return nil
		}
		page := make([]domdoc.Document, len(resp.Documents))
		for i, d := range resp.Documents {
			page[i] = d
		}
		if err := fn(page); err != nil {
			return err
		}
		if resp.Cursor == "" || resp.Cursor == req.Cursor {
			return nil
		}
		req.Cursor = resp.Cursor
	}
}
