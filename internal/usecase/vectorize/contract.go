package vectorize

import (
	"context"

	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
)

// DocumentStore reads and updates dataset documents.
type DocumentStore interface {
	FetchDocuments(ctx context.Context, dataset string, fields []string, includeVector bool, fn domdoc.PageFunc) error
	UpdateDocuments(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error)
}
