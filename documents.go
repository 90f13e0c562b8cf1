package clusterops

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
)

// DocumentService reads and writes documents of one dataset.
type DocumentService struct {
	dataset   string
	remote    documentRemote
	batchSize int
	obs       *observer
}

// Insert stores whole documents in batches, replacing documents with the same
// id. A failing batch stops the insert; earlier batches stay written and are
// counted in the returned result.
func (s *DocumentService) Insert(ctx context.Context, docs []Document) (_ BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.insert", start, err) }()

	res, err := s.bulk(ctx, docs, s.remote.InsertDocuments)
	if err != nil {
		return res, fmt.Errorf("insert documents: %w", err)
	}
	return res, nil
}

// Update merges fields into existing documents in batches.
func (s *DocumentService) Update(ctx context.Context, docs []Document) (_ BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.update", start, err) }()

	res, err := s.bulk(ctx, docs, s.remote.UpdateDocuments)
	if err != nil {
		return res, fmt.Errorf("update documents: %w", err)
	}
	return res, nil
}

func (s *DocumentService) bulk(
	ctx context.Context,
	docs []Document,
	write func(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error),
) (BulkResult, error) {
	var (
		written int
		failed  []string
	)
	for i, r := range dombatch.Split(len(docs), s.batchSize) {
		res, err := write(ctx, s.dataset, docs[r[0]:r[1]])
		if err != nil {
			return dombatch.NewResult(written, failed), fmt.Errorf("batch %d: %w", i, err)
		}
		written += res.Inserted()
		failed = append(failed, res.FailedIDs()...)
	}
	return dombatch.NewResult(written, failed), nil
}

// Fetch pages through every document, calling fn once per page. Only "_id"
// and fields are returned; vectors are included on request.
func (s *DocumentService) Fetch(
	ctx context.Context, fields []string, includeVector bool, fn PageFunc,
) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.fetch", start, err) }()

	if err = s.remote.FetchDocuments(ctx, s.dataset, fields, includeVector, fn); err != nil {
		return fmt.Errorf("fetch documents: %w", err)
	}
	return nil
}

// All fetches every document into memory.
func (s *DocumentService) All(ctx context.Context, fields []string, includeVector bool) ([]Document, error) {
	var docs []Document
	err := s.Fetch(ctx, fields, includeVector, func(page []domdoc.Document) error {
		docs = append(docs, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
