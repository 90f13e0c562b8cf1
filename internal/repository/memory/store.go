// Package memory keeps datasets, documents and centroids in process memory.
// It backs the local emulator of the hosted API.
package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/clusterops/internal/domain"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/report"
)

// Field types reported by Schema.
const (
	TypeText    = "text"
	TypeNumeric = "numeric"
	TypeBool    = "bool"
	TypeVector  = "vector"
	TypeObject  = "dict"
)

type dataset struct {
	schema    map[string]string
	docs      map[string]domdoc.Document
	centroids map[string][]domcluster.Centroid // key: vectorField + "/" + alias
	metadata  map[string]any
}

func newDataset(schema map[string]string) *dataset {
	ds := &dataset{
		schema:    make(map[string]string, len(schema)),
		docs:      make(map[string]domdoc.Document),
		centroids: make(map[string][]domcluster.Centroid),
		metadata:  make(map[string]any),
	}
	for k, v := range schema {
		ds.schema[k] = v
	}
	return ds
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*dataset
	reports  map[string]report.Report
	now      func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		datasets: make(map[string]*dataset),
		reports:  make(map[string]report.Report),
		now:      time.Now,
	}
}

// ListDatasets returns dataset ids in lexical order.
func (s *Store) ListDatasets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.datasets))
	for id := range s.datasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CreateDataset registers an empty dataset with an optional schema.
func (s *Store) CreateDataset(id string, schema map[string]string) error {
	if id == "" {
		return fmt.Errorf("create dataset: %w: id is required", domain.ErrInvalidQuery)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; ok {
		return fmt.Errorf("create dataset %q: %w", id, domain.ErrAlreadyExists)
	}
	s.datasets[id] = newDataset(schema)
	return nil
}

// DeleteDataset drops a dataset with its documents and centroids.
func (s *Store) DeleteDataset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return fmt.Errorf("delete dataset %q: %w", id, domain.ErrNotFound)
	}
	delete(s.datasets, id)
	return nil
}

// Schema returns a copy of the dataset schema.
func (s *Store) Schema(id string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("schema %q: %w", id, domain.ErrNotFound)
	}
	out := make(map[string]string, len(ds.schema))
	for k, v := range ds.schema {
		out[k] = v
	}
	return out, nil
}

// Insert stores whole documents, replacing existing ones. A missing dataset is created.
// Documents without an id are reported as failed.
func (s *Store) Insert(id string, docs []domdoc.Document) (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		ds = newDataset(nil)
		s.datasets[id] = ds
	}

	var failed []string
	inserted := 0
	for _, d := range docs {
		docID := d.ID()
		if docID == "" {
			failed = append(failed, "")
			continue
		}
		doc := d.Clone()
		doc[domdoc.IDField] = docID
		ds.docs[docID] = doc
		ds.infer(doc)
		inserted++
	}
	return inserted, failed
}

// Update merges fields into existing documents. Unknown ids are reported as failed.
func (s *Store) Update(id string, docs []domdoc.Document) (int, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return 0, nil, fmt.Errorf("update %q: %w", id, domain.ErrNotFound)
	}

	var failed []string
	updated := 0
	for _, d := range docs {
		existing, ok := ds.docs[d.ID()]
		if !ok {
			failed = append(failed, d.ID())
			continue
		}
		merge(existing, d.Clone())
		ds.infer(existing)
		updated++
	}
	return updated, failed, nil
}

// Page returns up to size matching documents after cursor, ordered by id.
// A nil match accepts every document. The cursor is an offset into the matching
// documents and comes back empty once the last page has been served.
func (s *Store) Page(id, cursor string, size int, match func(domdoc.Document) bool) ([]domdoc.Document, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, "", fmt.Errorf("page %q: %w", id, domain.ErrNotFound)
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("page %q: %w: bad cursor %q", id, domain.ErrInvalidQuery, cursor)
		}
		offset = n
	}

	ids := ds.sortedIDs()
	if match != nil {
		kept := ids[:0]
		for _, docID := range ids {
			if match(ds.docs[docID]) {
				kept = append(kept, docID)
			}
		}
		ids = kept
	}
	if offset >= len(ids) {
		return nil, "", nil
	}
	end := offset + size
	if size <= 0 || end > len(ids) {
		end = len(ids)
	}
	page := make([]domdoc.Document, 0, end-offset)
	for _, docID := range ids[offset:end] {
		page = append(page, ds.docs[docID].Clone())
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

// Documents returns a snapshot of every document, ordered by id.
func (s *Store) Documents(id string) ([]domdoc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("documents %q: %w", id, domain.ErrNotFound)
	}
	ids := ds.sortedIDs()
	out := make([]domdoc.Document, len(ids))
	for i, docID := range ids {
		out[i] = ds.docs[docID].Clone()
	}
	return out, nil
}

// PutCentroids replaces the centroids of a vector field/alias.
func (s *Store) PutCentroids(id, vectorField, alias string, centroids []domcluster.Centroid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return fmt.Errorf("centroids %q: %w", id, domain.ErrNotFound)
	}
	cp := make([]domcluster.Centroid, len(centroids))
	for i, c := range centroids {
		cp[i] = domcluster.Centroid{Label: c.Label, Vector: append([]float64(nil), c.Vector...)}
	}
	ds.centroids[centroidKey(vectorField, alias)] = cp
	return nil
}

// Centroids returns the centroids of a vector field/alias, ordered by label.
func (s *Store) Centroids(id, vectorField, alias string) ([]domcluster.Centroid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("centroids %q: %w", id, domain.ErrNotFound)
	}
	cs, ok := ds.centroids[centroidKey(vectorField, alias)]
	if !ok {
		return nil, fmt.Errorf("centroids %s/%s: %w", vectorField, alias, domain.ErrNotFound)
	}
	out := append([]domcluster.Centroid(nil), cs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// Metadata returns a copy of the dataset metadata.
func (s *Store) Metadata(id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("metadata %q: %w", id, domain.ErrNotFound)
	}
	return cloneAny(ds.metadata), nil
}

// SetMetadata replaces the dataset metadata.
func (s *Store) SetMetadata(id string, md map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return fmt.Errorf("metadata %q: %w", id, domain.ErrNotFound)
	}
	ds.metadata = cloneAny(md)
	return nil
}

// ListReports returns the stored reports, oldest first.
func (s *Store) ListReports() []report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]report.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// PutReport stores a named report under a fresh id.
func (s *Store) PutReport(name string, body map[string]any) (string, error) {
	if err := report.ValidateName(name); err != nil {
		return "", fmt.Errorf("put report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.reports[id] = report.Report{ID: id, Name: name, Body: cloneAny(body), CreatedAt: s.now().UTC()}
	return id, nil
}

// DeleteReport removes a report.
func (s *Store) DeleteReport(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return fmt.Errorf("delete report %q: %w", id, domain.ErrNotFound)
	}
	delete(s.reports, id)
	return nil
}

func cloneAny(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return map[string]any(domdoc.Document(m).Clone())
}

func centroidKey(vectorField, alias string) string {
	return vectorField + "/" + alias
}

func (ds *dataset) sortedIDs() []string {
	ids := make([]string, 0, len(ds.docs))
	for id := range ds.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// infer records types of top-level fields not yet in the schema.
func (ds *dataset) infer(doc domdoc.Document) {
	for k, v := range doc {
		if k == domdoc.IDField {
			continue
		}
		if _, ok := ds.schema[k]; ok {
			continue
		}
		if t := typeOf(k, v); t != "" {
			ds.schema[k] = t
		}
	}
}

func typeOf(field string, v any) string {
	if strings.HasSuffix(field, domdoc.VectorSuffix) {
		return TypeVector
	}
	switch v.(type) {
	case string:
		return TypeText
	case bool:
		return TypeBool
	case float64, float32, int, int64, json.Number:
		return TypeNumeric
	case map[string]any, domdoc.Document:
		return TypeObject
	default:
		if _, ok := (domdoc.Document{field: v}).Vector(field); ok {
			return TypeVector
		}
		return ""
	}
}

// merge copies src into dst, descending into nested objects.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sv, ok := v.(map[string]any)
		if !ok {
			if d, isDoc := v.(domdoc.Document); isDoc {
				sv, ok = d, true
			}
		}
		dv, dok := dst[k].(map[string]any)
		if ok && dok {
			merge(dv, sv)
			continue
		}
		dst[k] = v
	}
}
