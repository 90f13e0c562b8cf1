// Package vectorize encodes text fields of a dataset into vector fields.
package vectorize

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/metrics"
)

// DefaultBatchSize is the number of documents per write-back call.
const DefaultBatchSize = 100

// VectorSuffix marks vector fields on the hosted service.
const VectorSuffix = "_vector_"

// Job is one vectorize run.
type Job struct {
	Dataset string
	// Fields are the (dotted) text fields to encode.
	Fields []string
	// Model names the embedding model in the output field names.
	Model string

	// Progress, if set, is called after every processed page with the running total.
	Progress func(processed int)
}

// Result summarizes a finished run.
type Result struct {
	Dataset string
	// VectorFields maps each text field to the vector field it was encoded into.
	VectorFields map[string]string
	// Encoded is the number of documents that received at least one vector.
	Encoded int
	// Skipped lists ids of documents without text in any of the fields.
	Skipped []string
	Usage   domain.Usage
}

// Service runs vectorize jobs.
type Service struct {
	store     DocumentStore
	embedder  domain.Embedder
	logger    *zap.Logger
	batchSize int
}

// New creates a vectorize service.
func New(store DocumentStore, embedder domain.Embedder) *Service {
	return &Service{
		store:     store,
		embedder:  embedder,
		logger:    zap.NewNop(),
		batchSize: DefaultBatchSize,
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithBatchSize configures the write-back batch size.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// VectorFieldName returns the field a text field is encoded into:
// "<field>_<model>_vector_", with the model reduced to [a-z0-9_].
func VectorFieldName(field, model string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(model) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	m := strings.Trim(b.String(), "_")
	if m == "" {
		return field + VectorSuffix
	}
	return field + "_" + m + VectorSuffix
}

type pending struct {
	doc   int
	field string
}

// Run encodes every non-empty text of job.Fields page by page and writes the
// vectors back. Pages already written are not rolled back on failure.
func (s *Service) Run(ctx context.Context, job Job) (res Result, err error) {
	start := time.Now()
	if err := validate(job); err != nil {
		return Result{}, fmt.Errorf("vectorize: %w", err)
	}

	res = Result{Dataset: job.Dataset, VectorFields: make(map[string]string, len(job.Fields))}
	for _, f := range job.Fields {
		res.VectorFields[f] = VectorFieldName(f, job.Model)
	}
	log := s.logger.With(
		zap.String("dataset", job.Dataset),
		zap.Strings("fields", job.Fields),
		zap.String("model", job.Model),
	)

	processed := 0
	err = s.store.FetchDocuments(ctx, job.Dataset, job.Fields, false, func(page []domdoc.Document) error {
		updates, skipped, usage, err := s.encodePage(ctx, page, job.Fields, res.VectorFields)
		if err != nil {
			metrics.VectorizeDocumentsTotal.WithLabelValues("failed").Add(float64(len(page)))
			return err
		}
		res.Skipped = append(res.Skipped, skipped...)
		res.Usage = res.Usage.Add(usage)
		metrics.VectorizeDocumentsTotal.WithLabelValues("skipped").Add(float64(len(skipped)))

		if err := s.write(ctx, job.Dataset, updates); err != nil {
			metrics.VectorizeDocumentsTotal.WithLabelValues("failed").Add(float64(len(updates)))
			return err
		}
		res.Encoded += len(updates)
		metrics.VectorizeDocumentsTotal.WithLabelValues("encoded").Add(float64(len(updates)))

		processed += len(page)
		if job.Progress != nil {
			job.Progress(processed)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("vectorize: %w", err)
	}

	log.Info("Vectorize finished",
		zap.Int("encoded", res.Encoded),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("total_tokens", res.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func validate(job Job) error {
	if job.Dataset == "" {
		return fmt.Errorf("no dataset: %w", domain.ErrMissingTarget)
	}
	if len(job.Fields) == 0 {
		return fmt.Errorf("no text fields: %w", domain.ErrMissingTarget)
	}
	if strings.TrimSpace(job.Model) == "" {
		return fmt.Errorf("no embedding model: %w", domain.ErrUnknownOption)
	}
	for _, f := range job.Fields {
		if strings.HasSuffix(f, VectorSuffix) {
			return fmt.Errorf("field %q is already a vector field: %w", f, domain.ErrInvalidQuery)
		}
	}
	return nil
}

// encodePage embeds the texts of one page in a single call and returns the
// update documents (id plus vector fields only).
func (s *Service) encodePage(
	ctx context.Context, page []domdoc.Document, fields []string, vectorFields map[string]string,
) ([]domdoc.Document, []string, domain.Usage, error) {
	var texts []string
	var refs []pending
	var skipped []string
	noID := 0
	for i, d := range page {
		if d.ID() == "" {
			noID++
			continue
		}
		found := false
		for _, f := range fields {
			text, ok := textAt(d, f)
			if !ok {
				continue
			}
			texts = append(texts, text)
			refs = append(refs, pending{doc: i, field: f})
			found = true
		}
		if !found {
			skipped = append(skipped, d.ID())
		}
	}
	if noID > 0 {
		s.logger.Warn("Documents without _id ignored", zap.Int("count", noID))
	}
	if len(texts) == 0 {
		return nil, skipped, domain.Usage{}, nil
	}

	emb, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, domain.Usage{}, fmt.Errorf("embed: %w", err)
	}
	if err := emb.CheckCount(len(texts)); err != nil {
		return nil, nil, domain.Usage{}, fmt.Errorf("embed: %w", err)
	}

	byDoc := make(map[int]domdoc.Document)
	var order []int
	for j, ref := range refs {
		upd, ok := byDoc[ref.doc]
		if !ok {
			upd = domdoc.Document{domdoc.IDField: page[ref.doc].ID()}
			byDoc[ref.doc] = upd
			order = append(order, ref.doc)
		}
		upd.Set(vectorFields[ref.field], toFloat64(emb.Vectors[j]))
	}
	updates := make([]domdoc.Document, len(order))
	for i, idx := range order {
		updates[i] = byDoc[idx]
	}
	return updates, skipped, emb.Usage, nil
}

func (s *Service) write(ctx context.Context, dataset string, docs []domdoc.Document) error {
	for i, r := range dombatch.Split(len(docs), s.batchSize) {
		chunk := docs[r[0]:r[1]]
		res, err := s.store.UpdateDocuments(ctx, dataset, chunk)
		if err != nil {
			return domain.NewRemoteWriteError(domain.StepUpdateDocuments, i, domdoc.IDs(chunk), err)
		}
		if !res.OK() {
			return domain.NewRemoteWriteError(domain.StepUpdateDocuments, i, res.FailedIDs(),
				fmt.Errorf("%d of %d documents rejected", len(res.FailedIDs()), len(chunk)))
		}
	}
	return nil
}

// textAt returns the trimmed string at path; lists of strings are joined with spaces.
func textAt(d domdoc.Document, path string) (string, bool) {
	v, ok := d.Get(path)
	if !ok {
		return "", false
	}
	var text string
	switch t := v.(type) {
	case string:
		text = t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		text = strings.Join(parts, " ")
	case []string:
		text = strings.Join(t, " ")
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
