package cluster

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/domain"
	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/metrics"
	"github.com/kailas-cloud/clusterops/internal/model"
)

// DefaultBatchSize is the number of documents per write-back call.
const DefaultBatchSize = 100

// Job is one clustering run. Empty Dataset and VectorField fall back to the
// last used target; an empty Alias falls back to the model alias.
type Job struct {
	Dataset     string
	VectorField string
	Alias       string
	Model       model.Model
	Formatter   *domcluster.Formatter

	// Progress, if set, is called after every fetched page with the running total.
	Progress func(fetched int)
	// Metadata is stored with the operation record of the run.
	Metadata map[string]any
}

// Result summarizes a finished run.
type Result struct {
	Dataset     string
	VectorField string
	Alias       string

	// Labels maps document id to canonical cluster label.
	Labels map[string]string
	// Skipped lists ids of documents without the vector field.
	Skipped   []string
	Centroids []domcluster.Centroid

	DashboardURL string
}

// Labelled returns the number of labelled documents.
func (r Result) Labelled() int { return len(r.Labels) }

// FieldPath returns the document field the labels were written to.
func (r Result) FieldPath() string { return domcluster.FieldPath(r.VectorField, r.Alias) }

// Service orchestrates clustering runs against a remote store.
type Service struct {
	remote    Remote
	last      *LastUsed
	notifier  Notifier
	hooks     []Hook
	logger    *zap.Logger
	batchSize int
	dashboard string
	now       func() time.Time
}

// New creates a clustering service.
func New(remote Remote) *Service {
	logger := zap.NewNop()
	return &Service{
		remote:    remote,
		last:      &LastUsed{},
		notifier:  LogNotifier{Logger: logger},
		logger:    logger,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
}

// WithLogger sets the logger; a default log notifier follows it.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l == nil {
		return s
	}
	s.logger = l
	if _, ok := s.notifier.(LogNotifier); ok {
		s.notifier = LogNotifier{Logger: l}
	}
	return s
}

// WithNotifier sets the notifier for defaulted parameters.
func (s *Service) WithNotifier(n Notifier) *Service {
	if n != nil {
		s.notifier = n
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

// WithHooks appends post-run hooks.
func (s *Service) WithHooks(hooks ...Hook) *Service {
	s.hooks = append(s.hooks, hooks...)
	return s
}

// WithDashboard sets the base URL used to build dashboard links.
func (s *Service) WithDashboard(baseURL string) *Service {
	s.dashboard = strings.TrimRight(baseURL, "/")
	return s
}

// WithClock overrides the clock stamping operation records.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithTarget seeds the last used target.
func (s *Service) WithTarget(t request.Target) *Service {
	s.last.Set(t)
	return s
}

// Target returns the last used target.
func (s *Service) Target() request.Target { return s.last.Get() }

// Run fetches vectors, fits the model, labels documents, writes labels and
// centroids back. Validation failures return before any remote write.
// A failed write is not rolled back.
func (s *Service) Run(ctx context.Context, job Job) (res Result, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ClusterJobsTotal.WithLabelValues(job.Model.Name(), status).Inc()
		metrics.ClusterJobDuration.WithLabelValues(job.Model.Name()).Observe(time.Since(start).Seconds())
	}()

	if job.Model.Kind() == 0 {
		return Result{}, fmt.Errorf("run: no model: %w", domain.ErrUnsupportedModel)
	}
	target, err := s.resolveRunTarget(ctx, job)
	if err != nil {
		return Result{}, fmt.Errorf("run: %w", err)
	}
	formatter := domcluster.DefaultFormatter()
	if job.Formatter != nil {
		formatter = *job.Formatter
	}

	log := s.logger.With(
		zap.String("dataset", target.Dataset),
		zap.String("vector_field", target.VectorField),
		zap.String("alias", target.Alias),
		zap.String("model", job.Model.Name()),
	)

	docs, err := s.fetchAll(ctx, target, job.Progress)
	if err != nil {
		return Result{}, fmt.Errorf("run: %w", err)
	}

	ids, vectors, skipped, noID := extractVectors(docs, target.VectorField)
	metrics.ClusterDocumentsTotal.WithLabelValues("skipped").Add(float64(len(skipped) + noID))
	if len(skipped) > 0 {
		log.Info("Documents without vector field skipped", zap.Int("skipped", len(skipped)))
	}
	if noID > 0 {
		log.Warn("Documents without _id ignored", zap.Int("count", noID))
	}
	if len(vectors) == 0 {
		return Result{}, fmt.Errorf(
			"run: no documents with %q in %q: %w", target.VectorField, target.Dataset, domain.ErrEmptyInput,
		)
	}

	codes, err := job.Model.FitPredict(ctx, vectors)
	if err != nil {
		return Result{}, fmt.Errorf("run: %w", err)
	}
	labels := formatter.Format(codes)

	centroids, err := domcluster.ComputeCentroids(vectors, labels)
	if err != nil {
		return Result{}, fmt.Errorf("run: %w", err)
	}

	fieldPath := domcluster.FieldPath(target.VectorField, target.Alias)
	updates := make([]domdoc.Document, len(ids))
	assigned := make(map[string]string, len(ids))
	for i, id := range ids {
		upd := domdoc.Document{domdoc.IDField: id}
		upd.Set(fieldPath, labels[i])
		updates[i] = upd
		assigned[id] = labels[i]
	}

	if err := s.writeDocuments(ctx, target.Dataset, updates); err != nil {
		return Result{}, fmt.Errorf("run: %w", err)
	}
	metrics.ClusterDocumentsTotal.WithLabelValues("labelled").Add(float64(len(updates)))

	if err := s.remote.UpsertCentroids(ctx, target.Dataset, target.VectorField, target.Alias, centroids); err != nil {
		metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepUpsertCentroids, "error").Inc()
		centroidIDs := make([]string, len(centroids))
		for i, c := range centroids {
			centroidIDs[i] = c.Label
		}
		return Result{}, fmt.Errorf("run: %w",
			domain.NewRemoteWriteError(domain.StepUpsertCentroids, -1, centroidIDs, err))
	}
	metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepUpsertCentroids, "ok").Inc()
	metrics.ClusterCentroidsTotal.Add(float64(len(centroids)))

	res = Result{
		Dataset:      target.Dataset,
		VectorField:  target.VectorField,
		Alias:        target.Alias,
		Labels:       assigned,
		Skipped:      skipped,
		Centroids:    centroids,
		DashboardURL: s.dashboardURL(target),
	}

	log.Info("Clustering finished",
		zap.Int("labelled", res.Labelled()),
		zap.Int("skipped", len(skipped)),
		zap.Int("centroids", len(centroids)),
		zap.Duration("duration", time.Since(start)),
	)
	if res.DashboardURL != "" {
		log.Info("Build your clustering app", zap.String("url", res.DashboardURL))
	}

	for i, h := range s.hooks {
		if err := h(ctx, res); err != nil {
			return res, fmt.Errorf("run: post hook %d: %w", i, err)
		}
	}

	op := domcluster.Operation{
		Name:        "cluster",
		VectorField: target.VectorField,
		Alias:       target.Alias,
		Model:       job.Model.Name(),
		NClusters:   job.Model.NClusters(),
		Labelled:    res.Labelled(),
		Skipped:     len(skipped),
		Centroids:   len(centroids),
		Values:      job.Metadata,
		FinishedAt:  s.now(),
	}
	if err := s.remote.StoreOperation(ctx, target.Dataset, op); err != nil {
		metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepStoreMetadata, "error").Inc()
		return res, fmt.Errorf("run: %w", domain.NewRemoteWriteError(domain.StepStoreMetadata, -1, nil, err))
	}
	metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepStoreMetadata, "ok").Inc()
	return res, nil
}

func (s *Service) resolveRunTarget(ctx context.Context, job Job) (request.Target, error) {
	alias := job.Alias
	if alias == "" {
		alias = job.Model.Alias()
	}
	target, defaulted := s.last.Resolve(request.Target{
		Dataset:     job.Dataset,
		VectorField: job.VectorField,
		Alias:       alias,
	})
	if err := target.Validate(); err != nil {
		return request.Target{}, err
	}
	s.notifyDefaults(ctx, "run", defaulted, target)
	s.last.Set(target)
	return target, nil
}

func (s *Service) fetchAll(ctx context.Context, t request.Target, progress func(int)) ([]domdoc.Document, error) {
	var docs []domdoc.Document
	err := s.remote.FetchDocuments(ctx, t.Dataset, []string{t.VectorField}, true,
		func(page []domdoc.Document) error {
			docs = append(docs, page...)
			if progress != nil {
				progress(len(docs))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	return docs, nil
}

// extractVectors splits docs into labelled candidates and ids of documents
// lacking a usable vector at field. Documents without an id cannot be written
// back; they are only counted.
func extractVectors(docs []domdoc.Document, field string) (ids []string, vectors [][]float64, skipped []string, noID int) {
	ids = make([]string, 0, len(docs))
	vectors = make([][]float64, 0, len(docs))
	for _, d := range docs {
		if d.ID() == "" {
			noID++
			continue
		}
		v, ok := d.Vector(field)
		if !ok {
			skipped = append(skipped, d.ID())
			continue
		}
		ids = append(ids, d.ID())
		vectors = append(vectors, v)
	}
	return ids, vectors, skipped, noID
}

func (s *Service) writeDocuments(ctx context.Context, dataset string, docs []domdoc.Document) error {
	for i, r := range dombatch.Split(len(docs), s.batchSize) {
		chunk := docs[r[0]:r[1]]
		res, err := s.remote.UpdateDocuments(ctx, dataset, chunk)
		if err != nil {
			metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepUpdateDocuments, "error").Inc()
			return domain.NewRemoteWriteError(domain.StepUpdateDocuments, i, domdoc.IDs(chunk), err)
		}
		if !res.OK() {
			metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepUpdateDocuments, "error").Inc()
			return domain.NewRemoteWriteError(domain.StepUpdateDocuments, i, res.FailedIDs(),
				fmt.Errorf("%d of %d documents rejected", len(res.FailedIDs()), len(chunk)))
		}
		metrics.ClusterWriteBatchesTotal.WithLabelValues(domain.StepUpdateDocuments, "ok").Inc()
	}
	return nil
}

func (s *Service) dashboardURL(t request.Target) string {
	if s.dashboard == "" {
		return ""
	}
	return s.dashboard + "/dataset/" + url.PathEscape(t.Dataset) +
		"/deploy/cluster/" + url.PathEscape(t.VectorField) + "/" + url.PathEscape(t.Alias)
}

func (s *Service) notifyDefaults(ctx context.Context, op string, defaulted []string, t request.Target) {
	for _, part := range defaulted {
		var value string
		switch part {
		case "dataset":
			value = t.Dataset
		case "vector field":
			value = t.VectorField
		case "alias":
			value = t.Alias
		}
		s.notifier.Notify(ctx, fmt.Sprintf("%s: no %s supplied, using last used %q", op, part, value))
	}
}
