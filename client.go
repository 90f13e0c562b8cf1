package clusterops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/clusterops/internal/db/redis"
	"github.com/kailas-cloud/clusterops/internal/domain"
	dombatch "github.com/kailas-cloud/clusterops/internal/domain/batch"
	domcluster "github.com/kailas-cloud/clusterops/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
	"github.com/kailas-cloud/clusterops/internal/domain/report"
	"github.com/kailas-cloud/clusterops/internal/domain/search/request"
	"github.com/kailas-cloud/clusterops/internal/domain/search/result"
	"github.com/kailas-cloud/clusterops/internal/metrics"
	"github.com/kailas-cloud/clusterops/internal/model"
	"github.com/kailas-cloud/clusterops/internal/repository/embcache"
	"github.com/kailas-cloud/clusterops/internal/transport/openai"
	"github.com/kailas-cloud/clusterops/internal/transport/rest"
	clusteruc "github.com/kailas-cloud/clusterops/internal/usecase/cluster"
	"github.com/kailas-cloud/clusterops/internal/usecase/embedding"
	"github.com/kailas-cloud/clusterops/internal/usecase/health"
	"github.com/kailas-cloud/clusterops/internal/usecase/vectorize"
)

const (
	defaultRegion           = "us-east-1"
	defaultReadinessTimeout = 10 * time.Second
)

// Internal interfaces, replaced by mocks in tests.
type datasetRemote interface {
	ListDatasets(ctx context.Context) ([]string, error)
	CreateDataset(ctx context.Context, id string, schema map[string]string) error
	DeleteDataset(ctx context.Context, id string) error
	Schema(ctx context.Context, id string) (map[string]string, error)
	Metadata(ctx context.Context, id string) (map[string]any, error)
}

type reportRemote interface {
	ListReports(ctx context.Context) ([]report.Report, error)
	StoreReport(ctx context.Context, name string, body map[string]any) (string, error)
	DeleteReport(ctx context.Context, id string) error
}

type documentRemote interface {
	InsertDocuments(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error)
	UpdateDocuments(ctx context.Context, dataset string, docs []domdoc.Document) (dombatch.Result, error)
	FetchDocuments(ctx context.Context, dataset string, fields []string, includeVector bool, fn domdoc.PageFunc) error
}

type centroidLister interface {
	ListCentroids(ctx context.Context, dataset, vectorField, alias string) ([]domcluster.Centroid, error)
}

type clusterUseCase interface {
	Run(ctx context.Context, job clusteruc.Job) (clusteruc.Result, error)
	Closest(ctx context.Context, p request.NearestParams) (result.Nearest, error)
	Furthest(ctx context.Context, p request.NearestParams) (result.Nearest, error)
	Aggregate(ctx context.Context, p request.AggregateParams) (result.Aggregate, error)
	ResolveTarget(ctx context.Context, op string, t request.Target) (request.Target, error)
	Target() request.Target
}

type vectorizeUseCase interface {
	Run(ctx context.Context, job vectorize.Job) (vectorize.Result, error)
}

// Client is the clusterops SDK entry point. Safe for concurrent use, but two
// runs on the same dataset and alias overwrite each other's labels.
type Client struct {
	datasets  datasetRemote
	docs      documentRemote
	reports   reportRemote
	batchSize int

	region    string
	dashboard string

	cluster *ClusterOps

	vectorizer vectorizeUseCase
	embModel   string
	cache      *dbRedis.Store

	health *health.Service
	obs    *observer
}

// New creates a Client. Option values are checked here: unknown model
// parameters fail with ErrUnknownOption and missing credentials with
// ErrUnauthorized. The context bounds the embedding cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		region:    defaultRegion,
		modelName: model.KMeansName,
		batchSize: clusteruc.DefaultBatchSize,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	remote, err := newRemote(cfg, logger)
	if err != nil {
		return nil, err
	}

	defaultModel, err := ModelFromName(cfg.modelName, cfg.modelParams)
	if err != nil {
		return nil, fmt.Errorf("clusterops: %w", err)
	}

	obs, err := newObserver(logger, cfg.metricReg)
	if err != nil {
		return nil, err
	}

	svc := clusteruc.New(remote).
		WithLogger(logger).
		WithBatchSize(cfg.batchSize).
		WithHooks(cfg.hooks...).
		WithDashboard(cfg.dashboardURL)
	if cfg.notifier != nil {
		svc = svc.WithNotifier(clusteruc.NotifierFunc(cfg.notifier))
	}

	c := &Client{
		datasets:  remote,
		docs:      remote,
		reports:   remote,
		batchSize: cfg.batchSize,
		region:    cfg.region,
		dashboard: strings.TrimRight(cfg.dashboardURL, "/"),
		cluster: &ClusterOps{
			svc:       svc,
			centroids: remote,
			model:     defaultModel,
			formatter: cfg.outlier,
			obs:       obs,
		},
		obs: obs,
	}

	es, err := newEmbedder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.health = health.New().WithLogger(logger).
		With("api", health.CheckFunc(func(ctx context.Context) error {
			_, lerr := remote.ListDatasets(ctx)
			return lerr
		}))
	if es.emb != nil {
		c.vectorizer = vectorize.New(remote, es.emb).WithLogger(logger).WithBatchSize(cfg.batchSize)
		c.embModel = es.model
		c.cache = es.cache
		if es.provider != nil {
			c.health.With("embedding", health.CheckFunc(es.provider.HealthCheck))
		}
		if es.cache != nil {
			c.health.With("cache", health.CheckFunc(es.cache.Ping))
		}
	}
	return c, nil
}

func newRemote(cfg *clientConfig, logger *zap.Logger) (*rest.Client, error) {
	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = rest.RegionURL(cfg.region)
	}
	retries := rest.DefaultRetries
	if cfg.retries != nil {
		retries = *cfg.retries
	}
	remote, err := rest.New(rest.Config{
		BaseURL:    baseURL,
		Project:    cfg.project,
		APIKey:     cfg.apiKey,
		Retries:    retries,
		RetryWait:  cfg.retryWait,
		Timeout:    cfg.timeout,
		PageSize:   cfg.pageSize,
		HTTPClient: cfg.httpClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("clusterops: %w", err)
	}
	return remote, nil
}

type embedderSetup struct {
	emb      domain.Embedder
	model    string
	cache    *dbRedis.Store
	provider *openai.Embedder
}

// newEmbedder builds instruction(cache(instrumented(provider))). The
// embedder is nil when no provider is configured.
func newEmbedder(ctx context.Context, cfg *clientConfig, logger *zap.Logger) (embedderSetup, error) {
	var (
		emb      domain.Embedder
		provider string
		name     string
		oe       *openai.Embedder
	)
	switch {
	case cfg.embedder != nil:
		emb, provider, name = cfg.embedder, "custom", cfg.embModel
	case cfg.openai != nil:
		if cfg.openai.Model == "" {
			return embedderSetup{}, errors.New("clusterops: openai embedding model is required")
		}
		oe = openai.NewEmbedder(&openai.Config{
			APIKey:     cfg.openai.APIKey,
			BaseURL:    cfg.openai.BaseURL,
			Model:      cfg.openai.Model,
			Dimensions: cfg.openai.Dimensions,
			Provider:   cfg.openai.Provider,
			Logger:     logger,
		})
		provider = cfg.openai.Provider
		if provider == "" {
			provider = "openai"
		}
		emb, name = oe, oe.Model()
	default:
		if cfg.cache != nil {
			return embedderSetup{}, errors.New("clusterops: embedding cache requires an embedder")
		}
		return embedderSetup{}, nil
	}
	if name == "" {
		return embedderSetup{}, errors.New("clusterops: embedding model name is required")
	}

	emb = embedding.NewInstrumentedEmbedder(emb, provider, name, logger).WithMaxBatch(cfg.maxBatch)

	var store *dbRedis.Store
	if cfg.cache != nil {
		var err error
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cache.Addrs,
			Username: cfg.cache.Username,
			Password: cfg.cache.Password,
			DB:       cfg.cache.DB,
		})
		if err != nil {
			return embedderSetup{}, fmt.Errorf("clusterops: create embedding cache: %w", err)
		}
		timeout := cfg.cache.ReadinessTimeout
		if timeout <= 0 {
			timeout = defaultReadinessTimeout
		}
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return embedderSetup{}, fmt.Errorf("clusterops: embedding cache not ready: %w", err)
		}
		emb = embcache.New(emb, store, name, metrics.EmbeddingCacheTotal).
			WithTTL(cfg.cache.TTL).
			WithLogger(logger)
	}

	if cfg.instr != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.instr)
	}
	return embedderSetup{emb: emb, model: name, cache: store, provider: oe}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// HealthReport is the outcome of Client.Health.
type HealthReport = health.Report

// Health statuses.
const (
	Healthy   = health.Healthy
	Degraded  = health.Degraded
	Unhealthy = health.Unhealthy
)

// Health checks the hosted API and, when configured, the embedding provider
// and the embedding cache.
func (c *Client) Health(ctx context.Context) HealthReport {
	return c.health.Check(ctx)
}

// Datasets returns the dataset management service.
func (c *Client) Datasets() *DatasetService {
	return &DatasetService{remote: c.datasets, obs: c.obs}
}

// Documents returns the document service for a dataset.
func (c *Client) Documents(dataset string) *DocumentService {
	return &DocumentService{
		dataset:   dataset,
		remote:    c.docs,
		batchSize: c.batchSize,
		obs:       c.obs,
	}
}

// Reports returns the cluster report service.
func (c *Client) Reports() *ReportService {
	return &ReportService{remote: c.reports, region: c.region, dashboard: c.dashboard, obs: c.obs}
}

// Cluster returns the clustering service. Every call returns the same
// service, so the last used target is shared across the client.
func (c *Client) Cluster() *ClusterOps {
	return c.cluster
}
