package clusterops

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	project      string
	apiKey       string
	region       string
	baseURL      string
	dashboardURL string

	retries    *int
	retryWait  time.Duration
	timeout    time.Duration
	pageSize   int
	batchSize  int
	httpClient *http.Client

	modelName   string
	modelParams map[string]any
	outlier     *Formatter
	hooks       []Hook
	notifier    func(ctx context.Context, msg string)

	embedder  Embedder
	openai    *OpenAIConfig
	cache     *CacheConfig
	instr     string
	embModel  string
	maxBatch  int
	logger    *zap.Logger
	metricReg prometheus.Registerer
}

// OpenAIConfig configures the vectorize embedding provider. Any
// OpenAI-compatible API works through BaseURL.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	// Provider labels metrics, defaults to "openai".
	Provider string
}

// CacheConfig configures the Redis embedding cache.
type CacheConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// TTL of cached vectors; zero keeps them forever.
	TTL time.Duration
	// ReadinessTimeout bounds the initial connection check. Default: 10s.
	ReadinessTimeout time.Duration
}

// WithCredentials sets the project and API key sent with every request.
func WithCredentials(project, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.project = project
		c.apiKey = apiKey
	})
}

// WithRegion selects the hosted region. Default: us-east-1.
func WithRegion(region string) Option {
	return optionFunc(func(c *clientConfig) {
		c.region = region
	})
}

// WithBaseURL overrides the region URL, e.g. to point at a local emulator.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithDashboard enables dashboard links in run results.
func WithDashboard(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dashboardURL = url
	})
}

// WithRetries sets the number of retries of a failed request and the wait
// between attempts. Zero retries disables retrying.
func WithRetries(n int, wait time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.retries = &n
		c.retryWait = wait
	})
}

// WithTimeout sets the per-request timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithPageSize sets the number of documents fetched per page. Default: 100.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithBatchSize sets the number of documents per write call. Default: 100.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored then.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithModel sets the model used when a RunRequest carries none.
// Parameters are checked by New; unknown keys fail with ErrUnknownOption.
func WithModel(name string, params map[string]any) Option {
	return optionFunc(func(c *clientConfig) {
		c.modelName = name
		c.modelParams = params
	})
}

// WithOutlier sets the raw label value of outliers and the label written for them.
// Default: -1 and "outlier".
func WithOutlier(value int, label string) Option {
	return optionFunc(func(c *clientConfig) {
		c.outlier = &Formatter{OutlierValue: value, OutlierLabel: label}
	})
}

// WithHooks appends functions called after every successful run.
func WithHooks(hooks ...Hook) Option {
	return optionFunc(func(c *clientConfig) {
		c.hooks = append(c.hooks, hooks...)
	})
}

// WithNotifier receives notices about parameters filled in from the last
// used target. Default: an info log line.
func WithNotifier(fn func(ctx context.Context, msg string)) Option {
	return optionFunc(func(c *clientConfig) {
		c.notifier = fn
	})
}

// WithEmbedder sets a custom embedding provider for Vectorize. model names
// the output vector fields.
func WithEmbedder(e Embedder, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.embModel = model
	})
}

// WithOpenAI configures an OpenAI-compatible embedding provider for Vectorize.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
	})
}

// WithEmbeddingCache caches embeddings in Redis, keyed by model and text.
func WithEmbeddingCache(cfg CacheConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.cache = &cfg
	})
}

// WithInstruction prepends an instruction to every text before embedding,
// for models that expect one (e.g. "passage: ").
func WithInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.instr = instruction
	})
}

// WithMaxEmbeddingBatch caps the texts per embedding request. Default: 256.
func WithMaxEmbeddingBatch(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatch = n
	})
}

// WithLogger enables structured logging. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricReg = reg
	})
}
