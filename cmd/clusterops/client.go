package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/clusterops"
	"github.com/kailas-cloud/clusterops/internal/config"
	"github.com/kailas-cloud/clusterops/internal/metrics"
)

// clientOptions maps the configuration onto SDK options.
func clientOptions(cfg config.Config) []clusterops.Option {
	opts := []clusterops.Option{
		clusterops.WithCredentials(cfg.API.Project, cfg.API.APIKey),
		clusterops.WithRegion(cfg.API.Region),
		clusterops.WithRetries(cfg.API.Retries, cfg.API.RetryWait()),
		clusterops.WithTimeout(cfg.API.Timeout()),
		clusterops.WithPageSize(cfg.API.PageSize),
		clusterops.WithBatchSize(cfg.API.BatchSize),
		clusterops.WithModel(cfg.Cluster.Model, cfg.Cluster.Params),
		clusterops.WithOutlier(*cfg.Cluster.OutlierValue, cfg.Cluster.OutlierLabel),
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, clusterops.WithBaseURL(cfg.API.BaseURL))
	}
	if cfg.API.DashboardURL != "" {
		opts = append(opts, clusterops.WithDashboard(cfg.API.DashboardURL))
	}

	if cfg.Embedding.Model != "" {
		opts = append(opts,
			clusterops.WithOpenAI(clusterops.OpenAIConfig{
				APIKey:     cfg.Embedding.APIKey,
				BaseURL:    cfg.Embedding.BaseURL,
				Model:      cfg.Embedding.Model,
				Dimensions: cfg.Embedding.Dimensions,
				Provider:   cfg.Embedding.Provider,
			}),
			clusterops.WithMaxEmbeddingBatch(cfg.Embedding.MaxBatch),
		)
		if cfg.Embedding.Instruction != "" {
			opts = append(opts, clusterops.WithInstruction(cfg.Embedding.Instruction))
		}
		if cfg.Cache.Enabled {
			opts = append(opts, clusterops.WithEmbeddingCache(clusterops.CacheConfig{
				Addrs:            cfg.Cache.Addrs,
				Username:         cfg.Cache.Username,
				Password:         cfg.Cache.Password,
				DB:               cfg.Cache.DB,
				TTL:              cfg.Cache.TTL(),
				ReadinessTimeout: time.Duration(cfg.Cache.ReadinessTimeout) * time.Second,
			}))
		}
	}
	return opts
}

// newClient builds an SDK client that prints notices in yellow on stderr.
func (a *app) newClient(ctx context.Context) (*clusterops.Client, error) {
	metrics.RegisterClusterMetrics()
	metrics.RegisterTransportMetrics()
	metrics.RegisterEmbeddingMetrics()

	notice := color.New(color.FgYellow)
	opts := append(clientOptions(a.cfg),
		clusterops.WithLogger(a.logger),
		clusterops.WithPrometheus(prometheus.DefaultRegisterer),
		clusterops.WithNotifier(func(_ context.Context, msg string) {
			_, _ = notice.Fprintln(os.Stderr, msg)
		}),
	)
	c, err := clusterops.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}
