package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/config"
	logpkg "github.com/kailas-cloud/clusterops/internal/logger"
	"github.com/kailas-cloud/clusterops/internal/version"
)

// app is the state shared by all commands.
type app struct {
	configPath string
	logLevel   string

	env    string
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	a := &app{}
	root := newRootCmd(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "clusterops",
		Short:         "Cluster documents of a hosted vector database",
		Long:          "clusterops labels dataset documents with cluster assignments and stores centroids back in the service",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Config file (default: config/$ENV.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level override: debug, info, warn, error")

	root.AddCommand(
		newClusterCmd(a),
		newVectorizeCmd(a),
		newDatasetsCmd(a),
		newReportsCmd(a),
		newEmulatorCmd(a),
		newHealthCmd(a),
	)
	return root
}

// init loads the configuration and builds the logger. Without --config a
// missing config/$ENV.yaml falls back to defaults.
func (a *app) init() error {
	a.env = config.GetEnv()

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(a.env)
		if errors.Is(err, fs.ErrNotExist) {
			a.cfg, err = config.Parse(nil)
		}
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := a.cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger, err = logpkg.NewLogger(a.env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}
