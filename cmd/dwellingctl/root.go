package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dwellingcore/internal/config"
	"dwellingcore/internal/core"
	"dwellingcore/internal/logging"
	"dwellingcore/internal/schema"
	"dwellingcore/pkg/domain"
)

// cli carries per-invocation state so commands stay testable.
type cli struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "dwellingctl",
		Short:         "Manage a dwelling energy assessment document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initConfig(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default .dwellingcore.yaml)")
	flags.String("storage", "", "storage driver: memory|file|sqlite|postgres")
	flags.String("file", "", "session file for the file driver")
	flags.String("log-level", "", "log level: debug|info|warn|error")
	_ = c.v.BindPFlag("storage.driver", flags.Lookup("storage"))
	_ = c.v.BindPFlag("storage.file_path", flags.Lookup("file"))
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		c.serveCmd(),
		c.statusCmd(),
		c.exportCmd(),
		c.revalidateCmd(),
		c.resetCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) initConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName(".dwellingcore")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home)
		}
	}
	config.BindEnv(c.v)
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// app is the wired runtime shared by the commands.
type app struct {
	cfg      config.Config
	logger   *logging.Logger
	registry *schema.Registry
	svc      *core.Service
	metrics  *prometheus.Registry
	closers  []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

type appOptions struct {
	tracer core.Tracer
}

// open loads configuration, the registry and the persisted document.
func (c *cli) open(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(c.v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New().FromWriter(c.stderr).FromPath(cfg.Log.Path).Level(cfg.Log.Level).Make()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logger}}

	a.registry = schema.Default()
	if cfg.Schema.Path != "" {
		if a.registry, err = schema.LoadFile(cfg.Schema.Path); err != nil {
			a.Close()
			return nil, err
		}
	}
	graph := domain.DefaultReferenceGraph()
	if err := graph.Validate(a.registry); err != nil {
		a.Close()
		return nil, fmt.Errorf("schema registry does not cover reference graph: %w", err)
	}

	persister, closer, err := core.OpenPersister(ctx, cfg.StorageOptions())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closer)

	a.metrics = prometheus.NewRegistry()
	recorder, err := core.NewPrometheusMetricsRecorder(a.metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	store := core.NewStore(a.registry, nil,
		core.WithPersister(persister),
		core.WithReferenceGraph(graph),
		core.WithStoreLogger(logger),
	)
	res, err := store.Load(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load document: %w", err)
	}
	for _, v := range res.Violations {
		logger.Warn("document repaired on load", "rule", v.Rule, "section", v.Section, "index", v.Index, "message", v.Message)
	}

	svcOpts := []core.ServiceOption{core.WithLogger(logger), core.WithMetricsRecorder(recorder)}
	if opts.tracer != nil {
		svcOpts = append(svcOpts, core.WithTracer(opts.tracer))
	}
	a.svc = core.NewService(store, svcOpts...)
	return a, nil
}
