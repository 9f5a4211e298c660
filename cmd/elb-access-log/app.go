package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/turbot/elb-access-log-collector/artifact_source"
	"github.com/turbot/elb-access-log-collector/collection"
	"github.com/turbot/elb-access-log-collector/collection_state"
	"github.com/turbot/elb-access-log-collector/config"
	"github.com/turbot/elb-access-log-collector/emitter"
	"github.com/turbot/elb-access-log-collector/logging"
	"github.com/turbot/elb-access-log-collector/metrics"
	"github.com/turbot/elb-access-log-collector/rate_limiter"
)

// default JSONL destination
var stdout io.Writer = os.Stdout

// app is the wired collector
type app struct {
	config    *config.Config
	source    artifact_source.ArtifactSource
	state     *collection_state.ElbCollectionState
	emitter   emitter.Emitter
	metrics   *metrics.CollectorMetrics
	collector *collection.Collector
	poller    *collection.Poller
}

// newApp loads the config named by the --config flag and builds the collector
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logging.Initialize(appName, cfg.IsDebug())

	a := &app{config: cfg, metrics: metrics.NewCollectorMetrics()}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg := a.config

	variant, err := cfg.GetVariant()
	if err != nil {
		return err
	}
	interval, err := cfg.GetInterval()
	if err != nil {
		return err
	}
	buffer, err := cfg.GetBuffer()
	if err != nil {
		return err
	}
	start, err := cfg.GetStartDatetime()
	if err != nil {
		return err
	}
	fileFilter, err := cfg.GetFileFilter()
	if err != nil {
		return err
	}
	recordFilter, err := cfg.GetRecordFilter()
	if err != nil {
		return err
	}

	limiter := rate_limiter.NewAPILimiter(cfg.GetRateLimiterDefinition())
	source, err := artifact_source.NewAwsS3BucketSource(ctx, cfg.GetAwsConnection(), cfg.S3Bucket, limiter)
	if err != nil {
		return err
	}
	a.source = source

	a.state = collection_state.NewElbCollectionState(cfg.GetTsFilePath(), cfg.GetHistFilePath(), cfg.GetHistoryLength())
	if err := a.state.Init(start, time.Now()); err != nil {
		return err
	}

	e, err := buildEmitter(ctx, cfg.Outputs)
	if err != nil {
		return err
	}
	a.emitter = e

	a.collector, err = collection.NewCollector(collection.CollectorConfig{
		AccountID:        cfg.AccountID,
		Region:           cfg.Region,
		S3Prefix:         cfg.GetS3Prefix(),
		Tag:              cfg.GetTag(),
		Variant:          variant,
		Buffer:           buffer,
		SamplingInterval: cfg.GetSamplingInterval(),
		BuilderOptions:   cfg.GetRecordBuilderOptions(),
		RecordFilter:     recordFilter,
		FileFilter:       fileFilter,
	}, a.source, a.state, a.emitter, a.metrics)
	if err != nil {
		return err
	}
	a.poller = collection.NewPoller(a.collector, a.state, interval, a.metrics)

	slog.Info("Initialized collector", "elb_type", cfg.GetElbType(), "bucket", cfg.S3Bucket, "interval", interval, "buffer", buffer)
	return nil
}

// buildEmitter creates the configured outputs; with none configured records are written to stdout as JSONL
func buildEmitter(ctx context.Context, outputs []config.OutputConfig) (*emitter.MultiEmitter, error) {
	res := emitter.NewMultiEmitter()
	for _, o := range outputs {
		var e emitter.Emitter
		var err error
		switch o.Type {
		case config.OutputTypeJSONL:
			path := emitter.StdoutPath
			if o.Path != nil {
				path = *o.Path
			}
			e, err = emitter.NewJSONLEmitter(path)
		case config.OutputTypeRedis:
			var stream string
			if o.Stream != nil {
				stream = *o.Stream
			}
			var maxLen int64
			if o.MaxLen != nil {
				maxLen = *o.MaxLen
			}
			e, err = emitter.NewRedisEmitter(ctx, *o.Address, stream, maxLen)
		default:
			err = fmt.Errorf("unsupported output type %q", o.Type)
		}
		if err != nil {
			_ = res.Close()
			return nil, err
		}
		res.Add(e)
	}

	if res.Len() == 0 {
		res.Add(emitter.NewJSONLWriterEmitter(stdout))
	}
	return res, nil
}

// serveMetrics starts the metrics endpoint if an address is configured. The returned function stops it.
func (a *app) serveMetrics() func() {
	addr := a.config.GetMetricsListenAddress()
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting metrics server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("metrics server shutdown failed", "error", err)
		}
	}
}

func (a *app) Close() {
	if a.emitter != nil {
		if err := a.emitter.Close(); err != nil {
			slog.Warn("failed to close emitter", "error", err)
		}
	}
	if a.source != nil {
		_ = a.source.Close()
	}
}
