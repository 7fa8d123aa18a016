package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outbound-custom/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	setupTimeout          = 15 * time.Second
	defaultMetricInterval = 5 * time.Second
)

// Telemetry holds the providers installed as otel globals. A nil provider
// means the signal was not configured and the global no-op stays in place.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Shutdown flushes and stops whichever providers were started.
func (t Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Endpoint is an OTLP collector address. Grpc wins when both are set.
type Endpoint struct {
	Grpc    string            `json:"grpc_endpoint"`
	Http    string            `json:"http_endpoint"`
	Headers map[string]string `json:"headers"`
}

func (e Endpoint) configured() bool {
	return e.Grpc != "" || e.Http != ""
}

type Config struct {
	Traces  Endpoint `json:"traces"`
	Metrics Endpoint `json:"metrics"`
	// SampleRatio is the fraction of root spans kept, 0 keeps all.
	SampleRatio           float64 `json:"sample_ratio"`
	MetricIntervalSeconds float64 `json:"metric_interval_seconds"`
	Environment           string  `json:"environment"`
}

func (c Config) sampler() trace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(c.SampleRatio))
}

func (c Config) metricInterval() time.Duration {
	if c.MetricIntervalSeconds <= 0 {
		return defaultMetricInterval
	}
	return time.Duration(c.MetricIntervalSeconds * float64(time.Second))
}

// SetupFromEnv looks for telemetry.json5 in the working directory and its
// parents. os.ErrNotExist is returned when there is none.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	cfg, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if err != nil {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, cfg)
}

func Setup(ctx context.Context, serviceName string, cfg Config) (Telemetry, error) {
	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	res, err := newResource(serviceName, cfg.Environment)
	if err != nil {
		return Telemetry{}, err
	}

	var t Telemetry
	if cfg.Traces.configured() {
		exporter, err := traceExporter(ctx, cfg.Traces)
		if err != nil {
			return t, fmt.Errorf("trace exporter: %w", err)
		}
		t.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(res),
			trace.WithSampler(cfg.sampler()),
		)
		otel.SetTracerProvider(t.TracerProvider)
	}

	if cfg.Metrics.configured() {
		exporter, err := metricExporter(ctx, cfg.Metrics)
		if err != nil {
			return t, fmt.Errorf("metric exporter: %w", err)
		}
		t.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(cfg.metricInterval()))),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(t.MeterProvider)
	}

	return t, nil
}
