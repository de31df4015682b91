// Package otel wires OpenTelemetry tracing for eventld processes.
package otel

import (
	"context"
	"strings"

	"github.com/louisbranch/eventld/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings controls trace export. Tags are relative to config.EnvPrefix.
type Settings struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string  `env:"OTEL_ENDPOINT"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// LoadSettings reads tracing settings from EVENTLD_OTEL_* variables.
func LoadSettings() (Settings, error) {
	var settings Settings
	if err := config.ParseEnvWithPrefix(&settings, config.EnvPrefix); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when EVENTLD_OTEL_ENDPOINT is empty or EVENTLD_OTEL_ENABLED
// is false, Setup returns a no-op shutdown function and leaves the global
// provider untouched.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	settings, err := LoadSettings()
	if err != nil {
		return noop, err
	}
	return SetupWithSettings(ctx, serviceName, settings)
}

// SetupWithSettings is Setup with explicit settings.
func SetupWithSettings(ctx context.Context, serviceName string, settings Settings) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	endpoint := strings.TrimSpace(settings.Endpoint)
	if !settings.Enabled || endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(settings.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
