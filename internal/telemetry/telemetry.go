package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used for room actions.
const InstrumentationName = "github.com/gnpanschur/Schwimmen"

// Attribute keys recorded on action spans.
const (
	AttrAction = attribute.Key("thirtyone.action")
	AttrRoom   = attribute.Key("thirtyone.room")
	AttrPlayer = attribute.Key("thirtyone.player")
	AttrCode   = attribute.Key("thirtyone.error_code")
)

// Config selects whether and where spans are exported.
type Config struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// Setup initialises OpenTelemetry tracing.
//
// Tracing is opt-in: when cfg is disabled or has no endpoint, Setup returns a
// no-op shutdown function and no global provider is registered.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled || cfg.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "thirtyone-server"
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
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the tracer for room actions from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartAction opens a span for one client action.
func StartAction(ctx context.Context, tracer trace.Tracer, action, room, player string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "thirtyone."+action,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			AttrAction.String(action),
			AttrRoom.String(room),
			AttrPlayer.String(player),
		),
	)
}

// EndAction records the outcome of an action and ends its span. code is the
// rejection code, empty on success.
func EndAction(span trace.Span, code string, err error) {
	if err != nil {
		span.SetAttributes(AttrCode.String(code))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
	}
	span.End()
}
