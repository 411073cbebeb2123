package tracing

import (
    "context"
    "io"
    "os"
    "sync/atomic"

    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/codes"
    "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
    "go.opentelemetry.io/otel/sdk/resource"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
    "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amirimatin/go-ftlconn"

var enabled atomic.Bool

// Options configures Setup.
type Options struct {
    Enable      bool
    ServiceName string    // defaults to "ftlconn"
    Writer      io.Writer // span output, defaults to os.Stderr so stdout stays free for payload dumps
}

// Setup installs a global tracer provider exporting spans as JSON to
// opts.Writer. The returned shutdown flushes pending spans and turns span
// creation back off.
func Setup(opts Options) (func(context.Context) error, error) {
    if !opts.Enable {
        enabled.Store(false)
        return func(context.Context) error { return nil }, nil
    }
    if opts.ServiceName == "" { opts.ServiceName = "ftlconn" }
    if opts.Writer == nil { opts.Writer = os.Stderr }
    exp, err := stdouttrace.New(stdouttrace.WithWriter(opts.Writer), stdouttrace.WithPrettyPrint())
    if err != nil { return nil, err }
    res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))
    tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
    otel.SetTracerProvider(tp)
    enabled.Store(true)
    return func(ctx context.Context) error {
        enabled.Store(false)
        return tp.Shutdown(ctx)
    }, nil
}

// StartSpan starts a span when tracing is enabled. The returned func ends it.
func StartSpan(ctx context.Context, name string) (context.Context, func()) {
    if !enabled.Load() {
        return ctx, func() {}
    }
    ctx, span := otel.Tracer(tracerName).Start(ctx, name)
    return ctx, func() { span.End() }
}

// Annotate records attributes and, if err is non-nil, the error on the span
// carried by ctx.
func Annotate(ctx context.Context, err error, attrs ...attribute.KeyValue) {
    if !enabled.Load() { return }
    span := trace.SpanFromContext(ctx)
    span.SetAttributes(attrs...)
    if err != nil {
        span.RecordError(err)
        span.SetStatus(codes.Error, err.Error())
    }
}
