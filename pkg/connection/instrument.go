package connection

import (
    "context"
    "log"
    "net/netip"

    "go.opentelemetry.io/otel/attribute"

    "github.com/amirimatin/go-ftlconn/pkg/internal/logutil"
    "github.com/amirimatin/go-ftlconn/pkg/observability/metrics"
    "github.com/amirimatin/go-ftlconn/pkg/observability/tracing"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
)

type instrumented struct {
    next   Creator
    kind   Kind
    logger *log.Logger
}

// Instrument wraps next with logging, Prometheus metrics and a tracing span
// per call. Results and errors pass through unchanged.
func Instrument(next Creator, kind Kind, logger *log.Logger) Creator {
    if logger == nil { logger = log.Default() }
    return &instrumented{next: next, kind: kind, logger: logger}
}

func (c *instrumented) CreateConnection(port uint16, target netip.AddrPort) (transport.ConnectionTransport, error) {
    ctx, end := tracing.StartSpan(context.Background(), "connection.create")
    defer end()
    tr, err := c.next.CreateConnection(port, target)
    tracing.Annotate(ctx, err,
        attribute.String("kind", string(c.kind)),
        attribute.Int("port", int(port)),
        attribute.String("target", target.String()),
    )
    if err != nil {
        metrics.CreateFailures.WithLabelValues(string(c.kind), Reason(err)).Inc()
        logutil.Errorw(c.logger, "connection create failed",
            "kind", c.kind, "port", port, "target", target, "reason", Reason(err), "err", err)
        return nil, err
    }
    metrics.SocketsCreated.WithLabelValues(string(c.kind)).Inc()
    logutil.Infow(c.logger, "connection created",
        "kind", c.kind, "local", tr.LocalAddr(), "target", target)
    return tr, nil
}
