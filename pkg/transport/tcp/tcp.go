package tcp

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log"
    "net"
    "net/netip"

    "github.com/amirimatin/go-ftlconn/pkg/internal/logutil"
    "github.com/amirimatin/go-ftlconn/pkg/observability/metrics"
    "github.com/amirimatin/go-ftlconn/pkg/socket"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
)

const (
    readBufferSize = 4096
    kind           = "tcp"
)

// Transport is a transport.ConnectionTransport over a connected TCP socket.
type Transport struct {
    transport.Base

    conn   net.Conn
    target netip.AddrPort
    logger *log.Logger
}

// New takes ownership of the connected stream socket h and the target address.
// h is invalid after New returns, whether or not it succeeded.
func New(h *socket.Handle, target netip.AddrPort) (*Transport, error) {
    if h.Valid() && h.Type() != socket.Stream {
        _ = h.Close()
        return nil, fmt.Errorf("tcp: want stream socket, got %s", h.Type())
    }
    f, err := h.File("tcp")
    if err != nil { return nil, err }
    // FileConn duplicates the descriptor.
    defer f.Close()
    c, err := net.FileConn(f)
    if err != nil { return nil, fmt.Errorf("tcp: %w", err) }
    return &Transport{conn: c, target: target, logger: log.Default()}, nil
}

// UseLogger sets the logger used for read-loop diagnostics.
func (t *Transport) UseLogger(l *log.Logger) *Transport {
    if l != nil { t.logger = l }
    return t
}

func (t *Transport) Addr() netip.AddrPort { return t.target }

func (t *Transport) LocalAddr() netip.AddrPort {
    ta, ok := t.conn.LocalAddr().(*net.TCPAddr)
    if !ok { return netip.AddrPort{} }
    ap := ta.AddrPort()
    return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// Start launches the read loop. Canceling ctx stops the transport.
func (t *Transport) Start(ctx context.Context) error {
    if err := t.Begin(); err != nil { return err }
    metrics.TransportsActive.WithLabelValues(kind).Inc()
    go t.readLoop()
    go func() {
        select {
        case <-ctx.Done():
            _ = t.Stop()
        case <-t.Done():
        }
    }()
    return nil
}

func (t *Transport) Stop() error {
    if !t.Halt() { return nil }
    return t.conn.Close()
}

func (t *Transport) Write(b []byte) error {
    if t.Stopped() { return transport.ErrClosed }
    n, err := t.conn.Write(b)
    metrics.BytesSent.WithLabelValues(kind).Add(float64(n))
    if err != nil {
        if errors.Is(err, net.ErrClosed) { return transport.ErrClosed }
        return fmt.Errorf("tcp: write to %s: %w", t.target, err)
    }
    return nil
}

func (t *Transport) readLoop() {
    defer t.Exit()
    defer metrics.TransportsActive.WithLabelValues(kind).Dec()
    buf := make([]byte, readBufferSize)
    for {
        n, err := t.conn.Read(buf)
        if n > 0 {
            metrics.BytesReceived.WithLabelValues(kind).Add(float64(n))
            t.Deliver(buf[:n])
        }
        if err != nil {
            if !t.Stopped() {
                if !errors.Is(err, io.EOF) {
                    logutil.Warnf(t.logger, "tcp transport %s: read failed: %v", t.target, err)
                }
                _ = t.conn.Close()
            }
            return
        }
    }
}

var _ transport.ConnectionTransport = (*Transport)(nil)
