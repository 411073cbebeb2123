package udp

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net"
    "net/netip"

    "github.com/amirimatin/go-ftlconn/pkg/internal/logutil"
    "github.com/amirimatin/go-ftlconn/pkg/observability/metrics"
    "github.com/amirimatin/go-ftlconn/pkg/socket"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
)

// MaxDatagram is the largest payload a single read can return.
const MaxDatagram = 65535

const kind = "udp"

// Transport is a transport.ConnectionTransport over a bound UDP socket.
// Datagrams are accepted from any source; writes always go to the target.
type Transport struct {
    transport.Base

    conn   *net.UDPConn
    target netip.AddrPort
    dst    netip.AddrPort // target with any IPv4-mapped address unmapped
    logger *log.Logger
}

// New takes ownership of the bound datagram socket h and the target address.
// h is invalid after New returns, whether or not it succeeded.
func New(h *socket.Handle, target netip.AddrPort) (*Transport, error) {
    if h.Valid() && h.Type() != socket.Datagram {
        _ = h.Close()
        return nil, fmt.Errorf("udp: want datagram socket, got %s", h.Type())
    }
    f, err := h.File("udp")
    if err != nil { return nil, err }
    // FilePacketConn duplicates the descriptor.
    defer f.Close()
    pc, err := net.FilePacketConn(f)
    if err != nil { return nil, fmt.Errorf("udp: %w", err) }
    uc, ok := pc.(*net.UDPConn)
    if !ok {
        pc.Close()
        return nil, fmt.Errorf("udp: unexpected packet conn %T", pc)
    }
    dst := netip.AddrPortFrom(target.Addr().Unmap(), target.Port())
    return &Transport{conn: uc, target: target, dst: dst, logger: log.Default()}, nil
}

// UseLogger sets the logger used for read-loop diagnostics.
func (t *Transport) UseLogger(l *log.Logger) *Transport {
    if l != nil { t.logger = l }
    return t
}

func (t *Transport) Addr() netip.AddrPort { return t.target }

func (t *Transport) LocalAddr() netip.AddrPort {
    ua, ok := t.conn.LocalAddr().(*net.UDPAddr)
    if !ok { return netip.AddrPort{} }
    ap := ua.AddrPort()
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
    n, err := t.conn.WriteToUDPAddrPort(b, t.dst)
    if err != nil {
        if errors.Is(err, net.ErrClosed) { return transport.ErrClosed }
        return fmt.Errorf("udp: write to %s: %w", t.target, err)
    }
    metrics.BytesSent.WithLabelValues(kind).Add(float64(n))
    return nil
}

func (t *Transport) readLoop() {
    defer t.Exit()
    defer metrics.TransportsActive.WithLabelValues(kind).Dec()
    buf := make([]byte, MaxDatagram)
    for {
        n, _, err := t.conn.ReadFromUDPAddrPort(buf)
        if err != nil {
            if !t.Stopped() {
                logutil.Warnf(t.logger, "udp transport %s: read failed: %v", t.LocalAddr(), err)
                _ = t.conn.Close()
            }
            return
        }
        metrics.BytesReceived.WithLabelValues(kind).Add(float64(n))
        t.Deliver(buf[:n])
    }
}

var _ transport.ConnectionTransport = (*Transport)(nil)
