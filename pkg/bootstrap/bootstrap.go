package bootstrap

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net/netip"
    "time"

    "github.com/amirimatin/go-ftlconn/pkg/connection"
    conntcp "github.com/amirimatin/go-ftlconn/pkg/connection/tcp"
    connudp "github.com/amirimatin/go-ftlconn/pkg/connection/udp"
    "github.com/amirimatin/go-ftlconn/pkg/endpoint"
    "github.com/amirimatin/go-ftlconn/pkg/internal/logutil"
    "github.com/amirimatin/go-ftlconn/pkg/mgmt"
    mgmtgrpc "github.com/amirimatin/go-ftlconn/pkg/mgmt/grpc"
    "github.com/amirimatin/go-ftlconn/pkg/mgmt/httpjson"
    "github.com/amirimatin/go-ftlconn/pkg/observability/metrics"
    tlsx "github.com/amirimatin/go-ftlconn/pkg/security/tlsconfig"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
)

// Config defines the inputs to open one endpoint and, optionally, serve the
// management API next to it.
type Config struct {
    // Connection
    Kind   string // "udp" (default) or "tcp"
    Port   uint16 // local port, 0 for ephemeral
    Target string // IPv4 ip:port the transport sends to; empty for receive-only

    // Management API (status/healthz/metrics). Empty MgmtAddr disables it.
    MgmtAddr  string
    MgmtProto string // "http" (default) or "grpc"

    // TLS (optional) for management API
    TLSEnable     bool
    TLSCA         string
    TLSCert       string
    TLSKey        string
    TLSServerName string
    TLSSkipVerify bool

    // Logger (optional). If nil, log.Default() is used.
    Logger *log.Logger

    // OnBytes (optional) receives every payload read by the endpoint.
    OnBytes transport.BytesReceivedFunc
}

// Validate checks the configuration without touching the network.
func (c Config) Validate() error {
    if _, err := ParseKind(c.Kind); err != nil { return err }
    if _, err := c.target(); err != nil { return err }
    switch c.MgmtProto {
    case "", "http", "grpc":
    default:
        return fmt.Errorf("bootstrap: unknown management protocol %q", c.MgmtProto)
    }
    return nil
}

// target parses Target; empty means no target (receive-only).
func (c Config) target() (netip.AddrPort, error) {
    if c.Target == "" { return netip.AddrPort{}, nil }
    ap, err := netip.ParseAddrPort(c.Target)
    if err != nil { return netip.AddrPort{}, fmt.Errorf("bootstrap: invalid target %q: %w", c.Target, err) }
    return ap, nil
}

// ParseKind maps a CLI/config value to a connection kind. Empty means UDP.
func ParseKind(s string) (connection.Kind, error) {
    switch s {
    case "", string(connection.KindUDP):
        return connection.KindUDP, nil
    case string(connection.KindTCP):
        return connection.KindTCP, nil
    }
    return "", fmt.Errorf("bootstrap: unknown connection kind %q", s)
}

// NewCreator returns the creator for kind, wrapped with logging, metrics and
// tracing.
func NewCreator(kind connection.Kind, logger *log.Logger) (connection.Creator, error) {
    var c connection.Creator
    switch kind {
    case connection.KindUDP:
        c = connudp.New()
    case connection.KindTCP:
        c = conntcp.New()
    default:
        return nil, fmt.Errorf("bootstrap: unknown connection kind %q", kind)
    }
    return connection.Instrument(c, kind, logger), nil
}

// Node is one running endpoint plus its management server.
type Node struct {
    logger   *log.Logger
    registry *endpoint.Registry
    endpoint *endpoint.Endpoint
    mgmt     mgmt.Server
    closed   chan struct{}
}

// Run opens the endpoint described by cfg and starts the management API. The
// caller is responsible for calling Close when finished.
func Run(ctx context.Context, cfg Config) (*Node, error) {
    if err := cfg.Validate(); err != nil { return nil, err }
    if cfg.Logger == nil { cfg.Logger = log.Default() }
    metrics.Register()

    kind, _ := ParseKind(cfg.Kind)
    target, _ := cfg.target()
    creator, err := NewCreator(kind, cfg.Logger)
    if err != nil { return nil, err }

    n := &Node{logger: cfg.Logger, registry: endpoint.NewRegistry(), closed: make(chan struct{})}
    ep, err := n.registry.Open(ctx, creator, endpoint.Options{
        Kind:    kind,
        Port:    cfg.Port,
        Target:  target,
        OnBytes: cfg.OnBytes,
        OnClosed: func() {
            logutil.Warnf(cfg.Logger, "%s endpoint closed by peer or read failure", kind)
            close(n.closed)
        },
    })
    if err != nil { return nil, err }
    n.endpoint = ep

    if cfg.MgmtAddr != "" {
        srv, err := newMgmtServer(cfg)
        if err != nil { _ = n.Close(); return nil, err }
        status := func(context.Context) ([]byte, error) { return n.registry.Snapshot() }
        if err := srv.Start(ctx, status); err != nil { _ = n.Close(); return nil, err }
        n.mgmt = srv
        logutil.Infof(cfg.Logger, "management %s API listening on %s", mgmtProto(cfg), srv.Addr())
    }
    return n, nil
}

func mgmtProto(cfg Config) string {
    if cfg.MgmtProto == "" { return "http" }
    return cfg.MgmtProto
}

func tlsOptions(cfg Config) tlsx.Options {
    return tlsx.Options{Enable: cfg.TLSEnable, CAFile: cfg.TLSCA, CertFile: cfg.TLSCert, KeyFile: cfg.TLSKey, InsecureSkipVerify: cfg.TLSSkipVerify, ServerName: cfg.TLSServerName}
}

func newMgmtServer(cfg Config) (mgmt.Server, error) {
    srvTLS, err := tlsOptions(cfg).Server()
    if err != nil { return nil, err }
    switch mgmtProto(cfg) {
    case "grpc":
        s := mgmtgrpc.NewServer(cfg.MgmtAddr)
        if srvTLS != nil { s.UseTLS(srvTLS) }
        return s, nil
    default:
        s := httpjson.NewServer(cfg.MgmtAddr, cfg.Logger)
        if srvTLS != nil { s.UseTLS(srvTLS) }
        return s, nil
    }
}

// NewMgmtClient returns a management client for proto with the TLS settings
// of cfg applied.
func NewMgmtClient(cfg Config, proto string, timeout time.Duration) (mgmt.Client, error) {
    cliTLS, err := tlsOptions(cfg).Client()
    if err != nil { return nil, fmt.Errorf("tls client config: %w", err) }
    switch proto {
    case "grpc":
        c := mgmtgrpc.NewClient(timeout)
        if cliTLS != nil { c.UseTLS(cliTLS) }
        return c, nil
    case "http", "":
        c := httpjson.NewClient(timeout)
        if cliTLS != nil { c.UseTLS(cliTLS) }
        return c, nil
    }
    return nil, fmt.Errorf("bootstrap: unknown management protocol %q", proto)
}

// Endpoint returns the node's endpoint.
func (n *Node) Endpoint() *endpoint.Endpoint { return n.endpoint }

// Registry returns the registry holding the node's endpoints.
func (n *Node) Registry() *endpoint.Registry { return n.registry }

// MgmtAddr returns the management listen address, or "" when disabled.
func (n *Node) MgmtAddr() string {
    if n.mgmt == nil { return "" }
    return n.mgmt.Addr()
}

// Closed is closed when the endpoint's transport stops on its own.
func (n *Node) Closed() <-chan struct{} { return n.closed }

// Close stops the management server and every endpoint.
func (n *Node) Close() error {
    var errs []error
    if n.mgmt != nil {
        errs = append(errs, n.mgmt.Stop(context.Background()))
    }
    errs = append(errs, n.registry.Close())
    return errors.Join(errs...)
}
