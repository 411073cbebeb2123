package cli

import (
    "context"
    "encoding/hex"
    "fmt"
    "log"
    "net/netip"
    "os/signal"
    "syscall"
    "time"

    "github.com/spf13/cobra"

    "github.com/amirimatin/go-ftlconn/pkg/bootstrap"
    "github.com/amirimatin/go-ftlconn/pkg/internal/logutil"
    tracing "github.com/amirimatin/go-ftlconn/pkg/observability/tracing"
)

// AddAll attaches the listen/send/status subcommands to the provided root command.
func AddAll(root *cobra.Command) {
    root.AddCommand(NewListenCmd())
    root.AddCommand(NewSendCmd())
    root.AddCommand(NewStatusCmd())
}

type tlsFlags struct {
    enable, skip                bool
    ca, cert, key, serverName   string
}

func (f *tlsFlags) register(cmd *cobra.Command, role string) {
    cmd.Flags().BoolVar(&f.enable, "tls-enable", false, "enable TLS for the management API")
    cmd.Flags().StringVar(&f.ca, "tls-ca", "", "path to CA cert (PEM)")
    cmd.Flags().StringVar(&f.cert, "tls-cert", "", "path to "+role+" certificate (PEM)")
    cmd.Flags().StringVar(&f.key, "tls-key", "", "path to "+role+" private key (PEM)")
    cmd.Flags().BoolVar(&f.skip, "tls-skip-verify", false, "skip server cert verification (DEV ONLY)")
    cmd.Flags().StringVar(&f.serverName, "tls-server-name", "", "expected server name (for TLS validation)")
}

func (f *tlsFlags) apply(cfg *bootstrap.Config) {
    cfg.TLSEnable = f.enable
    cfg.TLSCA = f.ca
    cfg.TLSCert = f.cert
    cfg.TLSKey = f.key
    cfg.TLSSkipVerify = f.skip
    cfg.TLSServerName = f.serverName
}

// NewListenCmd returns the "listen" command: open one endpoint and report
// what it receives until interrupted.
func NewListenCmd() *cobra.Command {
    var (
        kind, target, mgmtAddr, mgmtProto string
        port                              uint16
        traceEnable, dump                 bool
        tf                                tlsFlags
    )
    cmd := &cobra.Command{
        Use:   "listen",
        Short: "Bind a local port and log incoming payloads",
        RunE: func(cmd *cobra.Command, args []string) error {
            ctx, cancel := signalContext()
            defer cancel()

            if traceEnable {
                shutdown, err := tracing.Setup(tracing.Options{Enable: true})
                if err != nil {
                    log.Printf("tracing setup error: %v", err)
                } else {
                    defer func() { _ = shutdown(context.Background()) }()
                }
            }

            logger := log.Default()
            cfg := bootstrap.Config{
                Kind:      kind,
                Port:      port,
                Target:    target,
                MgmtAddr:  mgmtAddr,
                MgmtProto: mgmtProto,
                Logger:    logger,
                OnBytes: func(b []byte) {
                    if dump {
                        logutil.Infof(logger, "received %d bytes:\n%s", len(b), hex.Dump(b))
                        return
                    }
                    logutil.Debugf(logger, "received %d bytes", len(b))
                },
            }
            tf.apply(&cfg)
            n, err := bootstrap.Run(ctx, cfg)
            if err != nil { return err }
            defer n.Close()

            fmt.Printf("listening on %s. Press Ctrl+C to exit.\n", n.Endpoint().Transport().LocalAddr())
            select {
            case <-ctx.Done():
            case <-n.Closed():
                return fmt.Errorf("endpoint closed")
            }
            return nil
        },
    }
    cmd.Flags().StringVar(&kind, "kind", "udp", "connection kind: udp|tcp")
    cmd.Flags().Uint16Var(&port, "port", 0, "local port to bind (0 = OS-assigned)")
    cmd.Flags().StringVar(&target, "target", "", "target ip:port the transport sends to (required for tcp)")
    cmd.Flags().StringVar(&mgmtAddr, "mgmt-addr", ":17950", "management address (tcp), empty to disable")
    cmd.Flags().StringVar(&mgmtProto, "mgmt-proto", "http", "management protocol: http|grpc")
    cmd.Flags().BoolVar(&traceEnable, "trace", false, "enable OpenTelemetry stdout tracing (dev)")
    cmd.Flags().BoolVar(&dump, "dump", false, "hex-dump every received payload")
    tf.register(cmd, "node")
    return cmd
}

// NewSendCmd returns the "send" command: create a connection and write a
// payload to its target.
func NewSendCmd() *cobra.Command {
    var (
        kind, target, payload string
        port                  uint16
        count                 int
        interval              time.Duration
    )
    cmd := &cobra.Command{
        Use:   "send",
        Short: "Create a connection and write a payload to the target",
        RunE: func(cmd *cobra.Command, args []string) error {
            if target == "" { return fmt.Errorf("missing --target") }
            tgt, err := netip.ParseAddrPort(target)
            if err != nil { return fmt.Errorf("invalid --target: %w", err) }
            k, err := bootstrap.ParseKind(kind)
            if err != nil { return err }
            creator, err := bootstrap.NewCreator(k, log.Default())
            if err != nil { return err }
            tr, err := creator.CreateConnection(port, tgt)
            if err != nil { return err }
            defer tr.Stop()
            for i := 0; i < count; i++ {
                if i > 0 && interval > 0 { time.Sleep(interval) }
                if err := tr.Write([]byte(payload)); err != nil { return fmt.Errorf("send error: %w", err) }
            }
            fmt.Printf("sent %d x %d bytes from %s to %s\n", count, len(payload), tr.LocalAddr(), tgt)
            return nil
        },
    }
    cmd.Flags().StringVar(&kind, "kind", "udp", "connection kind: udp|tcp")
    cmd.Flags().Uint16Var(&port, "port", 0, "local port to bind (0 = OS-assigned)")
    cmd.Flags().StringVar(&target, "target", "", "target ip:port (required)")
    cmd.Flags().StringVar(&payload, "payload", "ping", "payload to send")
    cmd.Flags().IntVar(&count, "count", 1, "number of times to send the payload")
    cmd.Flags().DurationVar(&interval, "interval", 0, "delay between sends")
    return cmd
}

// NewStatusCmd returns the "status" command.
func NewStatusCmd() *cobra.Command {
    var (
        addr, mgmtProto string
        timeout         time.Duration
        tf              tlsFlags
    )
    cmd := &cobra.Command{
        Use:   "status",
        Short: "Fetch endpoint status as JSON",
        RunE: func(cmd *cobra.Command, args []string) error {
            var cfg bootstrap.Config
            tf.apply(&cfg)
            client, err := bootstrap.NewMgmtClient(cfg, mgmtProto, timeout)
            if err != nil { return err }
            ctx, cancel := context.WithTimeout(context.Background(), timeout)
            defer cancel()
            data, err := client.GetStatus(ctx, addr)
            if err != nil { return fmt.Errorf("status error: %w", err) }
            if len(data) == 0 || data[len(data)-1] != '\n' { data = append(data, '\n') }
            if _, err := cmd.OutOrStdout().Write(data); err != nil { return fmt.Errorf("write status: %w", err) }
            return nil
        },
    }
    cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:17950", "management address of a node (host:port)")
    cmd.Flags().StringVar(&mgmtProto, "mgmt-proto", "http", "management protocol: http|grpc")
    cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "request timeout")
    tf.register(cmd, "client")
    return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
    return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
