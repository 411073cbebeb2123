//go:build unix

package cli

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "io"
    "log"
    "net"
    "strconv"
    "strings"
    "testing"
    "time"

    "github.com/spf13/cobra"

    "github.com/amirimatin/go-ftlconn/pkg/bootstrap"
)

func TestSendCmd_DeliversPayload(t *testing.T) {
    peer, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
    if err != nil { t.Fatalf("listen: %v", err) }
    defer peer.Close()
    port := peer.LocalAddr().(*net.UDPAddr).Port

    root := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
    AddAll(root)
    root.SetArgs([]string{"send", "--target", "127.0.0.1:" + strconv.Itoa(port), "--payload", "hello", "--count", "2"})
    if err := root.Execute(); err != nil { t.Fatalf("send: %v", err) }

    buf := make([]byte, 32)
    for i := 0; i < 2; i++ {
        _ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
        n, _, err := peer.ReadFromUDP(buf)
        if err != nil { t.Fatalf("read %d: %v", i, err) }
        if string(buf[:n]) != "hello" { t.Fatalf("got %q", buf[:n]) }
    }
}

func TestSendCmd_RequiresTarget(t *testing.T) {
    root := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
    AddAll(root)
    root.SetArgs([]string{"send"})
    if err := root.Execute(); err == nil { t.Fatalf("expected error without --target") }
}

func TestStatusCmd_PrintsSnapshot(t *testing.T) {
    node, err := bootstrap.Run(context.Background(), bootstrap.Config{
        Kind:     "udp",
        MgmtAddr: "127.0.0.1:0",
        Logger:   log.New(io.Discard, "", 0),
    })
    if err != nil { t.Fatalf("run: %v", err) }
    defer node.Close()

    var out bytes.Buffer
    root := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
    AddAll(root)
    root.SetOut(&out)
    root.SetArgs([]string{"status", "--addr", node.MgmtAddr()})
    if err := root.Execute(); err != nil { t.Fatalf("status: %v", err) }

    var snap struct {
        Version   int `json:"version"`
        Endpoints []struct {
            ID string `json:"id"`
        } `json:"endpoints"`
    }
    if err := json.Unmarshal(out.Bytes(), &snap); err != nil { t.Fatalf("decode %q: %v", out.String(), err) }
    if len(snap.Endpoints) != 1 || snap.Endpoints[0].ID != node.Endpoint().ID() {
        t.Fatalf("unexpected snapshot: %s", out.String())
    }
}

func TestStatusCmd_UnknownProto(t *testing.T) {
    root := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
    AddAll(root)
    root.SetOut(io.Discard)
    root.SetArgs([]string{"status", "--mgmt-proto", "smtp", "--timeout", "200ms"})
    if err := root.Execute(); err == nil { t.Fatalf("expected error for unknown protocol") }
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestStatusCmd_ReportsWriteError(t *testing.T) {
    node, err := bootstrap.Run(context.Background(), bootstrap.Config{
        Kind:     "udp",
        MgmtAddr: "127.0.0.1:0",
        Logger:   log.New(io.Discard, "", 0),
    })
    if err != nil { t.Fatalf("run: %v", err) }
    defer node.Close()

    root := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
    AddAll(root)
    root.SetOut(failingWriter{})
    root.SetArgs([]string{"status", "--addr", node.MgmtAddr()})
    err = root.Execute()
    if err == nil || !strings.Contains(err.Error(), "stdout closed") { t.Fatalf("expected write error, got %v", err) }
}
