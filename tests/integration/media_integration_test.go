//go:build integration

package integration

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/amirimatin/go-ftlconn/pkg/bootstrap"
	"github.com/amirimatin/go-ftlconn/pkg/connection"
	conntcp "github.com/amirimatin/go-ftlconn/pkg/connection/tcp"
	connudp "github.com/amirimatin/go-ftlconn/pkg/connection/udp"
)

var quiet = log.New(io.Discard, "", 0)

// A control connection over TCP announces the media port, then media flows
// over UDP between two transports built by the UDP creator.
func TestControlThenMedia(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	ingest, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ingest.Close()

	media, err := bootstrap.Run(ctx, bootstrap.Config{Kind: "udp", Logger: quiet})
	if err != nil {
		t.Fatalf("media node: %v", err)
	}
	defer media.Close()
	mediaPort := media.Endpoint().Transport().LocalAddr().Port()

	go func() {
		c, err := ingest.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		line, _ := bufio.NewReader(c).ReadString('\n')
		if strings.HasPrefix(line, "HELLO") {
			_, _ = c.Write([]byte("200 hi. Use UDP port " + itoa(int(mediaPort)) + "\n"))
		}
	}()

	control, err := conntcp.New().CreateConnection(0, ingest.Addr().(*net.TCPAddr).AddrPort())
	if err != nil {
		t.Fatalf("control: %v", err)
	}
	defer control.Stop()
	replies := make(chan string, 1)
	control.SetOnBytesReceived(func(b []byte) { replies <- string(b) })
	if err := control.Start(ctx); err != nil {
		t.Fatalf("control start: %v", err)
	}
	if err := control.Write([]byte("HELLO\n")); err != nil {
		t.Fatalf("control write: %v", err)
	}
	var reply string
	select {
	case reply = <-replies:
	case <-ctx.Done():
		t.Fatalf("no control reply")
	}
	if !strings.Contains(reply, "Use UDP port "+itoa(int(mediaPort))) {
		t.Fatalf("unexpected reply %q", reply)
	}

	mediaTarget := netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), mediaPort)
	sender, err := connudp.New().CreateConnection(0, mediaTarget)
	if err != nil {
		t.Fatalf("sender: %v", err)
	}
	defer sender.Stop()
	for i := 0; i < 5; i++ {
		if err := sender.Write([]byte("rtp-packet")); err != nil {
			t.Fatalf("media write: %v", err)
		}
	}
	waitUntil(t, 5*time.Second, func() error {
		if media.Endpoint().Info().Packets < 5 {
			return errNotYet
		}
		return nil
	})
}

func TestDocumentedScenario_Port50000(t *testing.T) {
	probe, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 50000})
	if err != nil {
		t.Skipf("port 50000 not free on this host: %v", err)
	}
	probe.Close()

	target := netip.MustParseAddrPort("203.0.113.7:60000")
	c := connudp.New()
	first, err := c.CreateConnection(50000, target)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	defer first.Stop()
	if first.LocalAddr().Port() != 50000 || first.Addr() != target {
		t.Fatalf("unexpected transport %s -> %s", first.LocalAddr(), first.Addr())
	}

	_, err = c.CreateConnection(50000, target)
	if !errors.Is(err, connection.ErrBind) {
		t.Fatalf("second create: expected ErrBind, got %v", err)
	}
}
