// Package connection declares the Creator capability: obtain a ready-to-use
// transport bound to a local port without knowing the socket family.
package connection

import (
    "net/netip"

    "github.com/amirimatin/go-ftlconn/pkg/transport"
)

// Kind names the transport family a Creator produces.
type Kind string

const (
    KindUDP Kind = "udp"
    KindTCP Kind = "tcp"
)

// Creator allocates a socket bound to the IPv4 wildcard address on port and
// hands it, together with target, to a new transport. The returned transport
// is exclusively owned by the caller; a Creator keeps no reference to it and
// is safe for concurrent use.
//
// target is forwarded as-is. Port 0 lets the OS choose an ephemeral port.
// On failure no socket remains open.
type Creator interface {
    CreateConnection(port uint16, target netip.AddrPort) (transport.ConnectionTransport, error)
}

// CreatorFunc adapts a function to the Creator interface.
type CreatorFunc func(port uint16, target netip.AddrPort) (transport.ConnectionTransport, error)

func (f CreatorFunc) CreateConnection(port uint16, target netip.AddrPort) (transport.ConnectionTransport, error) {
    return f(port, target)
}
