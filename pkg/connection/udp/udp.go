package udp

import (
    "net/netip"

    "github.com/amirimatin/go-ftlconn/pkg/connection"
    "github.com/amirimatin/go-ftlconn/pkg/socket"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
    udptransport "github.com/amirimatin/go-ftlconn/pkg/transport/udp"
)

const network = "UDP"

// Creator creates UDP transports. It holds no state; the zero value is ready
// to use.
type Creator struct{}

// New returns a UDP connection.Creator.
func New() *Creator { return &Creator{} }

// CreateConnection binds a new UDP socket to 0.0.0.0:port and hands it to a
// udp transport that sends to target. target is neither validated nor
// connected to.
func (Creator) CreateConnection(port uint16, target netip.AddrPort) (transport.ConnectionTransport, error) {
    // TODO: bind to a specific source interface and support IPv6 once the
    // ingest side can advertise either.
    h, err := socket.Open(socket.Datagram)
    if err != nil {
        return nil, connection.NewError(connection.ErrSocketCreation, network, err)
    }
    if err := h.Bind(port); err != nil {
        _ = h.Close()
        return nil, connection.NewError(connection.ErrBind, network, err)
    }
    tr, err := udptransport.New(h, target)
    if err != nil {
        // The transport duplicates the descriptor, which fails like socket()
        // once the process is out of descriptors.
        _ = h.Close()
        return nil, connection.NewError(connection.ErrSocketCreation, network, err)
    }
    return tr, nil
}

var _ connection.Creator = Creator{}
