// Package socket provides an exclusively owned IPv4 socket descriptor.
//
// A Handle is valid from Open until it is either closed or its descriptor is
// handed off with File. Every syscall failure is returned as an
// *os.SyscallError wrapping the errno captured right after the failing call.
package socket

import (
    "errors"
    "os"
)

// Type selects the socket type to allocate.
type Type int

const (
    // Datagram is a SOCK_DGRAM/IPPROTO_UDP socket.
    Datagram Type = iota
    // Stream is a SOCK_STREAM/IPPROTO_TCP socket.
    Stream
)

func (t Type) String() string {
    switch t {
    case Datagram:
        return "udp"
    case Stream:
        return "tcp"
    }
    return "unknown"
}

const invalidFd = -1

// ErrInvalidHandle is returned when a closed or handed-off Handle is used.
var ErrInvalidHandle = errors.New("socket: invalid handle")

// Handle owns one OS socket descriptor.
type Handle struct {
    fd  int
    typ Type
}

// Fd returns the raw descriptor, or -1 once the handle is no longer valid.
func (h *Handle) Fd() int {
    if h == nil { return invalidFd }
    return h.fd
}

// Type returns the socket type the handle was opened with.
func (h *Handle) Type() Type { return h.typ }

// Valid reports whether the handle still owns a descriptor.
func (h *Handle) Valid() bool { return h != nil && h.fd != invalidFd }

// File transfers ownership of the descriptor to an *os.File. The handle is
// invalid afterwards and Close becomes a no-op.
func (h *Handle) File(name string) (*os.File, error) {
    if !h.Valid() { return nil, ErrInvalidHandle }
    f := os.NewFile(uintptr(h.fd), name)
    h.fd = invalidFd
    if f == nil { return nil, ErrInvalidHandle }
    return f, nil
}
