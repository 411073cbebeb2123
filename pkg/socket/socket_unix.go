//go:build unix

package socket

import (
    "net/netip"
    "os"
    "syscall"

    "golang.org/x/sys/unix"
)

// Open allocates a new blocking, close-on-exec IPv4 socket of the given type.
func Open(t Type) (*Handle, error) {
    sotype, proto := unix.SOCK_DGRAM, unix.IPPROTO_UDP
    if t == Stream {
        sotype, proto = unix.SOCK_STREAM, unix.IPPROTO_TCP
    }
    syscall.ForkLock.RLock()
    fd, err := unix.Socket(unix.AF_INET, sotype, proto)
    if err == nil {
        unix.CloseOnExec(fd)
    }
    syscall.ForkLock.RUnlock()
    if err != nil {
        return nil, os.NewSyscallError("socket", err)
    }
    return &Handle{fd: fd, typ: t}, nil
}

// Bind associates the socket with the IPv4 wildcard address on port. Port 0
// lets the OS pick an ephemeral port.
func (h *Handle) Bind(port uint16) error {
    if !h.Valid() { return ErrInvalidHandle }
    // INADDR_ANY is the zero Addr.
    sa := &unix.SockaddrInet4{Port: int(port)}
    if err := unix.Bind(h.fd, sa); err != nil {
        return os.NewSyscallError("bind", err)
    }
    return nil
}

// Connect connects the socket to an IPv4 target, blocking until the
// connection is established or refused.
func (h *Handle) Connect(target netip.AddrPort) error {
    if !h.Valid() { return ErrInvalidHandle }
    addr := target.Addr().Unmap()
    if !addr.Is4() {
        return os.NewSyscallError("connect", unix.EAFNOSUPPORT)
    }
    sa := &unix.SockaddrInet4{Port: int(target.Port()), Addr: addr.As4()}
    err := unix.Connect(h.fd, sa)
    switch err {
    case nil:
        return nil
    case unix.EINTR, unix.EINPROGRESS, unix.EALREADY:
        // An interrupted connect keeps going in the kernel; wait for it.
        return h.awaitConnect()
    }
    return os.NewSyscallError("connect", err)
}

func (h *Handle) awaitConnect() error {
    fds := []unix.PollFd{{Fd: int32(h.fd), Events: unix.POLLOUT}}
    for {
        _, err := unix.Poll(fds, -1)
        if err == unix.EINTR { continue }
        if err != nil { return os.NewSyscallError("poll", err) }
        break
    }
    soerr, err := unix.GetsockoptInt(h.fd, unix.SOL_SOCKET, unix.SO_ERROR)
    if err != nil { return os.NewSyscallError("getsockopt", err) }
    if soerr != 0 {
        return os.NewSyscallError("connect", syscall.Errno(soerr))
    }
    return nil
}

// Close releases the descriptor. It is safe to call more than once and after
// File.
func (h *Handle) Close() error {
    if !h.Valid() { return nil }
    fd := h.fd
    h.fd = invalidFd
    if err := unix.Close(fd); err != nil {
        return os.NewSyscallError("close", err)
    }
    return nil
}
