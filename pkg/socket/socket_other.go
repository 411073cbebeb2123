//go:build !unix

package socket

import (
    "errors"
    "net/netip"
    "os"
)

// Open is not supported on this platform.
func Open(t Type) (*Handle, error) {
    return nil, os.NewSyscallError("socket", errors.ErrUnsupported)
}

func (h *Handle) Bind(port uint16) error { return ErrInvalidHandle }

func (h *Handle) Connect(target netip.AddrPort) error { return ErrInvalidHandle }

func (h *Handle) Close() error { return nil }
