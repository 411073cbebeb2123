//go:build unix

package sysutil

import (
    "fmt"
    "syscall"

    "golang.org/x/sys/unix"
)

// ErrnoToString describes an OS error code for diagnostics, e.g.
// "address already in use (EADDRINUSE)". It never returns an empty string.
func ErrnoToString(code int) string {
    if code <= 0 {
        return fmt.Sprintf("unknown error %d", code)
    }
    errno := syscall.Errno(code)
    desc := errno.Error()
    name := unix.ErrnoName(errno)
    switch {
    case name == "" && desc == "":
        return fmt.Sprintf("unknown error %d", code)
    case name == "":
        return desc
    case desc == "":
        return name
    }
    return fmt.Sprintf("%s (%s)", desc, name)
}
