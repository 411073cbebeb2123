//go:build unix

package sysutil

import (
    "strings"
    "testing"

    "golang.org/x/sys/unix"
)

func TestErrnoToString_Known(t *testing.T) {
    cases := []struct{
        code int
        name string
    }{
        {int(unix.EADDRINUSE), "EADDRINUSE"},
        {int(unix.EACCES), "EACCES"},
        {int(unix.EMFILE), "EMFILE"},
    }
    for _, c := range cases {
        got := ErrnoToString(c.code)
        if !strings.Contains(got, c.name) {
            t.Fatalf("ErrnoToString(%d) = %q, want it to mention %s", c.code, got, c.name)
        }
        if got != ErrnoToString(c.code) {
            t.Fatalf("ErrnoToString(%d) not stable", c.code)
        }
    }
}

func TestErrnoToString_NeverEmpty(t *testing.T) {
    for code := -1; code < 200; code++ {
        if ErrnoToString(code) == "" {
            t.Fatalf("empty description for %d", code)
        }
    }
    if got := ErrnoToString(0); got != "unknown error 0" {
        t.Fatalf("zero code: got %q", got)
    }
}
