package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
)

// ErrNotTerminal is returned when raw keyboard input is requested on a
// non-interactive stdin.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// WatchAbortKeys puts f into raw mode and calls onAbort when the operator
// presses Escape or Ctrl+C. Raw mode swallows SIGINT, so Ctrl+C is handled
// here too. The returned func restores the terminal.
func WatchAbortKeys(ctx context.Context, f *os.File, onAbort func()) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, ErrNotTerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, err
	}

	go watchKeys(ctx, f, onAbort)

	return func() {
		_ = term.Restore(fd, state)
	}, nil
}

// watchKeys reads r until ctx is done or r fails. A lone Escape byte is an
// abort; longer reads starting with Escape are cursor or function keys.
func watchKeys(ctx context.Context, r io.Reader, onAbort func()) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		if ctx.Err() != nil || err != nil {
			return
		}
		if isAbortKey(buf[:n]) {
			onAbort()
		}
	}
}

func isAbortKey(b []byte) bool {
	switch {
	case len(b) == 1 && b[0] == keyEscape:
		return true
	case len(b) >= 1 && b[0] == keyCtrlC:
		return true
	}
	return false
}
