// Package ipc is the local Unix-socket channel between the cursorclip daemon
// and its clients (the history picker UI and the CLI sub-commands).
//
// Every line on the socket is one JSON message. Clients send requests; the
// daemon answers each in order and interleaves NewItem pushes.
package ipc

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"
)

const socketName = "cursor-clip.sock"

// SocketPath returns the IPC socket path: $CURSORCLIP_SOCKET, or
// $TMPDIR/cursor-clip.sock.
func SocketPath() string {
	if s := os.Getenv("CURSORCLIP_SOCKET"); s != "" {
		return s
	}
	return filepath.Join(os.TempDir(), socketName)
}

// IsRunning reports whether a daemon appears to be listening on path. It
// does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path, removing any stale socket file left by
// a crashed run. A live daemon on path is an error.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("ipc: a daemon is already listening on %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ipc: remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen: %w", err)
	}
	// The socket file is removed by the listener on Close.
	ln.(*net.UnixListener).SetUnlinkOnClose(true)
	return ln, nil
}
