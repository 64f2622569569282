// Package wayland connects to a Wayland compositor through deedles.dev/wl
// and binds the wlr-data-control clipboard extension.
//
// Requests are written to the socket as soon as they are made. Events are
// handed out by Conn.Events and must be run, in order, on one goroutine;
// every listener runs there, and only that goroutine may create or destroy
// objects.
package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"

	wl "deedles.dev/wl/client"
	"deedles.dev/wl/wire"
	"golang.org/x/sys/unix"
)

const displayID = 1

// ProtocolError is a fatal wl_display.error sent by the compositor.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland: protocol error on object %d (code %d): %s", e.ObjectID, e.Code, e.Message)
}

// Conn is a client connection to a compositor. It is the wire.State of
// every object created through it.
type Conn struct {
	client  *wl.Client
	wc      *wire.Conn
	uc      *net.UnixConn
	display *wl.Display

	mu  sync.Mutex
	err error
}

var _ wire.State = (*Conn)(nil)

// Dial connects to the compositor named by the environment: an inherited
// WAYLAND_SOCKET fd, or $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY.
func Dial() (*Conn, error) {
	if s, ok := os.LookupEnv("WAYLAND_SOCKET"); ok {
		_ = os.Unsetenv("WAYLAND_SOCKET")
		fd, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("wayland: bad WAYLAND_SOCKET %q: %w", s, err)
		}
		f := os.NewFile(uintptr(fd), "WAYLAND_SOCKET")
		defer f.Close()
		nc, err := net.FileConn(f)
		if err != nil {
			return nil, fmt.Errorf("wayland: WAYLAND_SOCKET: %w", err)
		}
		uc, ok := nc.(*net.UnixConn)
		if !ok {
			_ = nc.Close()
			return nil, errors.New("wayland: WAYLAND_SOCKET is not a unix socket")
		}
		return NewConn(uc), nil
	}

	path := wire.SocketPath()
	uc, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	return NewConn(uc), nil
}

// NewConn wraps an established compositor socket. The Conn owns uc.
func NewConn(uc *net.UnixConn) *Conn {
	c := &Conn{uc: uc, wc: wire.NewConn(uc)}
	c.client = wl.NewClient(c.wc)

	// replace the client's display so core requests are sent through c too
	c.display = wl.NewDisplay(c)
	c.display.SetID(displayID)
	c.display.Listener = displayListener{c}
	c.client.Add(c.display)
	return c
}

// Display returns the wl_display object.
func (c *Conn) Display() *wl.Display { return c.display }

// Add registers obj, assigning it an id if it has none.
func (c *Conn) Add(obj wire.Object) { c.client.Add(obj) }

// Get returns the object with the given id, or nil.
func (c *Conn) Get(id uint32) wire.Object { return c.client.Get(id) }

// Enqueue sends a request immediately. A failed write is kept and reported
// by Err.
func (c *Conn) Enqueue(mb *wire.MessageBuilder) {
	if err := mb.Build(c.wc); err != nil {
		c.fail(fmt.Errorf("wayland: send %s: %w", mb.Method, err))
	}
}

// sendFile sends a request whose arguments are one string and f. It
// bypasses wire.MessageBuilder, which keeps a duplicate of every
// descriptor it sends until it is garbage collected: for a receive pipe
// that duplicate would hold the write end open and the read would never
// see EOF.
func (c *Conn) sendFile(sender wire.Object, op uint16, method, arg string, f *os.File) {
	strLen := len(arg) + 1
	padded := (strLen + 3) &^ 3
	size := 8 + 4 + padded

	buf := make([]byte, 0, size)
	buf = binary.NativeEndian.AppendUint32(buf, sender.ID())
	buf = binary.NativeEndian.AppendUint32(buf, uint32(size)<<16|uint32(op))
	buf = binary.NativeEndian.AppendUint32(buf, uint32(strLen))
	buf = append(buf, arg...)
	buf = append(buf, make([]byte, padded-len(arg))...)

	if _, _, err := c.uc.WriteMsgUnix(buf, unix.UnixRights(int(f.Fd())), nil); err != nil {
		c.fail(fmt.Errorf("wayland: send %s: %w", method, err))
	}
}

// Events yields the incoming events. Each must be run, in order, on the
// goroutine that owns the objects. The channel is closed once the
// connection is gone.
func (c *Conn) Events() <-chan func() error { return c.client.Events() }

// RoundTrip runs events until the compositor has handled every request
// sent so far.
func (c *Conn) RoundTrip() error {
	if err := c.client.RoundTrip(); err != nil {
		return fmt.Errorf("wayland: roundtrip: %w", err)
	}
	return c.Err()
}

// Err reports the first fatal error: a protocol error from the compositor
// or a failed write.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Close closes the connection and stops the event queue.
func (c *Conn) Close() error { return c.client.Close() }

type displayListener struct{ c *Conn }

func (l displayListener) Error(objectID, code uint32, message string) {
	l.c.fail(&ProtocolError{ObjectID: objectID, Code: code, Message: message})
}

func (l displayListener) DeleteId(id uint32) { l.c.client.Delete(id) }
