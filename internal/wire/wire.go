// Package wire handles reading and writing newline-delimited JSON IPC
// messages over a net.Conn.
//
// Wire format:
//
//	<json>\n
//
// Each direction is independent; there is no correlation id. The daemon
// relies on finishing one request (including queueing its reply) before
// reading the next line.
package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.klb.dev/cursorclip/internal/message"
)

const (
	// MaxMessageSize is the largest line we will read (16 MiB).
	MaxMessageSize = 16 * 1024 * 1024

	writeDeadline = 5 * time.Second
)

// ErrMalformed wraps any line that could not be decoded.
var ErrMalformed = errors.New("malformed message")

// Conn wraps a net.Conn with buffered newline-delimited JSON framing.
type Conn struct {
	conn net.Conn
	br   *bufio.Reader
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 64*1024),
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// WriteRequest writes one request line.
func (c *Conn) WriteRequest(req message.Request) error { return c.writeLine(req) }

// WriteResponse writes one response line.
func (c *Conn) WriteResponse(resp message.Response) error { return c.writeLine(resp) }

// ReadRequest reads and decodes one request line.
func (c *Conn) ReadRequest() (*message.Request, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	req, err := message.DecodeRequest(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return req, nil
}

// ReadResponse reads and decodes one response line.
func (c *Conn) ReadResponse() (*message.Response, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	resp, err := message.DecodeResponse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return resp, nil
}

func (c *Conn) writeLine(v any) error {
	raw, err := message.Encode(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_, err = c.conn.Write(line)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}

// readLine returns the next non-empty line without its terminator. Blank
// lines are skipped.
func (c *Conn) readLine() ([]byte, error) {
	for {
		line, err := c.br.ReadBytes('\n')
		if len(line) > MaxMessageSize {
			return nil, fmt.Errorf("%w: line too large (%d bytes)", ErrMalformed, len(line))
		}
		if err != nil {
			// A final unterminated line is still a message.
			if len(bytes.TrimSpace(line)) > 0 && errors.Is(err, io.EOF) {
				return bytes.TrimSpace(line), nil
			}
			return nil, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
}
