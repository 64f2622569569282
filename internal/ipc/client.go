package ipc

import (
	"fmt"
	"net"
	"time"

	"go.klb.dev/cursorclip/internal/message"
	"go.klb.dev/cursorclip/internal/wire"
)

// RemoteError is an Error response from the daemon.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Client is a connection to the daemon. It is not safe for concurrent use.
type Client struct {
	wc *wire.Conn

	// OnPush, if set, receives NewItem pushes that arrive while a helper
	// waits for its reply.
	OnPush func(message.Preview)
}

// Dial connects to the daemon listening on path.
func Dial(path string) (*Client, error) {
	nc, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ipc: connect to %s (is the daemon running?): %w", path, err)
	}
	return &Client{wc: wire.New(nc)}, nil
}

// Close closes the connection.
func (c *Client) Close() error { return c.wc.Close() }

// Send writes one request without waiting for the reply.
func (c *Client) Send(req message.Request) error { return c.wc.WriteRequest(req) }

// Recv reads the next message, reply or push.
func (c *Client) Recv() (*message.Response, error) { return c.wc.ReadResponse() }

// GetHistory returns the daemon's history, most recent first.
func (c *Client) GetHistory() ([]message.Preview, error) {
	resp, err := c.call(message.Request{Type: message.RequestGetHistory}, message.ResponseHistory)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SetClipboardByID makes item id the clipboard selection.
func (c *Client) SetClipboardByID(id uint64) error {
	_, err := c.call(message.Request{Type: message.RequestSetClipboardByID, ID: id}, message.ResponseClipboardSet)
	return err
}

// ClearHistory empties the daemon's history.
func (c *Client) ClearHistory() error {
	_, err := c.call(message.Request{Type: message.RequestClearHistory}, message.ResponseHistoryCleared)
	return err
}

// call sends req and waits for a want reply or an Error. Pushes read in the
// meantime go to OnPush.
func (c *Client) call(req message.Request, want message.ResponseType) (*message.Response, error) {
	if err := c.Send(req); err != nil {
		return nil, fmt.Errorf("ipc: send %s: %w", req.Type, err)
	}
	for {
		resp, err := c.Recv()
		if err != nil {
			return nil, fmt.Errorf("ipc: waiting for %s: %w", want, err)
		}
		switch resp.Type {
		case want:
			return resp, nil
		case message.ResponseError:
			return nil, &RemoteError{Message: resp.Message}
		case message.ResponseNewItem:
			if c.OnPush != nil && resp.Item != nil {
				c.OnPush(*resp.Item)
			}
		default:
			return nil, fmt.Errorf("ipc: unexpected %s reply to %s", resp.Type, req.Type)
		}
	}
}
