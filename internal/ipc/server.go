package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"go.klb.dev/cursorclip/internal/hub"
	"go.klb.dev/cursorclip/internal/message"
	"go.klb.dev/cursorclip/internal/wire"
)

// outboxSize bounds the replies and pushes queued for one client.
const outboxSize = 64

var (
	errConnClosed = errors.New("ipc: connection closed")
	errOutboxFull = errors.New("ipc: client outbox full")
)

// Backend executes client requests.
type Backend interface {
	History() []message.Preview
	SetClipboardByID(id uint64) error
	ClearHistory()
}

// Server accepts IPC connections and registers each with the hub.
type Server struct {
	backend Backend
	hub     *hub.Hub

	nextID atomic.Uint64
	wg     sync.WaitGroup
}

// NewServer returns a Server answering from b and subscribing clients to h.
func NewServer(b Backend, h *hub.Hub) *Server {
	return &Server{backend: b, hub: h}
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln and
// every open connection and waits for their goroutines.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()

	slog.Info("ipc server listening", "addr", ln.Addr().String())
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("ipc: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, nc)
		}()
	}
}

// client is one connection's hub.Peer. Its outbox is drained by a single
// writer so replies and pushes never interleave mid-line.
type client struct {
	id     string
	conn   io.Closer
	out    chan message.Response
	done   chan struct{}
	closed sync.Once
}

func (c *client) ID() string { return c.id }

// Send queues a push. It never blocks. A client whose outbox is full has
// fallen behind: its connection is closed so it can reconnect and fetch the
// history again, and the error makes the hub forget it.
func (c *client) Send(msg message.Response) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.out <- msg:
	case <-c.done:
		return errConnClosed
	default:
		slog.Warn("ipc client outbox full, disconnecting", "client", c.id, "type", msg.Type)
		c.close()
		_ = c.conn.Close()
		return errOutboxFull
	}
	return nil
}

// reply queues a response to the client's own request, waiting for room.
func (c *client) reply(msg message.Response) bool {
	select {
	case c.out <- msg:
		return true
	case <-c.done:
		return false
	}
}

func (c *client) close() { c.closed.Do(func() { close(c.done) }) }

func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	wc := wire.New(nc)
	c := &client{
		id:   fmt.Sprintf("ipc-%d", s.nextID.Add(1)),
		conn: nc,
		out:  make(chan message.Response, outboxSize),
		done: make(chan struct{}),
	}
	log := slog.With("client", c.id)
	log.Debug("ipc client connected")

	stop := context.AfterFunc(ctx, func() { _ = nc.Close() })
	defer stop()

	s.hub.Register(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(wc, c, log)
	}()

	s.readLoop(wc, c, log)
	c.close()
	<-writerDone
	_ = wc.Close()
	log.Debug("ipc client disconnected")
}

// readLoop handles requests one at a time, queueing each reply before the
// next line is read. A malformed line ends the connection.
func (s *Server) readLoop(wc *wire.Conn, c *client, log *slog.Logger) {
	for {
		req, err := wc.ReadRequest()
		if err != nil {
			switch {
			case errors.Is(err, wire.ErrMalformed):
				log.Warn("ipc: malformed request, closing connection", "err", err)
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			default:
				log.Debug("ipc: read failed", "err", err)
			}
			return
		}
		if !c.reply(s.handle(req)) {
			return
		}
	}
}

// writeLoop drains the outbox. Once the reader is done it flushes whatever
// is still queued and returns.
func (s *Server) writeLoop(wc *wire.Conn, c *client, log *slog.Logger) {
	for {
		select {
		case msg := <-c.out:
			if err := wc.WriteResponse(msg); err != nil {
				log.Debug("ipc: write failed", "err", err)
				c.close()
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.out:
					if err := wc.WriteResponse(msg); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Server) handle(req *message.Request) message.Response {
	switch req.Type {
	case message.RequestGetHistory:
		return message.HistoryResponse(s.backend.History())
	case message.RequestSetClipboardByID:
		if err := s.backend.SetClipboardByID(req.ID); err != nil {
			slog.Info("ipc: set clipboard rejected", "id", req.ID, "err", err)
			return message.ErrorResponse(err.Error())
		}
		return message.ClipboardSetResponse()
	case message.RequestClearHistory:
		s.backend.ClearHistory()
		return message.HistoryClearedResponse()
	}
	return message.ErrorResponse(fmt.Sprintf("unsupported request %q", req.Type))
}
