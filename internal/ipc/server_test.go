package ipc

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cursorclip/internal/hub"
	"go.klb.dev/cursorclip/internal/message"
)

func TestLaggingClientIsDisconnected(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	c := &client{
		id:   "ipc-1",
		conn: local,
		out:  make(chan message.Response, outboxSize),
		done: make(chan struct{}),
	}
	h := hub.New()
	h.Register(c)

	push := message.NewItemResponse(message.Preview{ItemID: 1, ContentPreview: "x", ContentType: message.ContentText})
	for range outboxSize {
		require.NoError(t, c.Send(push))
	}
	assert.ErrorIs(t, c.Send(push), errOutboxFull)

	select {
	case <-c.done:
	default:
		t.Fatal("client should be marked closed")
	}
	_, err := remote.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF, "connection should be closed")
	assert.ErrorIs(t, c.Send(push), errConnClosed)

	h.Publish(push)
	assert.Equal(t, 0, h.Len())
}
