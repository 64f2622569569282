package wire

import (
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cursorclip/internal/message"
)

func TestRequestResponseOverPipe(t *testing.T) {
	a, b := net.Pipe()
	client, server := New(a), New(b)
	defer client.Close()
	defer server.Close()

	go func() {
		_ = client.WriteRequest(message.Request{Type: message.RequestSetClipboardByID, ID: 42})
	}()
	req, err := server.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, message.Request{Type: message.RequestSetClipboardByID, ID: 42}, *req)

	go func() {
		_ = server.WriteResponse(message.ErrorResponse("boom"))
	}()
	resp, err := client.ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, message.ErrorResponse("boom"), *resp)
}

func TestReadRequestSkipsBlankLinesAndFlagsMalformed(t *testing.T) {
	a, b := net.Pipe()
	server := New(b)
	defer server.Close()

	go func() {
		_, _ = a.Write([]byte("\n  \n\"GetHistory\"\n{oops}\n"))
		_ = a.Close()
	}()

	req, err := server.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, message.RequestGetHistory, req.Type)

	_, err = server.ReadRequest()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = server.ReadRequest()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequestAcceptsUnterminatedFinalLine(t *testing.T) {
	a, b := net.Pipe()
	server := New(b)
	defer server.Close()

	go func() {
		_, _ = a.Write([]byte(`"ClearHistory"`))
		_ = a.Close()
	}()

	req, err := server.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, message.RequestClearHistory, req.Type)
}
