package hub

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cursorclip/internal/message"
)

type fakePeer struct {
	id string

	mu   sync.Mutex
	got  []message.Response
	gone bool
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(msg message.Response) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gone {
		return errors.New("closed")
	}
	p.got = append(p.got, msg)
	return nil
}

func (p *fakePeer) received() []message.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]message.Response(nil), p.got...)
}

func TestPublishFansOut(t *testing.T) {
	h := New()
	a, b := &fakePeer{id: "a"}, &fakePeer{id: "b"}
	h.Register(a)
	h.Register(b)

	msg := message.NewItemResponse(message.Preview{ItemID: 1, ContentType: message.ContentText})
	h.Publish(msg)

	assert.Equal(t, []message.Response{msg}, a.received())
	assert.Equal(t, []message.Response{msg}, b.received())
	assert.Equal(t, 2, h.Len())
}

func TestPublishDropsFailedPeers(t *testing.T) {
	h := New()
	alive, dead := &fakePeer{id: "alive"}, &fakePeer{id: "dead", gone: true}
	h.Register(dead)
	h.Register(alive)

	h.Publish(message.HistoryClearedResponse())
	assert.Equal(t, 1, h.Len())
	assert.Len(t, alive.received(), 1)

	h.Publish(message.HistoryClearedResponse())
	assert.Len(t, alive.received(), 2)
}

func TestPublishWithNoPeers(t *testing.T) {
	h := New()
	h.Publish(message.ClipboardSetResponse())
	assert.Zero(t, h.Len())
}

func TestConcurrentRegisterAndPublish(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	peers := make([]*fakePeer, 20)
	for i := range peers {
		peers[i] = &fakePeer{id: fmt.Sprint(i)}
		wg.Add(1)
		go func(p *fakePeer) {
			defer wg.Done()
			h.Register(p)
			h.Publish(message.ClipboardSetResponse())
		}(peers[i])
	}
	wg.Wait()

	require.Equal(t, len(peers), h.Len())
	for _, p := range peers {
		assert.NotEmpty(t, p.received(), p.id)
	}
}
