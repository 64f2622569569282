// Package selection is the clipboard state machine driven by compositor
// events and by IPC requests.
//
// A Machine observes external selections, reads their payloads into the
// history store and re-publishes them under its own data source so the
// content outlives the application that copied it. Every handler and every
// IPC operation runs as one critical section under the Machine's lock.
package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.klb.dev/cursorclip/internal/history"
	"go.klb.dev/cursorclip/internal/message"
)

var (
	// ErrNotFound is matched by errors.Is for an unknown item id.
	ErrNotFound = errors.New("clipboard item not found")

	// ErrNotReady is returned before the protocol objects are bound.
	ErrNotReady = errors.New("Wayland clipboard objects not available yet")
)

// NotFoundError reports a SetClipboardByID for an id not in the history.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No clipboard item found with ID: %d", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Offer is a compositor offer of the current selection. Offers are
// compared by identity: the compositor reuses the ids of destroyed offers.
type Offer interface {
	ID() uint32
	// Receive asks for mime to be written into w. The caller keeps w.
	Receive(mime string, w *os.File) error
	Destroy() error
}

// Source is a data source the Machine publishes.
type Source interface {
	ID() uint32
	Offer(mime string) error
	Destroy() error
}

// Protocol is the bound compositor side. Its objects belong to the
// goroutine that dispatches compositor events: handlers run there, and
// work started elsewhere is handed over with Do.
type Protocol interface {
	CreateSource() (Source, error)
	SetSelection(src Source) error
	// Do runs f on the dispatching goroutine and returns its error.
	Do(f func() error) error
}

// Options configures a Machine.
type Options struct {
	// MonitorOnly records selections without taking them over.
	MonitorOnly bool
}

// Machine is the selection state machine.
type Machine struct {
	mu sync.Mutex

	store *history.Store
	opts  Options
	proto Protocol

	slot slot
	// offers maps each announced offer to its MIME types.
	offers map[Offer][]string
	// currentOffer is the offer last named by a selection event; nil when
	// the selection is empty.
	currentOffer Offer
}

// New returns a Machine over store. It stays unbound, and rejects
// SetClipboardByID, until Bind is called.
func New(store *history.Store, opts Options) *Machine {
	return &Machine{
		store:  store,
		opts:   opts,
		slot:   unowned{},
		offers: make(map[Offer][]string),
	}
}

// Bind attaches the protocol objects.
func (m *Machine) Bind(p Protocol) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proto = p
}

// Release destroys the published source and any unresolved offers, and
// detaches the protocol. It runs on the dispatching goroutine.
func (m *Machine) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if src := m.slot.current(); src != nil {
		if err := src.Destroy(); err != nil {
			slog.Warn("selection: destroying source", "source", src.ID(), "err", err)
		}
	}
	m.slot = unowned{}
	m.dropOffers(nil)
	m.currentOffer = nil
	m.proto = nil
}

// History returns a snapshot of the history previews.
func (m *Machine) History() []message.Preview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.History()
}

// ClearHistory empties the history. The published source, if any, keeps
// serving until it is cancelled; its item is simply gone.
func (m *Machine) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Clear()
	slog.Info("history cleared")
}

// SetClipboardByID publishes the stored item id as the selection. The
// publish itself runs on the dispatching goroutine.
func (m *Machine) SetClipboardByID(id uint64) error {
	m.mu.Lock()
	_, ok := m.store.Get(id)
	proto := m.proto
	m.mu.Unlock()

	if !ok {
		return &NotFoundError{ID: id}
	}
	if proto == nil {
		return ErrNotReady
	}
	return proto.Do(func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.publish(id)
	})
}

// Seed inserts texts as history entries, oldest first.
func (m *Machine) Seed(texts []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range texts {
		m.store.Insert(history.TextPayload(s))
	}
}

// OnDataOffer opens an empty MIME list for a newly announced offer.
func (m *Machine) OnDataOffer(o Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[o] = nil
}

// OnOfferMime records a MIME type announced for o. Video types are not
// collected.
func (m *Machine) OnOfferMime(o Offer, mime string) {
	if strings.HasPrefix(mime, "video/") {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mimes, ok := m.offers[o]; ok {
		m.offers[o] = append(mimes, mime)
	}
}

// OnSelection handles a change of the clipboard selection. o is nil when
// the selection was cleared.
func (m *Machine) OnSelection(o Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o == nil {
		m.currentOffer = nil
		return
	}
	id := o.ID()

	switch s := m.slot.(type) {
	case publishPending:
		// the echo of our own publish: reading it would need the dispatch
		// loop to serve our source first
		m.slot = owned(s)
		m.currentOffer = o
		slog.Debug("selection: publish confirmed", "item", s.itemID, "offer", id)
		m.discard(o)
		return
	case owned:
		m.currentOffer = o
		slog.Debug("selection: suppressed while owned", "item", s.itemID, "offer", id)
		m.discard(o)
		return
	}

	if o == m.currentOffer {
		return
	}
	m.currentOffer = o
	if m.proto == nil {
		m.discard(o)
		return
	}

	mimes := m.offers[o]
	payload := m.read(o, mimes)
	m.dropOffers(o)
	m.discard(o)

	itemID, ok := m.store.Insert(payload)
	if !ok {
		slog.Debug("selection: offer produced no data", "offer", id, "mimes", mimes)
		return
	}
	history.LogPayload("copied", itemID, payload)

	if m.opts.MonitorOnly {
		return
	}
	if err := m.publish(itemID); err != nil {
		slog.Error("selection: taking over selection", "item", itemID, "err", err)
	}
}

// OnPrimarySelection discards primary selection offers unread.
func (m *Machine) OnPrimarySelection(o Offer) {
	if o == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard(o)
}

// OnSend serves a paste request for mime from one of our sources. w is
// always closed.
func (m *Machine) OnSend(src Source, mime string, w *os.File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer w.Close()

	cur := m.slot.current()
	if cur == nil || cur != src {
		slog.Warn("selection: send for a stale source", "source", src.ID(), "mime", mime)
		return
	}
	itemID := m.slot.item()
	item, ok := m.store.Get(itemID)
	if !ok {
		slog.Warn("selection: published item no longer in history", "item", itemID, "mime", mime)
		return
	}
	data, ok := item.Payload.Get(mime)
	if !ok {
		slog.Warn("selection: published item lacks mime type", "item", itemID, "mime", mime)
		return
	}
	if _, err := w.Write(data); err != nil {
		slog.Warn("selection: serving paste", "item", itemID, "mime", mime, "err", err)
		return
	}
	slog.Debug("selection: served paste", "item", itemID, "mime", mime, "bytes", len(data))
}

// OnCancelled handles loss of the selection by src. The source is destroyed
// whether or not it is the current one.
func (m *Machine) OnCancelled(src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.slot.current(); cur != nil && cur == src {
		slog.Debug("selection: ownership lost", "item", m.slot.item(), "source", src.ID())
		m.slot = unowned{}
	}
	if err := src.Destroy(); err != nil {
		slog.Warn("selection: destroying cancelled source", "source", src.ID(), "err", err)
	}
}

// publish makes item id the selection under a fresh source, replacing any
// source already held. m.mu must be held.
func (m *Machine) publish(id uint64) error {
	item, ok := m.store.Get(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	if m.proto == nil {
		return ErrNotReady
	}

	if old := m.slot.current(); old != nil {
		if err := old.Destroy(); err != nil {
			slog.Warn("selection: destroying previous source", "source", old.ID(), "err", err)
		}
	}
	m.slot = unowned{}

	src, err := m.proto.CreateSource()
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	for _, mime := range item.Payload.MimeTypes() {
		if err := src.Offer(mime); err != nil {
			_ = src.Destroy()
			return fmt.Errorf("offer %s: %w", mime, err)
		}
	}
	if err := m.proto.SetSelection(src); err != nil {
		_ = src.Destroy()
		return fmt.Errorf("set selection: %w", err)
	}
	m.slot = publishPending{source: src, itemID: id}
	slog.Info("selection: published", "item", id, "source", src.ID(), "type", item.ContentType)
	return nil
}

// discard destroys an offer that will not be read again.
func (m *Machine) discard(o Offer) {
	delete(m.offers, o)
	if err := o.Destroy(); err != nil {
		slog.Warn("selection: destroying offer", "offer", o.ID(), "err", err)
	}
}

// dropOffers clears the offer table, destroying every offer except keep.
func (m *Machine) dropOffers(keep Offer) {
	for o := range m.offers {
		if o == keep {
			continue
		}
		if err := o.Destroy(); err != nil {
			slog.Debug("selection: destroying stale offer", "offer", o.ID(), "err", err)
		}
	}
	clear(m.offers)
}
