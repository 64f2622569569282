// Package history holds the bounded, most-recent-first clipboard history.
//
// A Store knows nothing about the compositor protocol. It is not safe for
// concurrent use: the owner serialises access behind its own lock.
package history

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.klb.dev/cursorclip/internal/message"
)

const (
	// DefaultCapacity is the number of entries kept before the oldest are
	// truncated.
	DefaultCapacity = 100

	previewRunes = 200
)

// textMimeTypes are the UTF-8 plain-text types used for previews, in
// preference order.
var textMimeTypes = []string{
	"text/plain;charset=utf-8",
	"UTF8_STRING",
	"text/plain",
}

// Notifier receives a NewItem push after every successful insertion.
// Publish must not block.
type Notifier interface {
	Publish(msg message.Response)
}

// Item is one stored clipboard entry. It is immutable once inserted.
type Item struct {
	ID          uint64
	ContentType message.ContentType
	Preview     string
	Timestamp   uint64
	Payload     Payload
}

// ToPreview projects the item without its payload.
func (it Item) ToPreview() message.Preview {
	return message.Preview{
		ItemID:         it.ID,
		ContentPreview: it.Preview,
		ContentType:    it.ContentType,
		Timestamp:      it.Timestamp,
	}
}

// Store is the in-memory clipboard history.
type Store struct {
	items    []Item // most recent first
	nextID   uint64
	capacity int
	notifier Notifier
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides DefaultCapacity. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithNotifier sets the NewItem receiver.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store. Ids start at 1.
func New(opts ...Option) *Store {
	s := &Store{
		nextID:   1,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Insert adds payload as the newest entry and returns its id. An empty
// payload is rejected and leaves the store untouched.
func (s *Store) Insert(payload Payload) (uint64, bool) {
	if len(payload) == 0 {
		return 0, false
	}

	preview, ct := describe(payload)
	item := Item{
		ID:          s.nextID,
		ContentType: ct,
		Preview:     preview,
		Timestamp:   uint64(s.now().Unix()),
		Payload:     payload,
	}
	s.nextID++

	s.items = append(s.items, Item{})
	copy(s.items[1:], s.items)
	s.items[0] = item
	if len(s.items) > s.capacity {
		clear(s.items[s.capacity:])
		s.items = s.items[:s.capacity]
	}

	if s.notifier != nil {
		s.notifier.Publish(message.NewItemResponse(item.ToPreview()))
	}
	return item.ID, true
}

// History returns previews in most-recent-first order.
func (s *Store) History() []message.Preview {
	out := make([]message.Preview, len(s.items))
	for i, it := range s.items {
		out[i] = it.ToPreview()
	}
	return out
}

// Get returns the item with id.
func (s *Store) Get(id uint64) (Item, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Clear empties the store. The id counter keeps counting.
func (s *Store) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Len returns the number of stored items.
func (s *Store) Len() int { return len(s.items) }

// NextID returns the id the next insertion will receive.
func (s *Store) NextID() uint64 { return s.nextID }

// describe picks the preview and content type for a non-empty payload.
func describe(p Payload) (string, message.ContentType) {
	for _, e := range p {
		if strings.HasPrefix(e.MimeType, "image/") {
			return placeholder(e), message.ContentImage
		}
	}

	for _, mime := range textMimeTypes {
		data, ok := p.Get(mime)
		if !ok {
			continue
		}
		preview := placeholder(Entry{MimeType: mime, Data: data})
		if utf8.Valid(data) {
			preview = truncateRunes(string(data), previewRunes)
		}
		return preview, Classify(preview)
	}

	preview := placeholder(p[0])
	ct := Classify(preview)
	if ct == message.ContentText {
		ct = message.ContentOther
	}
	return preview, ct
}

func placeholder(e Entry) string {
	return fmt.Sprintf("<%s %d bytes>", e.MimeType, len(e.Data))
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
