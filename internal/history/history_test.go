package history

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cursorclip/internal/message"
)

type recordingNotifier struct {
	got []message.Response
}

func (r *recordingNotifier) Publish(msg message.Response) { r.got = append(r.got, msg) }

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want message.ContentType
	}{
		{"https://example.com", message.ContentURL},
		{"http://example.com/a b", message.ContentURL},
		{"impl Foo for Bar {}", message.ContentCode},
		{"pub fn main() {}", message.ContentCode},
		{"type T struct {}", message.ContentCode},
		{"/etc/passwd", message.ContentFile},
		{"Xk7!mP9q", message.ContentPassword},
		{"just some words", message.ContentText},
		{"", message.ContentText},
		{"plainword", message.ContentText},
		{"/" + strings.Repeat("a", 300), message.ContentText},
		{strings.Repeat("!", 60), message.ContentText},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestInsertRejectsEmptyPayload(t *testing.T) {
	n := &recordingNotifier{}
	s := New(WithNotifier(n))

	id, ok := s.Insert(nil)
	assert.False(t, ok)
	assert.Zero(t, id)
	assert.Empty(t, s.History())
	assert.Empty(t, n.got)
	assert.Equal(t, uint64(1), s.NextID())
}

func TestInsertOrdersAndClassifies(t *testing.T) {
	s := New(WithClock(fixedClock))

	idA, ok := s.Insert(TextPayload("hello"))
	require.True(t, ok)
	idB, ok := s.Insert(Payload{{MimeType: "image/png", Data: []byte{1, 2, 3, 4}}})
	require.True(t, ok)
	assert.Greater(t, idB, idA)

	got := s.History()
	require.Len(t, got, 2)
	assert.Equal(t, message.Preview{
		ItemID: idB, ContentPreview: "<image/png 4 bytes>", ContentType: message.ContentImage, Timestamp: 1700000000,
	}, got[0])
	assert.Equal(t, message.Preview{
		ItemID: idA, ContentPreview: "hello", ContentType: message.ContentText, Timestamp: 1700000000,
	}, got[1])
}

func TestInsertPreviewRules(t *testing.T) {
	t.Run("image wins over text", func(t *testing.T) {
		s := New()
		p := TextPayload("https://example.com")
		p.Set("image/jpeg", []byte("abc"))
		id, _ := s.Insert(p)
		it, ok := s.Get(id)
		require.True(t, ok)
		assert.Equal(t, "<image/jpeg 3 bytes>", it.Preview)
		assert.Equal(t, message.ContentImage, it.ContentType)
	})

	t.Run("text preview truncated to 200 code points", func(t *testing.T) {
		s := New()
		long := strings.Repeat("é", 250)
		id, _ := s.Insert(TextPayload(long))
		it, _ := s.Get(id)
		assert.Equal(t, 200, len([]rune(it.Preview)))
	})

	t.Run("invalid utf-8 text uses placeholder", func(t *testing.T) {
		s := New()
		id, _ := s.Insert(Payload{{MimeType: "text/plain;charset=utf-8", Data: []byte{0xff, 0xfe}}})
		it, _ := s.Get(id)
		assert.Equal(t, "<text/plain;charset=utf-8 2 bytes>", it.Preview)
		assert.Equal(t, message.ContentText, it.ContentType)
	})

	t.Run("fallback uses first entry as Other", func(t *testing.T) {
		s := New()
		id, _ := s.Insert(Payload{
			{MimeType: "application/x-foo", Data: []byte("12345")},
			{MimeType: "application/x-bar", Data: []byte("1")},
		})
		it, _ := s.Get(id)
		assert.Equal(t, "<application/x-foo 5 bytes>", it.Preview)
		assert.Equal(t, message.ContentOther, it.ContentType)
	})

	t.Run("text classification flows through", func(t *testing.T) {
		s := New()
		id, _ := s.Insert(TextPayload("/etc/passwd"))
		it, _ := s.Get(id)
		assert.Equal(t, message.ContentFile, it.ContentType)
	})
}

func TestInsertTruncatesToCapacity(t *testing.T) {
	s := New()
	var ids []uint64
	for i := 0; i < 101; i++ {
		id, ok := s.Insert(TextPayload(fmt.Sprintf("item %d", i)))
		require.True(t, ok)
		ids = append(ids, id)
	}

	got := s.History()
	require.Len(t, got, DefaultCapacity)
	_, ok := s.Get(ids[0])
	assert.False(t, ok, "oldest entry must be truncated")
	for i, p := range got {
		assert.Equal(t, ids[100-i], p.ItemID)
	}
}

func TestWithCapacity(t *testing.T) {
	s := New(WithCapacity(2))
	for _, txt := range []string{"a", "b", "c"} {
		s.Insert(TextPayload(txt))
	}
	got := s.History()
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ContentPreview)
	assert.Equal(t, "b", got[1].ContentPreview)
}

func TestClearKeepsIDCounter(t *testing.T) {
	s := New()
	s.Insert(TextPayload("a"))
	last, _ := s.Insert(TextPayload("b"))

	s.Clear()
	assert.Empty(t, s.History())
	assert.Equal(t, 0, s.Len())

	next, ok := s.Insert(TextPayload("c"))
	require.True(t, ok)
	assert.Equal(t, last+1, next)
}

func TestInsertNotifies(t *testing.T) {
	n := &recordingNotifier{}
	s := New(WithNotifier(n), WithClock(fixedClock))

	id, _ := s.Insert(TextPayload("hello"))

	require.Len(t, n.got, 1)
	assert.Equal(t, message.NewItemResponse(message.Preview{
		ItemID: id, ContentPreview: "hello", ContentType: message.ContentText, Timestamp: 1700000000,
	}), n.got[0])
}

func TestPayloadSetKeepsOrder(t *testing.T) {
	var p Payload
	p.Set("a", []byte("1"))
	p.Set("b", []byte("2"))
	p.Set("a", []byte("3"))

	assert.Equal(t, []string{"a", "b"}, p.MimeTypes())
	got, ok := p.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("3"), got)
	assert.False(t, p.Has("c"))
}

func TestSampleTextsClassify(t *testing.T) {
	s := New()
	for _, txt := range SampleTexts {
		s.Insert(TextPayload(txt))
	}
	got := s.History()
	require.Len(t, got, len(SampleTexts))
	// most recent first
	assert.Equal(t, message.ContentPassword, got[0].ContentType)
	assert.Equal(t, message.ContentCode, got[1].ContentType)
	assert.Equal(t, message.ContentText, got[2].ContentType)
	assert.Equal(t, message.ContentURL, got[3].ContentType)
	assert.Equal(t, message.ContentText, got[4].ContentType)
}
