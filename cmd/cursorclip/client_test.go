package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.klb.dev/cursorclip/internal/message"
)

func TestOneLine(t *testing.T) {
	assert.Equal(t, "fn main() { }", oneLine("fn main() {\n\t}\n", 40))
	assert.Equal(t, "abcd…", oneLine("abcdefgh", 5))
	assert.Equal(t, "äöü", oneLine("äöü", 3))
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Equal(t, "History is empty.\n", buf.String())

	buf.Reset()
	printHistory(&buf, []message.Preview{
		{ItemID: 2, ContentPreview: "https://example.com", ContentType: message.ContentURL, Timestamp: uint64(time.Now().Unix())},
		{ItemID: 1, ContentPreview: "two\nlines", ContentType: message.ContentText, Timestamp: uint64(time.Now().Unix())},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[2], "Url")
	assert.Contains(t, lines[3], "two lines")
}
