package history

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"go.klb.dev/cursorclip/internal/message"
)

// LogPayload logs a clipboard event at INFO (mime types) and DEBUG (text
// preview up to 120 chars, or byte size for binary entries). Text that
// classifies as a password is logged by size only.
func LogPayload(event string, id uint64, p Payload) {
	slog.Info(event, "id", id, "types", p.MimeTypes())

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, e := range p {
		if isText(e.MimeType) && utf8.Valid(e.Data) && Classify(string(e.Data)) != message.ContentPassword {
			preview := string(e.Data)
			if utf8.RuneCountInString(preview) > 120 {
				preview = truncateRunes(preview, 120) + "…"
			}
			slog.Debug("clipboard entry", "mime", e.MimeType, "preview", preview)
		} else {
			slog.Debug("clipboard entry", "mime", e.MimeType, "size_bytes", len(e.Data))
		}
	}
}

func isText(mime string) bool {
	for _, m := range textMimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}
