package history

import (
	"strings"

	"go.klb.dev/cursorclip/internal/message"
)

const passwordSpecials = "!@#$%^&*()-_=+[]{};:,.<>?/\\|`~"

// Classify infers a content type from preview text. Checks run in priority
// order; lengths are in bytes.
func Classify(s string) message.ContentType {
	switch {
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		return message.ContentURL
	case strings.Contains(s, "fn ") || strings.Contains(s, "impl ") || strings.Contains(s, "struct "):
		return message.ContentCode
	case strings.Contains(s, "/") && !strings.Contains(s, " ") && len(s) < 256:
		return message.ContentFile
	case s != "" && len(s) < 50 && !strings.Contains(s, " ") && strings.ContainsAny(s, passwordSpecials):
		return message.ContentPassword
	default:
		return message.ContentText
	}
}
