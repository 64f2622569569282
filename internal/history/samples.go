package history

// SampleTexts seed an empty history during development (--seed-samples).
var SampleTexts = []string{
	"Hello, world Cursor-Clip!",
	"https://github.com/rust-lang/rust",
	"Sample clipboard content for testing the clipboard manager",
	"impl Display for MyStruct {\n    fn fmt(&self, f: &mut fmt::Formatter) -> fmt::Result {\n        write!(f, \"MyStruct\")\n    }\n}",
	"Password4234!Cursor-Clip",
}

// TextPayload wraps s as a single UTF-8 text entry.
func TextPayload(s string) Payload {
	return Payload{{MimeType: textMimeTypes[0], Data: []byte(s)}}
}
