package history

// Entry is one MIME representation of a clipboard entry.
type Entry struct {
	MimeType string
	Data     []byte
}

// Payload is an insertion-ordered mapping of MIME type to bytes. Order
// matters: the first entry is the preview fallback and the order in which a
// published source advertises its types.
type Payload []Entry

// Set stores data under mime, replacing an existing entry in place or
// appending a new one.
func (p *Payload) Set(mime string, data []byte) {
	for i := range *p {
		if (*p)[i].MimeType == mime {
			(*p)[i].Data = data
			return
		}
	}
	*p = append(*p, Entry{MimeType: mime, Data: data})
}

// Get returns the bytes stored for mime.
func (p Payload) Get(mime string) ([]byte, bool) {
	for _, e := range p {
		if e.MimeType == mime {
			return e.Data, true
		}
	}
	return nil, false
}

// Has reports whether mime is present.
func (p Payload) Has(mime string) bool {
	_, ok := p.Get(mime)
	return ok
}

// Len returns the number of MIME entries.
func (p Payload) Len() int { return len(p) }

// MimeTypes returns the MIME types in insertion order.
func (p Payload) MimeTypes() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.MimeType
	}
	return out
}
