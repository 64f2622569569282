package selection

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.klb.dev/cursorclip/internal/history"
)

// read fetches every mime of o in order. Types that fail or yield no bytes
// are skipped. m.mu must be held.
func (m *Machine) read(o Offer, mimes []string) history.Payload {
	var p history.Payload
	for _, mime := range mimes {
		data, err := receive(o, mime)
		if err != nil {
			slog.Warn("selection: reading offer", "offer", o.ID(), "mime", mime, "err", err)
			continue
		}
		if len(data) == 0 {
			slog.Debug("selection: empty mime type dropped", "offer", o.ID(), "mime", mime)
			continue
		}
		p.Set(mime, data)
	}
	return p
}

// receive pipes one mime type of o into memory. The read has no timeout: a
// source that never closes its end stalls it.
func receive(o Offer, mime string) ([]byte, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	defer r.Close()

	err = o.Receive(mime, w)
	// our copy of the write end must go so EOF arrives when the writer is done
	_ = w.Close()
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}
