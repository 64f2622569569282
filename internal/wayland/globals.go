package wayland

import (
	"errors"
	"sync"

	wl "deedles.dev/wl/client"
	"deedles.dev/wl/wire"
)

// SeatInterface names the wl_seat global.
const SeatInterface = wl.SeatInterface

// Global is one entry of the compositor's registry.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Registry is a wl_registry with the globals it has announced.
type Registry struct {
	*wl.Registry

	mu      sync.Mutex
	globals []Global
}

// GetRegistry creates the registry. Its globals arrive with the next
// RoundTrip.
func (c *Conn) GetRegistry() *Registry {
	r := &Registry{Registry: c.display.GetRegistry()}
	r.Listener = r
	return r
}

// Global implements wl.RegistryListener.
func (r *Registry) Global(name uint32, iface string, version uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals = append(r.globals, Global{Name: name, Interface: iface, Version: version})
}

// GlobalRemove implements wl.RegistryListener.
func (r *Registry) GlobalRemove(name uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, g := range r.globals {
		if g.Name == name {
			r.globals = append(r.globals[:i], r.globals[i+1:]...)
			return
		}
	}
}

// Globals returns a copy of the announced globals.
func (r *Registry) Globals() []Global {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Global(nil), r.globals...)
}

// Find returns the first global implementing iface.
func (r *Registry) Find(iface string) (Global, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.globals {
		if g.Interface == iface {
			return g, true
		}
	}
	return Global{}, false
}

// Seat is a bound wl_seat and the version it was bound at.
type Seat struct {
	*wl.Seat
	Version uint32
}

// BindSeat binds g at no more than maxVersion.
func (r *Registry) BindSeat(g Global, maxVersion uint32) *Seat {
	v := min(g.Version, maxVersion)
	return &Seat{Seat: wl.BindSeat(r.State(), r.Registry, g.Name, v), Version: v}
}

// Release releases the seat where the bound version supports it.
func (s *Seat) Release() {
	if s.Version >= 5 {
		s.Seat.Release()
	}
}

// BindDataControlManager binds g at no more than maxVersion.
func (r *Registry) BindDataControlManager(g Global, maxVersion uint32) *DataControlManagerV1 {
	return BindDataControlManagerV1(r.State(), r.Registry, g.Name, min(g.Version, maxVersion))
}

// IsEventError reports whether err concerns a single event rather than the
// connection: an event for an unknown object or with an unknown opcode.
func IsEventError(err error) bool {
	return errors.As(err, new(wire.UnknownSenderIDError)) || errors.As(err, new(wire.UnknownOpError))
}
