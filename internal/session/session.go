// Package session owns the compositor connection: it binds the seat and the
// data-control manager, wires the device events into a selection.Machine and
// runs the dispatch loop.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.klb.dev/cursorclip/internal/selection"
	"go.klb.dev/cursorclip/internal/wayland"
)

const (
	maxSeatVersion    = 9
	maxManagerVersion = 2
)

var (
	// ErrDeviceFinished is returned by Run when the compositor invalidates
	// the data device.
	ErrDeviceFinished = errors.New("session: data control device finished")

	// ErrDisconnected is returned by Run when the compositor closes the
	// connection.
	ErrDisconnected = errors.New("session: compositor closed the connection")
)

// MissingGlobalError reports a required global the compositor does not
// advertise. The daemon cannot work without it.
type MissingGlobalError struct {
	Interface string
}

func (e *MissingGlobalError) Error() string {
	switch e.Interface {
	case wayland.SeatInterface:
		return "critical Wayland interface 'wl_seat' is not available: the compositor did not expose an input seat, " +
			"which is required to create a data device for clipboard access"
	case wayland.DataControlManagerV1Interface:
		return "critical Wayland interface 'zwlr_data_control_manager_v1' is not available: the compositor does not " +
			"support the wlr-data-control protocol (GNOME does not), so clipboard monitoring cannot run"
	}
	return fmt.Sprintf("required Wayland interface %q is not available", e.Interface)
}

// Dialer opens the compositor connection.
type Dialer func() (*wayland.Conn, error)

// Session drives one compositor connection. Every Wayland object it creates
// is used only by the goroutine running Run.
type Session struct {
	machine *selection.Machine
	dial    Dialer

	jobs    chan func()
	quit    chan struct{}
	stopped chan struct{}
	closed  sync.Once

	// finished is set by the device's finished event.
	finished bool
}

// New returns a Session feeding m. Dial defaults to wayland.Dial.
func New(m *selection.Machine, dial Dialer) *Session {
	if dial == nil {
		dial = wayland.Dial
	}
	return &Session{
		machine: m,
		dial:    dial,
		jobs:    make(chan func()),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// binding holds the objects bound so far. Any of them may be nil.
type binding struct {
	seat    *wayland.Seat
	manager *wayland.DataControlManagerV1
	device  *wayland.DataControlDeviceV1
}

// Run connects, binds and dispatches until Close is called or the
// connection fails. Whatever was bound is torn down before it returns. It
// must not be called more than once.
func (s *Session) Run() error {
	defer close(s.stopped)

	select {
	case <-s.quit:
		return nil
	default:
	}

	conn, err := s.dial()
	if err != nil {
		return fmt.Errorf("connect to compositor: %w", err)
	}
	defer conn.Close()

	// until the loop is watching quit, Close interrupts setup by closing
	// the connection
	setupDone := make(chan struct{})
	go func() {
		select {
		case <-s.quit:
			_ = conn.Close()
		case <-setupDone:
		}
	}()

	b := &binding{}
	defer s.teardown(conn, b)

	err = s.setup(conn, b)
	close(setupDone)
	if err != nil {
		if s.quitting() {
			return nil
		}
		return err
	}
	return s.loop(conn)
}

func (s *Session) setup(conn *wayland.Conn, b *binding) error {
	reg := conn.GetRegistry()
	if err := conn.RoundTrip(); err != nil {
		return fmt.Errorf("registry roundtrip: %w", err)
	}

	seatGlobal, ok := reg.Find(wayland.SeatInterface)
	if !ok {
		return &MissingGlobalError{Interface: wayland.SeatInterface}
	}
	mgrGlobal, ok := reg.Find(wayland.DataControlManagerV1Interface)
	if !ok {
		return &MissingGlobalError{Interface: wayland.DataControlManagerV1Interface}
	}

	b.seat = reg.BindSeat(seatGlobal, maxSeatVersion)
	b.manager = reg.BindDataControlManager(mgrGlobal, maxManagerVersion)
	b.device = b.manager.GetDataDevice(b.seat.Seat)
	b.device.Listener = &device{s: s, conn: conn}
	if err := conn.Err(); err != nil {
		return fmt.Errorf("bind: %w", err)
	}

	s.machine.Bind(&boundProtocol{s: s, conn: conn, manager: b.manager, device: b.device})
	slog.Info("wayland clipboard monitor initialized",
		"seat_version", b.seat.Version,
		"manager_version", min(mgrGlobal.Version, maxManagerVersion))
	return nil
}

// loop runs compositor events and handed-over jobs until Close, a fatal
// error or the device's finished event.
func (s *Session) loop(conn *wayland.Conn) error {
	events := conn.Events()
	for {
		select {
		case <-s.quit:
			return nil
		case job := <-s.jobs:
			job()
		case ev, ok := <-events:
			if !ok {
				if s.quitting() {
					return nil
				}
				if err := conn.Err(); err != nil {
					return err
				}
				return ErrDisconnected
			}
			if err := ev(); err != nil {
				if !wayland.IsEventError(err) {
					return fmt.Errorf("dispatch: %w", err)
				}
				slog.Debug("wayland: event dropped", "err", err)
			}
		}
		if err := conn.Err(); err != nil {
			return err
		}
		if s.finished {
			return ErrDeviceFinished
		}
	}
}

func (s *Session) quitting() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// Close makes Run tear the session down and return nil. It does not wait.
func (s *Session) Close() {
	s.closed.Do(func() { close(s.quit) })
}

// teardown destroys the bound objects in dependency order. Requests on a
// failed connection are skipped; the machine is released regardless.
func (s *Session) teardown(conn *wayland.Conn, b *binding) {
	live := conn.Err() == nil
	if live && b.device != nil {
		b.device.Destroy()
	}
	s.machine.Release()
	if live && b.manager != nil {
		b.manager.Destroy()
	}
	if live && b.seat != nil {
		b.seat.Release()
	}
	if err := conn.Err(); err != nil {
		slog.Debug("teardown: connection failed", "err", err)
	}
}

var (
	_ wayland.DataControlDeviceV1Listener = (*device)(nil)
	_ wayland.DataControlOfferV1Listener  = (*offer)(nil)
	_ wayland.DataControlSourceV1Listener = (*source)(nil)
	_ selection.Offer                     = (*offer)(nil)
	_ selection.Source                    = (*source)(nil)
	_ selection.Protocol                  = (*boundProtocol)(nil)
)

// device routes data device events into the machine.
type device struct {
	s    *Session
	conn *wayland.Conn
}

func (d *device) DataOffer(id *wayland.DataControlOfferV1) {
	o := &offer{conn: d.conn, obj: id, machine: d.s.machine}
	id.Listener = o
	d.s.machine.OnDataOffer(o)
}

func (d *device) Selection(id *wayland.DataControlOfferV1) {
	if id == nil {
		d.s.machine.OnSelection(nil)
		return
	}
	o, ok := id.Listener.(*offer)
	if !ok {
		slog.Warn("wayland: selection names an unannounced offer", "offer", id.ID())
		return
	}
	d.s.machine.OnSelection(o)
}

func (d *device) PrimarySelection(id *wayland.DataControlOfferV1) {
	if id == nil {
		d.s.machine.OnPrimarySelection(nil)
		return
	}
	if o, ok := id.Listener.(*offer); ok {
		d.s.machine.OnPrimarySelection(o)
		return
	}
	id.Destroy()
}

func (d *device) Finished() {
	slog.Error("wayland: data control device finished")
	d.s.finished = true
}

// offer is a selection.Offer over a data-control offer, and that offer's
// listener.
type offer struct {
	conn    *wayland.Conn
	obj     *wayland.DataControlOfferV1
	machine *selection.Machine
}

func (o *offer) ID() uint32 { return o.obj.ID() }

func (o *offer) Receive(mime string, w *os.File) error {
	o.obj.Receive(mime, w)
	return o.conn.Err()
}

func (o *offer) Destroy() error {
	o.obj.Destroy()
	return o.conn.Err()
}

func (o *offer) Offer(mime string) { o.machine.OnOfferMime(o, mime) }

// source is a selection.Source over a data-control source, and that
// source's listener.
type source struct {
	conn    *wayland.Conn
	obj     *wayland.DataControlSourceV1
	machine *selection.Machine
}

func (src *source) ID() uint32 { return src.obj.ID() }

func (src *source) Offer(mime string) error {
	src.obj.Offer(mime)
	return src.conn.Err()
}

func (src *source) Destroy() error {
	src.obj.Destroy()
	return src.conn.Err()
}

func (src *source) Send(mime string, fd *os.File) { src.machine.OnSend(src, mime, fd) }

func (src *source) Cancelled() { src.machine.OnCancelled(src) }

// boundProtocol adapts the bound objects to selection.Protocol.
type boundProtocol struct {
	s       *Session
	conn    *wayland.Conn
	manager *wayland.DataControlManagerV1
	device  *wayland.DataControlDeviceV1
}

func (p *boundProtocol) CreateSource() (selection.Source, error) {
	obj := p.manager.CreateDataSource()
	src := &source{conn: p.conn, obj: obj, machine: p.s.machine}
	obj.Listener = src
	return src, p.conn.Err()
}

func (p *boundProtocol) SetSelection(src selection.Source) error {
	ds, ok := src.(*source)
	if !ok {
		return fmt.Errorf("session: foreign source %T", src)
	}
	p.device.SetSelection(ds.obj)
	return p.conn.Err()
}

// Do runs f on the goroutine running Run. Once Run has stopped it returns
// selection.ErrNotReady without running f.
func (p *boundProtocol) Do(f func() error) error {
	done := make(chan error, 1)
	select {
	case p.s.jobs <- func() { done <- f() }:
	case <-p.s.stopped:
		return selection.ErrNotReady
	}
	return <-done
}
