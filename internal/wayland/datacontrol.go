package wayland

import (
	"fmt"
	"os"

	wl "deedles.dev/wl/client"
	"deedles.dev/wl/wire"
)

// Bindings for wlr-data-control-unstable-v1, laid out as wlgen lays out
// generated code. They differ from wlgen output in three places: a null
// object argument reaches the listener as nil instead of being added to the
// state, a destroyed object stops calling its listener, and a send event
// with no listener closes its fd.

const (
	DataControlManagerV1Interface = "zwlr_data_control_manager_v1"
	DataControlManagerV1Version   = 2
)

// This interface is a manager that allows creating per-seat data device
// controls.
type DataControlManagerV1 struct {
	// OnDelete is called when the object is removed from the tracking
	// system.
	OnDelete func()

	state wire.State
	id    uint32
}

// NewDataControlManagerV1 returns a newly instantiated DataControlManagerV1.
func NewDataControlManagerV1(state wire.State) *DataControlManagerV1 {
	return &DataControlManagerV1{state: state}
}

func BindDataControlManagerV1(state wire.State, registry wire.Binder, name, version uint32) *DataControlManagerV1 {
	obj := NewDataControlManagerV1(state)
	state.Add(obj)
	registry.Bind(name, wire.NewID{Interface: DataControlManagerV1Interface, Version: version, ID: obj.ID()})
	return obj
}

func (obj *DataControlManagerV1) State() wire.State {
	return obj.state
}

func (obj *DataControlManagerV1) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{
		Interface: "zwlr_data_control_manager_v1",
		Type:      "event",
		Op:        msg.Op(),
	}
}

func (obj *DataControlManagerV1) ID() uint32 {
	return obj.id
}

func (obj *DataControlManagerV1) SetID(id uint32) {
	obj.id = id
}

func (obj *DataControlManagerV1) Delete() {
	if obj.OnDelete != nil {
		obj.OnDelete()
	}
}

func (obj *DataControlManagerV1) String() string {
	return fmt.Sprintf("%v(%v)", "zwlr_data_control_manager_v1", obj.id)
}

func (obj *DataControlManagerV1) MethodName(op uint16) string {
	return "unknown method"
}

func (obj *DataControlManagerV1) Interface() string {
	return DataControlManagerV1Interface
}

func (obj *DataControlManagerV1) Version() uint32 {
	return DataControlManagerV1Version
}

// Create a new data source.
func (obj *DataControlManagerV1) CreateDataSource() (id *DataControlSourceV1) {
	builder := wire.NewMessage(obj, 0)

	id = NewDataControlSourceV1(obj.state)
	obj.state.Add(id)
	builder.WriteObject(id)

	builder.Method = "create_data_source"
	builder.Args = []any{id}
	obj.state.Enqueue(builder)
	return id
}

// Create a data device that can be used to manage a seat's selection.
func (obj *DataControlManagerV1) GetDataDevice(seat *wl.Seat) (id *DataControlDeviceV1) {
	builder := wire.NewMessage(obj, 1)

	id = NewDataControlDeviceV1(obj.state)
	obj.state.Add(id)
	builder.WriteObject(id)
	builder.WriteObject(seat)

	builder.Method = "get_data_device"
	builder.Args = []any{id, seat}
	obj.state.Enqueue(builder)
	return id
}

// All objects created by the manager will still remain valid, until their
// appropriate destroy request has been called.
func (obj *DataControlManagerV1) Destroy() {
	builder := wire.NewMessage(obj, 2)

	builder.Method = "destroy"
	builder.Args = []any{}
	obj.state.Enqueue(builder)
}

const (
	DataControlDeviceV1Interface = "zwlr_data_control_device_v1"
	DataControlDeviceV1Version   = 2
)

// DataControlDeviceV1Listener is a type that can respond to incoming
// messages for a DataControlDeviceV1 object.
type DataControlDeviceV1Listener interface {
	// The data_offer event introduces a new wlr_data_control_offer object,
	// which will subsequently be used in either the
	// wlr_data_control_device.selection event (for the regular clipboard
	// selections) or the wlr_data_control_device.primary_selection event
	// (for the primary clipboard selections). Immediately following the
	// wlr_data_control_device.data_offer event, the new data_offer object
	// will send out wlr_data_control_offer.offer events to describe the MIME
	// types it offers.
	DataOffer(id *DataControlOfferV1)

	// The selection event is sent out to notify the client of a new
	// wlr_data_control_offer for the selection for this device. The
	// wlr_data_control_device.data_offer and the wlr_data_control_offer.offer
	// events are sent out immediately before this event to introduce the data
	// offer object. The selection event is sent to a client when a new
	// selection is set. The wlr_data_control_offer is valid until a new
	// wlr_data_control_offer or NULL is received. The client must destroy the
	// previous selection wlr_data_control_offer, if any, upon receiving this
	// event.
	//
	// The first selection event is sent upon binding the
	// wlr_data_control_device object.
	Selection(id *DataControlOfferV1)

	// This data control object is no longer valid and should be destroyed by
	// the client.
	Finished()

	// The primary_selection event is sent out to notify the client of a new
	// wlr_data_control_offer for the primary selection for this device.
	PrimarySelection(id *DataControlOfferV1)
}

// This interface allows a client to manage a seat's selection.
//
// When the seat is destroyed, this object becomes inert.
type DataControlDeviceV1 struct {
	// Listener's methods are called by incoming messages from the
	// remote end via Dispatch. If it is nil, messages are silently
	// ignored.
	Listener DataControlDeviceV1Listener

	// OnDelete is called when the object is removed from the tracking
	// system.
	OnDelete func()

	state wire.State
	id    uint32
}

// NewDataControlDeviceV1 returns a newly instantiated DataControlDeviceV1.
func NewDataControlDeviceV1(state wire.State) *DataControlDeviceV1 {
	return &DataControlDeviceV1{state: state}
}

func (obj *DataControlDeviceV1) State() wire.State {
	return obj.state
}

func (obj *DataControlDeviceV1) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		id := NewDataControlOfferV1(obj.state)
		id.SetID(msg.ReadUint())

		if err := msg.Err(); err != nil {
			return err
		}
		obj.state.Add(id)

		if obj.Listener == nil {
			return nil
		}
		obj.Listener.DataOffer(
			id,
		)
		return nil

	case 1:
		id, _ := obj.state.Get(msg.ReadUint()).(*DataControlOfferV1)

		if err := msg.Err(); err != nil {
			return err
		}

		if obj.Listener == nil {
			return nil
		}
		obj.Listener.Selection(
			id,
		)
		return nil

	case 2:
		if err := msg.Err(); err != nil {
			return err
		}

		if obj.Listener == nil {
			return nil
		}
		obj.Listener.Finished()
		return nil

	case 3:
		id, _ := obj.state.Get(msg.ReadUint()).(*DataControlOfferV1)

		if err := msg.Err(); err != nil {
			return err
		}

		if obj.Listener == nil {
			return nil
		}
		obj.Listener.PrimarySelection(
			id,
		)
		return nil
	}

	return wire.UnknownOpError{
		Interface: "zwlr_data_control_device_v1",
		Type:      "event",
		Op:        msg.Op(),
	}
}

func (obj *DataControlDeviceV1) ID() uint32 {
	return obj.id
}

func (obj *DataControlDeviceV1) SetID(id uint32) {
	obj.id = id
}

func (obj *DataControlDeviceV1) Delete() {
	if obj.OnDelete != nil {
		obj.OnDelete()
	}
}

func (obj *DataControlDeviceV1) String() string {
	return fmt.Sprintf("%v(%v)", "zwlr_data_control_device_v1", obj.id)
}

func (obj *DataControlDeviceV1) MethodName(op uint16) string {
	switch op {
	case 0:
		return "data_offer"

	case 1:
		return "selection"

	case 2:
		return "finished"

	case 3:
		return "primary_selection"
	}

	return "unknown method"
}

func (obj *DataControlDeviceV1) Interface() string {
	return DataControlDeviceV1Interface
}

func (obj *DataControlDeviceV1) Version() uint32 {
	return DataControlDeviceV1Version
}

// This request asks the compositor to set the selection to the data from
// the source on behalf of the client.
//
// The given source may not be used in any further set_selection or
// set_primary_selection requests. Attempting to use a previously used
// source is a protocol error.
//
// To unset the selection, set the source to NULL.
func (obj *DataControlDeviceV1) SetSelection(source *DataControlSourceV1) {
	builder := wire.NewMessage(obj, 0)

	builder.WriteObject(source)

	builder.Method = "set_selection"
	builder.Args = []any{source}
	obj.state.Enqueue(builder)
}

// Destroys the data device object.
func (obj *DataControlDeviceV1) Destroy() {
	builder := wire.NewMessage(obj, 1)

	builder.Method = "destroy"
	builder.Args = []any{}
	obj.state.Enqueue(builder)
	obj.Listener = nil
}

// This request asks the compositor to set the primary selection to the
// data from the source on behalf of the client.
//
// To unset the primary selection, set the source to NULL.
//
// The compositor will ignore this request if it does not support primary
// selection.
func (obj *DataControlDeviceV1) SetPrimarySelection(source *DataControlSourceV1) {
	builder := wire.NewMessage(obj, 2)

	builder.WriteObject(source)

	builder.Method = "set_primary_selection"
	builder.Args = []any{source}
	obj.state.Enqueue(builder)
}

type DataControlDeviceV1Error int64

const (
	// source given to set_selection or set_primary_selection was already used before
	DataControlDeviceV1ErrorUsedSource DataControlDeviceV1Error = 1
)

func (enum DataControlDeviceV1Error) String() string {
	switch enum {
	case 1:
		return "DataControlDeviceV1ErrorUsedSource"
	}

	return "<invalid DataControlDeviceV1Error>"
}

const (
	DataControlSourceV1Interface = "zwlr_data_control_source_v1"
	DataControlSourceV1Version   = 1
)

// DataControlSourceV1Listener is a type that can respond to incoming
// messages for a DataControlSourceV1 object.
type DataControlSourceV1Listener interface {
	// Request for data from the client. Send the data as the specified MIME
	// type over the passed file descriptor, then close it.
	Send(mimeType string, fd *os.File)

	// This data source is no longer valid. The data source has been replaced
	// by another data source.
	//
	// The client should clean up and destroy this data source.
	Cancelled()
}

// The wlr_data_control_source object is the source side of a
// wlr_data_control_offer. It is created by the source client in a data
// transfer and provides a way to describe the offered data and a way to
// respond to requests to transfer the data.
type DataControlSourceV1 struct {
	// Listener's methods are called by incoming messages from the
	// remote end via Dispatch. If it is nil, messages are silently
	// ignored.
	Listener DataControlSourceV1Listener

	// OnDelete is called when the object is removed from the tracking
	// system.
	OnDelete func()

	state wire.State
	id    uint32
}

// NewDataControlSourceV1 returns a newly instantiated DataControlSourceV1.
func NewDataControlSourceV1(state wire.State) *DataControlSourceV1 {
	return &DataControlSourceV1{state: state}
}

func (obj *DataControlSourceV1) State() wire.State {
	return obj.state
}

func (obj *DataControlSourceV1) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		mimeType := msg.ReadString()

		fd := msg.ReadFile()

		if err := msg.Err(); err != nil {
			if fd != nil {
				_ = fd.Close()
			}
			return err
		}

		if obj.Listener == nil {
			_ = fd.Close()
			return nil
		}
		obj.Listener.Send(
			mimeType,
			fd,
		)
		return nil

	case 1:
		if err := msg.Err(); err != nil {
			return err
		}

		if obj.Listener == nil {
			return nil
		}
		obj.Listener.Cancelled()
		return nil
	}

	return wire.UnknownOpError{
		Interface: "zwlr_data_control_source_v1",
		Type:      "event",
		Op:        msg.Op(),
	}
}

func (obj *DataControlSourceV1) ID() uint32 {
	return obj.id
}

func (obj *DataControlSourceV1) SetID(id uint32) {
	obj.id = id
}

func (obj *DataControlSourceV1) Delete() {
	if obj.OnDelete != nil {
		obj.OnDelete()
	}
}

func (obj *DataControlSourceV1) String() string {
	return fmt.Sprintf("%v(%v)", "zwlr_data_control_source_v1", obj.id)
}

func (obj *DataControlSourceV1) MethodName(op uint16) string {
	switch op {
	case 0:
		return "send"

	case 1:
		return "cancelled"
	}

	return "unknown method"
}

func (obj *DataControlSourceV1) Interface() string {
	return DataControlSourceV1Interface
}

func (obj *DataControlSourceV1) Version() uint32 {
	return DataControlSourceV1Version
}

// This request adds a MIME type to the set of MIME types advertised to
// targets. Can be called several times to offer multiple types.
//
// Calling this after wlr_data_control_device.set_selection is a protocol
// error.
func (obj *DataControlSourceV1) Offer(mimeType string) {
	builder := wire.NewMessage(obj, 0)

	builder.WriteString(mimeType)

	builder.Method = "offer"
	builder.Args = []any{mimeType}
	obj.state.Enqueue(builder)
}

// Destroys the data source object.
func (obj *DataControlSourceV1) Destroy() {
	builder := wire.NewMessage(obj, 1)

	builder.Method = "destroy"
	builder.Args = []any{}
	obj.state.Enqueue(builder)
	obj.Listener = nil
}

type DataControlSourceV1Error int64

const (
	// offer sent after wlr_data_control_device.set_selection
	DataControlSourceV1ErrorInvalidOffer DataControlSourceV1Error = 1
)

func (enum DataControlSourceV1Error) String() string {
	switch enum {
	case 1:
		return "DataControlSourceV1ErrorInvalidOffer"
	}

	return "<invalid DataControlSourceV1Error>"
}

const (
	DataControlOfferV1Interface = "zwlr_data_control_offer_v1"
	DataControlOfferV1Version   = 1
)

// DataControlOfferV1Listener is a type that can respond to incoming
// messages for a DataControlOfferV1 object.
type DataControlOfferV1Listener interface {
	// Sent immediately after creating the wlr_data_control_offer object.
	// One event per offered MIME type.
	Offer(mimeType string)
}

// A wlr_data_control_offer represents a piece of data offered for transfer
// by another client (the source client). The offer describes the different
// MIME types that the data can be converted to and provides the mechanism
// for transferring the data directly from the source client.
type DataControlOfferV1 struct {
	// Listener's methods are called by incoming messages from the
	// remote end via Dispatch. If it is nil, messages are silently
	// ignored.
	Listener DataControlOfferV1Listener

	// OnDelete is called when the object is removed from the tracking
	// system.
	OnDelete func()

	state wire.State
	id    uint32
}

// NewDataControlOfferV1 returns a newly instantiated DataControlOfferV1.
func NewDataControlOfferV1(state wire.State) *DataControlOfferV1 {
	return &DataControlOfferV1{state: state}
}

func (obj *DataControlOfferV1) State() wire.State {
	return obj.state
}

func (obj *DataControlOfferV1) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0:
		mimeType := msg.ReadString()

		if err := msg.Err(); err != nil {
			return err
		}

		if obj.Listener == nil {
			return nil
		}
		obj.Listener.Offer(
			mimeType,
		)
		return nil
	}

	return wire.UnknownOpError{
		Interface: "zwlr_data_control_offer_v1",
		Type:      "event",
		Op:        msg.Op(),
	}
}

func (obj *DataControlOfferV1) ID() uint32 {
	return obj.id
}

func (obj *DataControlOfferV1) SetID(id uint32) {
	obj.id = id
}

func (obj *DataControlOfferV1) Delete() {
	if obj.OnDelete != nil {
		obj.OnDelete()
	}
}

func (obj *DataControlOfferV1) String() string {
	return fmt.Sprintf("%v(%v)", "zwlr_data_control_offer_v1", obj.id)
}

func (obj *DataControlOfferV1) MethodName(op uint16) string {
	switch op {
	case 0:
		return "offer"
	}

	return "unknown method"
}

func (obj *DataControlOfferV1) Interface() string {
	return DataControlOfferV1Interface
}

func (obj *DataControlOfferV1) Version() uint32 {
	return DataControlOfferV1Version
}

// To transfer the offered data, the client issues this request and
// indicates the MIME type it wants to receive. The transfer happens
// through the passed file descriptor (typically created with the pipe
// system call). The source client writes the data in the MIME type
// representation requested and then closes the file descriptor.
//
// The receiving client reads from the read end of the pipe until EOF and
// then closes its end, at which point the transfer is complete.
//
// This request may happen multiple times for different MIME types.
func (obj *DataControlOfferV1) Receive(mimeType string, fd *os.File) {
	if c, ok := obj.state.(*Conn); ok {
		c.sendFile(obj, 0, "receive", mimeType, fd)
		return
	}

	builder := wire.NewMessage(obj, 0)

	builder.WriteString(mimeType)
	builder.WriteFile(fd)

	builder.Method = "receive"
	builder.Args = []any{mimeType, fd}
	obj.state.Enqueue(builder)
}

// Destroys the data offer object.
func (obj *DataControlOfferV1) Destroy() {
	builder := wire.NewMessage(obj, 1)

	builder.Method = "destroy"
	builder.Args = []any{}
	obj.state.Enqueue(builder)
	obj.Listener = nil
}
