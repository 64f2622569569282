package selection

// slot is the ownership of the one selection. Its variants make a source
// without a published item, or the reverse, unrepresentable.
type slot interface {
	current() Source
	item() uint64
}

// unowned: another client, or nobody, holds the selection.
type unowned struct{}

// publishPending: our source was set as the selection and the compositor
// has not echoed it back yet.
type publishPending struct {
	source Source
	itemID uint64
}

// owned: the compositor confirmed our source. Selection events are not
// read until it is cancelled.
type owned struct {
	source Source
	itemID uint64
}

func (unowned) current() Source          { return nil }
func (unowned) item() uint64             { return 0 }
func (s publishPending) current() Source { return s.source }
func (s publishPending) item() uint64    { return s.itemID }
func (s owned) current() Source          { return s.source }
func (s owned) item() uint64             { return s.itemID }

// Ownership names a slot variant.
type Ownership int

const (
	Unowned Ownership = iota
	PublishPending
	Owned
)

func (o Ownership) String() string {
	switch o {
	case PublishPending:
		return "publish-pending"
	case Owned:
		return "owned"
	default:
		return "unowned"
	}
}

// State is a snapshot of the ownership record.
type State struct {
	Ownership Ownership
	// ItemID and SourceID are zero when Unowned.
	ItemID   uint64
	SourceID uint32
	// CurrentOffer is the id of the offer last named by a selection event,
	// or zero.
	CurrentOffer uint32
	// PendingOffers is the size of the offer table.
	PendingOffers int
}

// State reports the current ownership record.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{PendingOffers: len(m.offers)}
	if m.currentOffer != nil {
		st.CurrentOffer = m.currentOffer.ID()
	}
	switch s := m.slot.(type) {
	case publishPending:
		st.Ownership = PublishPending
		st.ItemID, st.SourceID = s.itemID, s.source.ID()
	case owned:
		st.Ownership = Owned
		st.ItemID, st.SourceID = s.itemID, s.source.ID()
	}
	return st
}
