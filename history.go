package finbase

// HistoryParticipant is implemented by records that take part in an item's
// undo bracket. The Item itself implements it, as do embedded extension
// records attached with AttachSub: the framework fans every push, pop and
// check out to all participants so a parent record and its extension can
// never drift apart.
type HistoryParticipant interface {
	PushHistory()
	PopHistory()
	CheckForHistory() bool
}

// ItemState is the derived lifecycle state of an item.
type ItemState int

const (
	// StateClean means the item matches its committed form.
	StateClean ItemState = iota
	// StateNew means the item was created in this session (id 0, no base).
	StateNew
	// StateChanged means the store differs from the item's base, or from
	// the oldest snapshot when there is no base.
	StateChanged
	// StateDeleted means the deletion flag is set.
	StateDeleted
)

func (s ItemState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateNew:
		return "new"
	case StateChanged:
		return "changed"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// PushHistory snapshots the current field store onto the history stack and
// fans out to sub-records. Cost is O(field count).
func (it *Item) PushHistory() {
	it.history = append(it.history, it.store.Clone())
	for _, sub := range it.subs {
		sub.PushHistory()
	}
}

// PopHistory restores the most recent snapshot and discards it from the
// stack, cancelling the edit bracket. Popping with no history pushed is a
// safe no-op.
func (it *Item) PopHistory() {
	if n := len(it.history); n > 0 {
		it.store = it.history[n-1]
		it.store.onSet = it.markDirty
		it.history = it.history[:n-1]
	}
	for _, sub := range it.subs {
		sub.PopHistory()
	}
}

// HasHistory reports whether any snapshot is pending.
func (it *Item) HasHistory() bool { return len(it.history) > 0 }

// CheckForHistory confirms the current edit bracket: it compares the current
// store field by field against the last snapshot, discards that snapshot
// leaving the new state in place, and reports whether any field differed.
// Sub-records are checked in lockstep and any of their changes counts.
func (it *Item) CheckForHistory() bool {
	changed := false
	if n := len(it.history); n > 0 {
		changed = !it.store.Equal(it.history[n-1])
		it.history = it.history[:n-1]
	}
	for _, sub := range it.subs {
		if sub.CheckForHistory() {
			changed = true
		}
	}
	return changed
}

// State derives the item's lifecycle state.
func (it *Item) State() ItemState {
	if it.deleted {
		return StateDeleted
	}
	if it.id == 0 && it.base == nil {
		return StateNew
	}
	if ref := it.referenceStore(); ref != nil && !it.store.Equal(ref) {
		return StateChanged
	}
	return StateClean
}

// referenceStore is the store the item is compared against to decide whether
// it changed: its base copy when it has one, the oldest snapshot otherwise.
func (it *Item) referenceStore() *FieldStore {
	if it.base != nil {
		return it.base.store
	}
	if len(it.history) > 0 {
		return it.history[0]
	}
	return nil
}

var _ HistoryParticipant = (*Item)(nil)
