package finbase

// Item is one entity instance: identity, owning list, field store, history
// stack, validation errors and lifecycle flags.
//
// Identity is a list-scoped non-negative integer, unique within the list and
// stable for the item's lifetime once assigned. Id 0 denotes "not yet
// persisted". The base reference points at the corresponding item in an
// authoritative list and is used for change comparison only, never for
// ownership.
type Item struct {
	id      int
	list    *List
	base    *Item
	deleted bool
	dirty   bool

	store   *FieldStore
	history []*FieldStore
	errs    ValidationErrors
	subs    []HistoryParticipant

	touch TouchState
}

func newItem(list *List, store *FieldStore) *Item {
	it := &Item{list: list, store: store}
	it.store.onSet = it.markDirty
	return it
}

// ID returns the item's list-scoped identity, 0 when not yet persisted.
func (it *Item) ID() int { return it.id }

// List returns the owning list.
func (it *Item) List() *List { return it.list }

// Kind returns the entity kind of the owning list.
func (it *Item) Kind() Kind { return it.list.kind }

// Base returns the corresponding item in the authoritative list, or nil.
func (it *Item) Base() *Item { return it.base }

// Deleted reports the deletion flag.
func (it *Item) Deleted() bool { return it.deleted }

// MarkDeleted sets or clears the deletion flag.
func (it *Item) MarkDeleted(deleted bool) {
	it.deleted = deleted
	it.dirty = true
}

// Dirty reports whether any field was set since the last ClearDirty.
func (it *Item) Dirty() bool { return it.dirty }

// ClearDirty resets the uncommitted-change marker, typically after a commit.
func (it *Item) ClearDirty() { it.dirty = false }

// Errors returns the item's accumulated validation errors.
func (it *Item) Errors() *ValidationErrors { return &it.errs }

// Touch returns the item's touch state.
func (it *Item) Touch() *TouchState { return &it.touch }

// Get returns a field value.
func (it *Item) Get(id FieldID) (any, bool) { return it.store.Get(id) }

// Set stores a plain field value and marks the item changed.
func (it *Item) Set(id FieldID, v any) { it.store.Set(id, v) }

// SetPlain stores an encrypted field from plaintext, see FieldStore.SetPlain.
func (it *Item) SetPlain(id FieldID, plaintext string) error {
	return it.store.SetPlain(id, it.cipher(), plaintext)
}

// SetCipher stores an encrypted field from ciphertext.
func (it *Item) SetCipher(id FieldID, ciphertext []byte) {
	it.store.SetCipher(id, ciphertext)
}

// Plain resolves an encrypted field's plaintext, decoding it on first read.
func (it *Item) Plain(id FieldID) (string, error) {
	return it.store.Plain(id, it.cipher())
}

// Name returns the item's display name, or "" when unnamed.
func (it *Item) Name() string {
	if v, ok := it.store.Get(FieldName); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AttachSub registers an embedded extension record whose history must stay
// in lockstep with the item's. Push, pop and check fan out to every
// registered participant.
func (it *Item) AttachSub(p HistoryParticipant) {
	it.subs = append(it.subs, p)
}

func (it *Item) markDirty(FieldID) { it.dirty = true }

func (it *Item) cipher() Cipherer {
	if it.list != nil && it.list.dataset != nil {
		return it.list.dataset.cipher
	}
	return nil
}
