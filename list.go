package finbase

import (
	"fmt"
	"iter"
	"sort"
)

// Style governs a list's mutation rules and how it derives from other lists.
type Style int

const (
	// StyleCore is the authoritative, persisted list.
	StyleCore Style = iota
	// StyleEdit is the working copy of an interactive session; its items
	// carry live history stacks and base references into the core list.
	StyleEdit
	// StyleClone is a frozen snapshot without history.
	StyleClone
	// StyleUpdate is the changeset scratch list of changed, new and deleted
	// items only.
	StyleUpdate
)

func (s Style) String() string {
	switch s {
	case StyleCore:
		return "core"
	case StyleEdit:
		return "edit"
	case StyleClone:
		return "clone"
	case StyleUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// List is an ordered, id-indexed collection of items of one kind.
type List struct {
	kind    Kind
	style   Style
	dataset *DataSet
	schema  Schema

	items  []*Item
	byID   map[int]*Item
	nextID int

	index      *InstanceMap
	indexStale bool
}

func newList(ds *DataSet, kind Kind, style Style) *List {
	return &List{
		kind:    kind,
		style:   style,
		dataset: ds,
		schema:  schemaOf(kind),
		byID:    make(map[int]*Item),
		nextID:  1,
		index:   NewInstanceMap(),
	}
}

func (l *List) Kind() Kind   { return l.kind }
func (l *List) Style() Style { return l.style }
func (l *List) Len() int     { return len(l.items) }

// Get returns the item with the given id, or nil.
func (l *List) Get(id int) *Item { return l.byID[id] }

// NextID returns the id the next committed or bulk-loaded item will take.
func (l *List) NextID() int { return l.nextID }

// Items iterates over the items in list order.
func (l *List) Items() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, it := range l.items {
			if !yield(it) {
				return
			}
		}
	}
}

// AddNew creates a blank item with id 0, to be committed later. Only edit
// lists accept new items.
func (l *List) AddNew() (*Item, error) {
	if l.style != StyleEdit {
		return nil, fmt.Errorf("%v list is %v, new items require an edit list", l.kind, l.style)
	}
	it := newItem(l, NewFieldStore())
	l.items = append(l.items, it)
	l.indexStale = true
	return it, nil
}

// AddCopy clones an existing item into this list, adopting this list's
// style: copies into an edit list keep a live base reference to the source.
func (l *List) AddCopy(src *Item) *Item {
	it := newItem(l, src.store.Clone())
	it.id = src.id
	it.deleted = src.deleted
	switch l.style {
	case StyleEdit:
		it.base = src
	case StyleUpdate:
		it.base = src.base
	}
	l.insert(it)
	return it
}

// AddValues builds an item from externally supplied field values during bulk
// load. A repeated id is fatal to this add and must abort the whole load;
// the list's size and index invariants are left intact.
func (l *List) AddValues(id int, values map[FieldID]any) (*Item, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%v: invalid id %d in load", l.kind, id)
	}
	if _, exists := l.byID[id]; exists {
		return nil, &DuplicateIDError{Kind: l.kind, ID: id}
	}
	it := newItem(l, NewFieldStore())
	it.id = id
	for f, v := range values {
		if raw, ok := v.([]byte); ok && l.schema.isEncrypted(f) {
			it.store.SetCipher(f, raw)
			continue
		}
		it.store.Set(f, v)
	}
	it.ClearDirty() // loading is not an edit
	l.insert(it)
	return it, nil
}

func (l *List) insert(it *Item) {
	l.items = append(l.items, it)
	if it.id > 0 {
		l.byID[it.id] = it
		if it.id >= l.nextID {
			l.nextID = it.id + 1
		}
	}
	l.indexStale = true
}

// Remove destroys an item by taking it out of its owning list, clearing its
// outgoing touches first.
func (l *List) Remove(it *Item) {
	if l.dataset != nil {
		l.dataset.clearTouchesFrom(it)
	}
	for i, x := range l.items {
		if x == it {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	if it.id > 0 && l.byID[it.id] == it {
		delete(l.byID, it.id)
	}
	it.list = nil
	l.indexStale = true
}

// Sort establishes the list's total order: chronological kinds sort by date
// descending then id ascending; other kinds keep insertion order.
func (l *List) Sort() {
	if !l.schema.Chronological {
		return
	}
	sort.SliceStable(l.items, func(i, j int) bool {
		di, _ := itemDate(l.items[i])
		dj, _ := itemDate(l.items[j])
		if c := di.Compare(dj); c != 0 {
			return c > 0 // most recent first
		}
		return l.items[i].id < l.items[j].id
	})
}

// LatestOnOrBefore returns the most recent item dated on or before the given
// day, using binary search over the reverse-chronological order. The list
// must be sorted.
func (l *List) LatestOnOrBefore(on Date) *Item {
	i := sort.Search(len(l.items), func(i int) bool {
		d, _ := itemDate(l.items[i])
		return !d.After(on)
	})
	if i == len(l.items) {
		return nil
	}
	return l.items[i]
}

// InvalidateIndex marks the instance map stale; it will be rebuilt before
// its next use.
func (l *List) InvalidateIndex() { l.indexStale = true }

// RebuildIndex resets and repopulates the instance map from the list's
// current non-deleted contents.
func (l *List) RebuildIndex() {
	l.index.Reset()
	for _, it := range l.items {
		if it.deleted {
			continue
		}
		l.AdjustForItem(it)
	}
	l.indexStale = false
}

// AdjustForItem registers one item's uniqueness keys in the instance map.
func (l *List) AdjustForItem(it *Item) {
	if l.schema.Keys != nil {
		for _, k := range l.schema.Keys(it) {
			l.index.Adjust(k.Value, it)
		}
	}
	if l.schema.CompositeKey != nil {
		if outer, inner, ok := l.schema.CompositeKey(it); ok {
			l.index.AdjustComposite(outer, inner)
		}
	}
}

// Index returns the list's instance map, rebuilding it when stale.
func (l *List) Index() *InstanceMap {
	if l.indexStale {
		l.RebuildIndex()
	}
	return l.index
}

// SuggestName returns a unique name derived from base, probing availability
// and appending an incrementing suffix until free.
func (l *List) SuggestName(base string) string {
	return l.Index().SuggestName(base)
}

// ValidateAll reruns entity validation on every item: the kind's rule hook
// plus the mechanical uniqueness enforcement against the instance map.
func (l *List) ValidateAll() {
	index := l.Index()
	for _, it := range l.items {
		if it.deleted {
			continue
		}
		it.errs.Clear()
		if l.schema.Validate != nil {
			l.schema.Validate(it)
		}
		if l.schema.Keys != nil {
			for _, k := range l.schema.Keys(it) {
				if !index.IsValidCount(k.Value) {
					it.errs.Add(k.Field, "duplicate value")
				}
			}
		}
		if l.schema.CompositeKey != nil {
			if outer, inner, ok := l.schema.CompositeKey(it); ok {
				if !index.IsValidComposite(outer, inner) {
					it.errs.Add(FieldDate, "duplicate entry for "+outer+" on "+inner)
				}
			}
		}
	}
}

// DeriveEditList builds the working copy for an interactive session: every
// non-deleted item is copied with a live base reference. The context dataset
// owns the derived list, so availability checks during the session see the
// sibling lists' uncommitted edit copies rather than core.
func (l *List) DeriveEditList(ctx *DataSet) *List {
	ds := ctx
	if ds == nil {
		ds = l.dataset
	}
	out := newList(ds, l.kind, StyleEdit)
	for _, it := range l.items {
		if it.deleted {
			continue
		}
		out.AddCopy(it)
	}
	out.Sort()
	out.RebuildIndex()
	return out
}

// DeriveCloneList builds a frozen snapshot of the list: no history, no base
// references.
func (l *List) DeriveCloneList() *List {
	out := newList(l.dataset, l.kind, StyleClone)
	for _, it := range l.items {
		out.AddCopy(it)
	}
	return out
}

// DeriveUpdateList collects the changeset of an edit list: only items that
// are new, changed or deleted.
func (l *List) DeriveUpdateList() *List {
	out := newList(l.dataset, l.kind, StyleUpdate)
	for _, it := range l.items {
		if it.State() != StateClean {
			out.AddCopy(it)
		}
	}
	return out
}

// ApplyChanges merges an edit item's field-by-field differences back into
// its core base under a push/compare/check bracket, reporting whether
// anything actually changed. Edit items without a base are committed as new
// core items with a freshly assigned id.
func (l *List) ApplyChanges(edit *Item) bool {
	b := edit.base
	if b == nil {
		adopted := newItem(l, edit.store.Clone())
		adopted.id = l.nextID
		l.nextID++
		l.insert(adopted)
		edit.base = adopted
		edit.id = adopted.id
		edit.ClearDirty()
		return true
	}
	b.PushHistory()
	for f, v := range edit.store.values {
		if w, ok := b.store.values[f]; !ok || !valueEqual(v, w) {
			if enc, isEnc := v.(*Encrypted); isEnc {
				b.store.values[f] = enc.clone()
				continue
			}
			b.store.values[f] = v
		}
	}
	for f := range b.store.values {
		if _, ok := edit.store.values[f]; !ok {
			delete(b.store.values, f)
		}
	}
	changed := b.CheckForHistory()
	if b.deleted != edit.deleted {
		b.deleted = edit.deleted
		changed = true
	}
	if changed {
		l.indexStale = true
		edit.ClearDirty()
	}
	return changed
}

// isEncrypted reports whether the field is declared encrypted for this kind.
func (s Schema) isEncrypted(f FieldID) bool {
	for _, e := range s.Encrypted {
		if e == f {
			return true
		}
	}
	return false
}
