package finbase

// TouchState is the transient liveness marking of one entity: whether any
// other entity currently references it, the earliest and latest referencing
// transaction dates, and whether at least one reference is unreconciled
// (making the entity "relevant", i.e. ineligible for auto-closure).
//
// Touches are not incrementally maintained. They are recomputed from scratch
// by a full pass over the transaction set after load or after a bulk edit
// commit.
type TouchState struct {
	active   bool
	relevant bool
	earliest Date
	latest   Date
}

// Active reports whether any entity references this one.
func (t *TouchState) Active() bool { return t.active }

// Relevant reports whether at least one unreconciled reference exists.
func (t *TouchState) Relevant() bool { return t.relevant }

// Earliest returns the earliest referencing transaction date.
func (t *TouchState) Earliest() Date { return t.earliest }

// Latest returns the latest referencing transaction date.
func (t *TouchState) Latest() Date { return t.latest }

func (t *TouchState) clear() { *t = TouchState{} }

func (t *TouchState) record(on Date, reconciled bool) {
	t.active = true
	if !reconciled {
		t.relevant = true
	}
	if t.earliest.IsZero() || on.Before(t.earliest) {
		t.earliest = on
	}
	if on.After(t.latest) {
		t.latest = on
	}
}

// ClearActive resets all derived touch state before a fresh pass recomputes
// it from scratch.
func (ds *DataSet) ClearActive() {
	for _, l := range ds.lists {
		for _, it := range l.items {
			it.touch.clear()
		}
	}
}

// TouchPass recomputes the touch graph over the full transaction set: each
// transaction touches every entity it references, and touches propagate
// upward through ownership chains (a referenced child account also touches
// its parent).
func (ds *DataSet) TouchPass() {
	ds.ClearActive()
	txs := ds.List(KindTransaction)
	for _, tx := range txs.items {
		if tx.deleted {
			continue
		}
		ds.touchReferences(tx, true)
	}
}

// TouchOnUpdate refreshes only the direct-reference touches of one
// transaction, for interactive validity checks such as "can this payee
// still be deleted". Ownership-chain propagation is left to the full pass.
func (ds *DataSet) TouchOnUpdate(tx *Item) {
	ds.touchReferences(tx, false)
}

func (ds *DataSet) touchReferences(tx *Item, propagate bool) {
	on, _ := itemDate(tx)
	reconciled := false
	if v, ok := tx.Get(FieldReconciled); ok {
		reconciled, _ = v.(bool)
	}
	schema := schemaOf(tx.Kind())
	for field, kind := range schema.Refs {
		id, ok := itemInt(tx, field)
		if !ok {
			continue
		}
		target := ds.List(kind).Get(id)
		if target == nil {
			continue
		}
		target.touch.record(on, reconciled)
		if propagate {
			ds.touchParents(target, on, reconciled)
		}
	}
}

// touchParents walks the ownership chain upward. The visited guard stops
// accidental parent cycles from hanging the pass.
func (ds *DataSet) touchParents(it *Item, on Date, reconciled bool) {
	visited := map[int]bool{it.id: true}
	for {
		pid, ok := itemInt(it, FieldParent)
		if !ok || visited[pid] {
			return
		}
		parent := ds.List(it.Kind()).Get(pid)
		if parent == nil {
			return
		}
		parent.touch.record(on, reconciled)
		visited[pid] = true
		it = parent
	}
}

// clearTouchesFrom invalidates the touch state of every entity the removed
// item directly references. The next full pass recomputes them; until then
// their derived state is conservative, not trusted.
func (ds *DataSet) clearTouchesFrom(src *Item) {
	schema := schemaOf(src.Kind())
	for field, kind := range schema.Refs {
		id, ok := itemInt(src, field)
		if !ok {
			continue
		}
		if target := ds.List(kind).Get(id); target != nil {
			target.touch.clear()
		}
	}
}

// CanDelete reports whether the entity carries no active touch, the guard a
// deletion must pass.
func (ds *DataSet) CanDelete(it *Item) bool { return !it.touch.active }
