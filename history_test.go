package finbase

import "testing"

// recordingSub counts the history calls fanned out to it.
type recordingSub struct {
	pushes, pops, checks int
	changed              bool
}

func (r *recordingSub) PushHistory()          { r.pushes++ }
func (r *recordingSub) PopHistory()           { r.pops++ }
func (r *recordingSub) CheckForHistory() bool { r.checks++; return r.changed }

func TestPushPopRestoresFields(t *testing.T) {
	ds := newTestDataSet(t)
	session := ds.DeriveEditSession()
	it := session.List(KindAccount).Get(2)

	it.PushHistory()
	it.Set(FieldName, "Renamed")
	it.Set(FieldNotes, "scratch")
	it.PopHistory()

	if got := it.Name(); got != "Checking" {
		t.Errorf("name after pop=%q want Checking", got)
	}
	if _, ok := it.Get(FieldNotes); ok {
		t.Errorf("field set inside the bracket survived the pop")
	}
	if it.HasHistory() {
		t.Errorf("snapshot left on the stack after pop")
	}
	// the restored store must keep marking the item dirty
	it.ClearDirty()
	it.Set(FieldName, "Again")
	if !it.Dirty() {
		t.Errorf("item not dirty after post-pop mutation")
	}
}

func TestPopWithoutHistoryIsNoop(t *testing.T) {
	ds := newTestDataSet(t)
	session := ds.DeriveEditSession()
	it := session.List(KindPayee).Get(1)

	it.Set(FieldName, "Grocer & Co")
	it.PopHistory()
	if got := it.Name(); got != "Grocer & Co" {
		t.Errorf("pop without history mutated the store: %q", got)
	}
}

func TestCheckForHistory(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(it *Item)
		want   bool
	}{
		{"no edit", func(it *Item) {}, false},
		{"field changed", func(it *Item) { it.Set(FieldName, "Other") }, true},
		{"field added", func(it *Item) { it.Set(FieldNotes, "x") }, true},
		{"field removed", func(it *Item) { it.store.Unset(FieldCurrency) }, true},
		{"set then reverted", func(it *Item) {
			it.Set(FieldName, "Other")
			it.Set(FieldName, "Checking")
		}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ds := newTestDataSet(t)
			session := ds.DeriveEditSession()
			it := session.List(KindAccount).Get(2)

			it.PushHistory()
			tc.mutate(it)
			if got := it.CheckForHistory(); got != tc.want {
				t.Errorf("CheckForHistory()=%v want %v", got, tc.want)
			}
			if it.HasHistory() {
				t.Errorf("check did not discard the snapshot")
			}
		})
	}
}

func TestHistoryFansOutToSubs(t *testing.T) {
	ds := newTestDataSet(t)
	session := ds.DeriveEditSession()
	it := session.List(KindAccount).Get(2)

	sub := &recordingSub{}
	it.AttachSub(sub)

	it.PushHistory()
	it.PopHistory()
	it.PushHistory()
	it.CheckForHistory()

	if sub.pushes != 2 || sub.pops != 1 || sub.checks != 1 {
		t.Errorf("sub saw pushes=%d pops=%d checks=%d want 2,1,1", sub.pushes, sub.pops, sub.checks)
	}
}

func TestSubChangeCountsAsItemChange(t *testing.T) {
	ds := newTestDataSet(t)
	session := ds.DeriveEditSession()
	it := session.List(KindAccount).Get(2)

	sub := &recordingSub{changed: true}
	it.AttachSub(sub)

	it.PushHistory()
	// parent untouched, only the extension record reports a change
	if !it.CheckForHistory() {
		t.Errorf("CheckForHistory()=false, sub change ignored")
	}
}

func TestItemState(t *testing.T) {
	ds := newTestDataSet(t)
	session := ds.DeriveEditSession()
	accounts := session.List(KindAccount)

	it := accounts.Get(2)
	if got := it.State(); got != StateClean {
		t.Errorf("untouched edit copy: State()=%v want clean", got)
	}

	it.Set(FieldName, "Renamed")
	if got := it.State(); got != StateChanged {
		t.Errorf("edited copy: State()=%v want changed", got)
	}

	it.Set(FieldName, "Checking")
	if got := it.State(); got != StateClean {
		t.Errorf("reverted copy: State()=%v want clean", got)
	}

	it.MarkDeleted(true)
	if got := it.State(); got != StateDeleted {
		t.Errorf("deleted copy: State()=%v want deleted", got)
	}

	fresh, err := accounts.AddNew()
	if err != nil {
		t.Fatalf("AddNew: %v", err)
	}
	if got := fresh.State(); got != StateNew {
		t.Errorf("fresh item: State()=%v want new", got)
	}
}
