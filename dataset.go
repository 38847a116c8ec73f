package finbase

import (
	"errors"
	"fmt"
	"log"
)

// Phase is the dataset's position in the mandatory structural sequence
// load → resolve links → sort → rebuild maps → touch pass → ready.
// Derived state (instance maps, touch graph, rate engine) must not be read
// before the dataset is ready.
type Phase int

const (
	// PhaseLoading accepts bulk structural mutation.
	PhaseLoading Phase = iota
	// PhaseReady allows reading derived state.
	PhaseReady
)

// DataSet owns one list per entity kind plus the derived structures shared
// across lists: the holding scopes and the currency rate engine. Cross-list
// references are integer ids resolved through the dataset registry, never
// live pointers, so there are no reference cycles to manage.
type DataSet struct {
	cipher          Cipherer
	defaultCurrency string

	lists    map[Kind]*List
	holdings map[int]map[int]*Holding
	rates    *RateList
	phase    Phase
	style    Style
}

// NewDataSet returns an empty core dataset. The cipher is the encryption
// collaborator used by encrypted fields; defaultCurrency is the pivot of
// the rate engine.
func NewDataSet(cipher Cipherer, defaultCurrency string) *DataSet {
	ds := &DataSet{
		cipher:          cipher,
		defaultCurrency: defaultCurrency,
		lists:           make(map[Kind]*List),
		holdings:        make(map[int]map[int]*Holding),
		rates:           NewRateList(defaultCurrency),
		style:           StyleCore,
	}
	for _, k := range Kinds() {
		ds.lists[k] = newList(ds, k, StyleCore)
	}
	return ds
}

// List returns the dataset's list for a kind.
func (ds *DataSet) List(k Kind) *List { return ds.lists[k] }

// Phase returns the dataset's current phase.
func (ds *DataSet) Phase() Phase { return ds.phase }

// DefaultCurrency returns the pivot currency.
func (ds *DataSet) DefaultCurrency() string { return ds.defaultCurrency }

// Rates returns the currency rate engine. Valid once the dataset is ready.
func (ds *DataSet) Rates() *RateList { return ds.rates }

// Convert converts an amount into the target currency at the given date,
// bridging through the default currency.
func (ds *DataSet) Convert(m Money, target string, on Date) (Money, error) {
	return ds.rates.Convert(m, target, on)
}

// ResolveLinks verifies that every stored foreign-key id resolves to a live
// entity. A dangling reference is fatal to the load: downstream invariants
// (touch graph, instance maps) assume fully resolved references.
func (ds *DataSet) ResolveLinks() error {
	var errs error
	for _, k := range Kinds() {
		l := ds.lists[k]
		if len(l.schema.Refs) == 0 {
			continue
		}
		for _, it := range l.items {
			if it.deleted {
				continue
			}
			for field, target := range l.schema.Refs {
				id, ok := itemInt(it, field)
				if !ok {
					continue
				}
				if ds.lists[target].Get(id) == nil {
					errs = errors.Join(errs, &ResolutionError{Kind: k, Field: field, Ref: id})
				}
			}
		}
	}
	return errs
}

// SortAll establishes every list's total order.
func (ds *DataSet) SortAll() {
	for _, l := range ds.lists {
		l.Sort()
	}
}

// RebuildMaps resets and rebuilds every list's instance map.
func (ds *DataSet) RebuildMaps() {
	for _, l := range ds.lists {
		l.RebuildIndex()
	}
}

// rebuildRates rebuilds the rate engine from the rate entity list. Entries
// the engine rejects (non-positive ratio, duplicate date) are skipped here;
// ValidateAll flags them on their items.
func (ds *DataSet) rebuildRates() {
	ds.rates = NewRateList(ds.defaultCurrency)
	for it := range ds.List(KindRate).Items() {
		if it.Deleted() {
			continue
		}
		on, ok := itemDate(it)
		if !ok {
			continue
		}
		cur := itemString(it, FieldCurrency)
		ratio, _ := it.store.values[FieldRatio].(Rate)
		if err := ds.rates.Add(on, cur, ratio); err != nil {
			log.Printf("skipping rate entry %d: %v", it.ID(), err)
		}
	}
}

// Ready runs the mandatory order-dependent sequence after bulk load:
// resolve links, sort, rebuild maps, rebuild the rate engine, touch pass.
func (ds *DataSet) Ready() error {
	if err := ds.ResolveLinks(); err != nil {
		return fmt.Errorf("dataset is inconsistent: %w", err)
	}
	ds.SortAll()
	ds.RebuildMaps()
	ds.rebuildRates()
	ds.TouchPass()
	ds.phase = PhaseReady
	return nil
}

// ValidateAll reruns validation on every list.
func (ds *DataSet) ValidateAll() {
	for _, k := range Kinds() {
		ds.lists[k].ValidateAll()
	}
}

// SetDefaultCurrency rebases the rate engine onto a new pivot currency and
// rewrites the stored rate entities to match, so every persisted rate keeps
// the invariant from-currency == default. See RateList.SetDefaultCurrency
// for the fallback policy.
func (ds *DataSet) SetDefaultCurrency(newDef string) error {
	if newDef == ds.defaultCurrency {
		return nil
	}
	oldDef := ds.defaultCurrency
	if err := ds.rates.SetDefaultCurrency(newDef); err != nil {
		return err
	}
	ds.defaultCurrency = newDef

	list := ds.List(KindRate)
	for it := range list.Items() {
		if it.Deleted() {
			continue
		}
		on, ok := itemDate(it)
		if !ok {
			continue
		}
		cur := itemString(it, FieldCurrency)
		if cur == newDef {
			cur = oldDef
			it.store.Set(FieldCurrency, cur)
		}
		if ratio, ok := ds.rates.RateAsOf(cur, on); ok {
			it.store.Set(FieldRatio, ratio)
		}
		it.ClearDirty() // rebasing is a structural rewrite, not an edit
	}
	list.InvalidateIndex()
	return nil
}

// DeriveEditSession builds the working copy of the whole dataset for one
// interactive edit session: every list is derived edit-style with live base
// references into this core dataset, and the session's own instance maps
// and rate engine are rebuilt from the edit copies, so availability checks
// see uncommitted cross-entity edits.
func (ds *DataSet) DeriveEditSession() *DataSet {
	session := &DataSet{
		cipher:          ds.cipher,
		defaultCurrency: ds.defaultCurrency,
		lists:           make(map[Kind]*List),
		holdings:        make(map[int]map[int]*Holding),
		style:           StyleEdit,
	}
	for _, k := range Kinds() {
		session.lists[k] = ds.lists[k].DeriveEditList(session)
	}
	session.rebuildRates()
	session.phase = PhaseReady
	return session
}

// CommitSession merges every non-clean item of an edit session back into
// this core dataset and reruns the structural pipeline. It returns how many
// items actually changed.
func (ds *DataSet) CommitSession(session *DataSet) (int, error) {
	changed := 0
	for _, k := range Kinds() {
		core := ds.lists[k]
		for it := range session.lists[k].Items() {
			if it.State() == StateClean {
				continue
			}
			if it.State() == StateDeleted && it.Base() == nil {
				continue // created and deleted within the session
			}
			if core.ApplyChanges(it) {
				changed++
			}
		}
	}
	if err := ds.Ready(); err != nil {
		return changed, err
	}
	return changed, nil
}
