package finbase

import "strconv"

// InstanceMap is a derived, rebuildable index owned by a Data List. It gives
// O(1) uniqueness and cardinality checks without full scans: a presence map
// from key to first registered item and a per-key occurrence counter, plus a
// two-level composite family for multi-dimensional keys such as one rate per
// (currency, date) pair.
//
// Counters are only meaningful while consistent with the owning list's
// current non-deleted contents; after bulk mutation the map is stale and
// must be rebuilt, never incrementally trusted.
type InstanceMap struct {
	counts map[string]int
	items  map[string]*Item
	// composite is created lazily per outer key on first insertion.
	composite map[string]map[string]int
}

// NewInstanceMap returns an empty map.
func NewInstanceMap() *InstanceMap {
	m := &InstanceMap{}
	m.Reset()
	return m
}

// Reset clears all counters and maps, called before a full rebuild pass.
func (m *InstanceMap) Reset() {
	m.counts = make(map[string]int)
	m.items = make(map[string]*Item)
	m.composite = make(map[string]map[string]int)
}

// Adjust registers one key of one item, incrementing its counter. The first
// item registered for a key stays the lookup result.
func (m *InstanceMap) Adjust(key string, it *Item) {
	m.counts[key]++
	if _, ok := m.items[key]; !ok {
		m.items[key] = it
	}
}

// AdjustComposite registers one (outer, inner) key pair.
func (m *InstanceMap) AdjustComposite(outer, inner string) {
	inner2count, ok := m.composite[outer]
	if !ok {
		inner2count = make(map[string]int)
		m.composite[outer] = inner2count
	}
	inner2count[inner]++
}

// IsValidCount reports whether exactly one item carries the key. An entity
// is valid only when every one of its uniqueness keys has count one.
func (m *InstanceMap) IsValidCount(key string) bool { return m.counts[key] == 1 }

// IsAvailable reports whether no item carries the key.
func (m *InstanceMap) IsAvailable(key string) bool { return m.counts[key] == 0 }

// IsValidComposite reports whether exactly one item carries the pair.
func (m *InstanceMap) IsValidComposite(outer, inner string) bool {
	return m.composite[outer][inner] == 1
}

// IsAvailableComposite reports whether no item carries the pair.
func (m *InstanceMap) IsAvailableComposite(outer, inner string) bool {
	return m.composite[outer][inner] == 0
}

// Lookup returns the first item registered under the key, or nil.
func (m *InstanceMap) Lookup(key string) *Item { return m.items[key] }

// SuggestName returns base if available, otherwise base with the smallest
// integer suffix that is. Unbounded in principle, bounded in practice by the
// list size.
func (m *InstanceMap) SuggestName(base string) string {
	if m.IsAvailable(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + strconv.Itoa(i)
		if m.IsAvailable(candidate) {
			return candidate
		}
	}
}
