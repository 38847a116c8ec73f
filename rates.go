package finbase

import (
	"fmt"
	"iter"
	"slices"
	"sort"
)

// rateHistory stores the chronological series of conversion ratios for one
// target currency. Dates are unique and the series is always sorted.
type rateHistory struct {
	days   []Date
	ratios []Rate
}

// append adds a point, overwriting an existing value at the same date.
func (h *rateHistory) append(on Date, r Rate) {
	if i := slices.Index(h.days, on); i >= 0 {
		h.ratios[i] = r
		return
	}
	h.days, h.ratios = append(h.days, on), append(h.ratios, r)
	h.sortChronological()
}

func (h *rateHistory) has(on Date) bool { return slices.Index(h.days, on) >= 0 }

type chronologicalRates struct{ *rateHistory }

func (s chronologicalRates) Len() int           { return len(s.days) }
func (s chronologicalRates) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronologicalRates) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.ratios[i], s.ratios[j] = s.ratios[j], s.ratios[i]
}

func (h *rateHistory) sortChronological() { sort.Sort(chronologicalRates{h}) }

// asOf returns the ratio on a given day, or the most recent ratio before it.
func (h *rateHistory) asOf(day Date) (Rate, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.ratios[i], true
	}
	if i == 0 {
		return Rate{}, false // no date on or before the given day
	}
	return h.ratios[i-1], true
}

// RateList maintains a designated default currency and the dated conversion
// rates bridging every other currency through it. Each rate is always
// expressed as default → other on a given date.
type RateList struct {
	def  string
	hist map[string]*rateHistory
}

// NewRateList returns an empty rate list pivoting on defaultCurrency.
func NewRateList(defaultCurrency string) *RateList {
	return &RateList{def: defaultCurrency, hist: make(map[string]*rateHistory)}
}

// DefaultCurrency returns the pivot currency all rates are expressed from.
func (r *RateList) DefaultCurrency() string { return r.def }

// Add records the rate default → to on the given date. The ratio must be
// strictly positive; (date, to) pairs are unique; the target must differ
// from the default.
func (r *RateList) Add(on Date, to string, ratio Rate) error {
	if to == r.def {
		return fmt.Errorf("rate target %q is the default currency", to)
	}
	if err := ratio.Validate(); err != nil {
		return fmt.Errorf("rate %s→%s on %v: %w", r.def, to, on, err)
	}
	h, ok := r.hist[to]
	if !ok {
		h = &rateHistory{}
		r.hist[to] = h
	}
	if h.has(on) {
		return fmt.Errorf("rate %s→%s on %v already exists", r.def, to, on)
	}
	h.append(on, ratio)
	return nil
}

// RateAsOf returns the latest default → to rate on or before the given date.
func (r *RateList) RateAsOf(to string, on Date) (Rate, bool) {
	h, ok := r.hist[to]
	if !ok {
		return Rate{}, false
	}
	return h.asOf(on)
}

// Convert converts an amount into the target currency at the given date:
// identity if already in target, otherwise bridged through the default
// currency with at most two rate lookups.
func (r *RateList) Convert(m Money, target string, on Date) (Money, error) {
	from := m.Currency()
	if from == target {
		return m, nil
	}
	// step into the default currency
	pivot := m
	if from != r.def {
		rate, ok := r.RateAsOf(from, on)
		if !ok {
			return Money{}, fmt.Errorf("no %s→%s rate on or before %v", r.def, from, on)
		}
		pivot = rate.Inverse().Apply(m, r.def)
	}
	if target == r.def {
		return pivot, nil
	}
	rate, ok := r.RateAsOf(target, on)
	if !ok {
		return Money{}, fmt.Errorf("no %s→%s rate on or before %v", r.def, target, on)
	}
	return rate.Apply(pivot, target), nil
}

// SetDefaultCurrency rebases every stored rate onto a new default currency.
// Rates already targeting the new default flip direction with an inverted
// ratio; every other rate is recomposed through the old default using the
// new default's rate as of the same date, falling back to the nearest prior
// date when no same-date rate exists. The operation fails, leaving the list
// untouched, only when the new default has no rate on or before a needed
// date at all.
func (r *RateList) SetDefaultCurrency(newDef string) error {
	if newDef == r.def {
		return nil
	}
	bridge, hasBridge := r.hist[newDef]

	rebased := make(map[string]*rateHistory)
	for to, h := range r.hist {
		if to == newDef {
			// flip oldDef→newDef into newDef→oldDef
			flipped := &rateHistory{}
			for i, on := range h.days {
				flipped.append(on, h.ratios[i].Inverse())
			}
			rebased[r.def] = flipped
			continue
		}
		if !hasBridge {
			return fmt.Errorf("cannot rebase onto %s: no %s→%s rates", newDef, r.def, newDef)
		}
		recomposed := &rateHistory{}
		for i, on := range h.days {
			via, ok := bridge.asOf(on)
			if !ok {
				return fmt.Errorf("cannot rebase %s→%s on %v: no %s→%s rate on or before that date", r.def, to, on, r.def, newDef)
			}
			// newDef→to = (oldDef→to) / (oldDef→newDef)
			recomposed.append(on, h.ratios[i].Div(via))
		}
		rebased[to] = recomposed
	}
	r.def = newDef
	r.hist = rebased
	return nil
}

// All iterates over every rate entry as (date, target currency, ratio), by
// currency in lexical order then chronologically.
func (r *RateList) All() iter.Seq2[Date, RateEntry] {
	return func(yield func(Date, RateEntry) bool) {
		currencies := make([]string, 0, len(r.hist))
		for c := range r.hist {
			currencies = append(currencies, c)
		}
		slices.Sort(currencies)
		for _, c := range currencies {
			h := r.hist[c]
			for i, on := range h.days {
				if !yield(on, RateEntry{To: c, Ratio: h.ratios[i]}) {
					return
				}
			}
		}
	}
}

// RateEntry is one dated conversion rate of the list.
type RateEntry struct {
	To    string
	Ratio Rate
}
