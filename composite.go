package finbase

import (
	"fmt"
	"strings"
)

// A Holding is a composite identity synthesized from an ordered
// (portfolio, security) pair. Its numeric id packs the security id into the
// low 20 bits and the portfolio id into the next 20; its display name joins
// the two entities' names with HoldingSeparator.
//
// Holdings are memoized per portfolio scope: declaring the same pair twice
// returns the same instance, until either constituent is deregistered.

const (
	compositeShift = 20
	compositeMask  = 0xFFFFF

	// HoldingSeparator joins the portfolio and security names in a
	// holding's display name. Entity names must never contain it.
	HoldingSeparator = ":"

	// ReservedName is the synthetic-name token entity names must not
	// collide with.
	ReservedName = "<none>"
)

// MaxCompositeID is the hard capacity ceiling of each packed half. This is a
// scale limit of the id scheme, not a soft guideline: PackID fails above it
// rather than truncating silently.
const MaxCompositeID = compositeMask

// PackID derives a composite numeric id from an ordered pair of entity ids.
// The derivation is pure and reversible via UnpackID.
func PackID(outer, inner int) (int, error) {
	if outer < 0 || outer > MaxCompositeID {
		return 0, fmt.Errorf("outer id %d out of range [0, %d]", outer, MaxCompositeID)
	}
	if inner < 0 || inner > MaxCompositeID {
		return 0, fmt.Errorf("inner id %d out of range [0, %d]", inner, MaxCompositeID)
	}
	return outer<<compositeShift | inner, nil
}

// UnpackID recovers the constituent ids from a packed composite id.
func UnpackID(id int) (outer, inner int) {
	return (id >> compositeShift) & compositeMask, id & compositeMask
}

// Holding is the synthesized composite entity.
type Holding struct {
	id        int
	portfolio int
	security  int
	name      string // cached display name, rebuilt lazily after ResetHoldingNames
	ds        *DataSet
}

// ID returns the packed composite id.
func (h *Holding) ID() int { return h.id }

// PortfolioID returns the outer constituent id.
func (h *Holding) PortfolioID() int { return h.portfolio }

// SecurityID returns the inner constituent id.
func (h *Holding) SecurityID() int { return h.security }

// Name returns the display name, recomputing it from the constituents when
// the cache was invalidated by a rename.
func (h *Holding) Name() string {
	if h.name != "" {
		return h.name
	}
	outer := h.ds.List(KindPortfolio).Get(h.portfolio)
	inner := h.ds.List(KindSecurity).Get(h.security)
	if outer == nil || inner == nil {
		return ReservedName
	}
	h.name = outer.Name() + HoldingSeparator + inner.Name()
	return h.name
}

// DeclareHolding returns the memoized holding for the pair, allocating the
// portfolio's scope map lazily on first use. The portfolio must still exist
// and not be deleted; both ids must fit the packed-id capacity.
func (ds *DataSet) DeclareHolding(portfolio, security *Item) (*Holding, error) {
	if portfolio == nil || portfolio.Kind() != KindPortfolio || portfolio.deleted {
		return nil, fmt.Errorf("holding requires a live portfolio")
	}
	if security == nil || security.Kind() != KindSecurity || security.deleted {
		return nil, fmt.Errorf("holding requires a live security")
	}
	id, err := PackID(portfolio.id, security.id)
	if err != nil {
		return nil, fmt.Errorf("cannot pack holding id: %w", err)
	}
	scope, ok := ds.holdings[portfolio.id]
	if !ok {
		scope = make(map[int]*Holding)
		ds.holdings[portfolio.id] = scope
	}
	if h, ok := scope[security.id]; ok {
		return h, nil
	}
	if err := checkConstituentName(portfolio.Name()); err != nil {
		return nil, err
	}
	if err := checkConstituentName(security.Name()); err != nil {
		return nil, err
	}
	h := &Holding{id: id, portfolio: portfolio.id, security: security.id, ds: ds}
	scope[security.id] = h
	return h, nil
}

func checkConstituentName(name string) error {
	if strings.Contains(name, HoldingSeparator) {
		return fmt.Errorf("entity name %q contains the reserved separator %q", name, HoldingSeparator)
	}
	if name == ReservedName {
		return fmt.Errorf("entity name %q is reserved", name)
	}
	return nil
}

// DeregisterPortfolio removes every holding in the portfolio's scope,
// required when the portfolio is deleted.
func (ds *DataSet) DeregisterPortfolio(id int) {
	delete(ds.holdings, id)
}

// DeregisterSecurity removes the security's holdings from every portfolio
// scope, required when the security is deleted. Other securities' holdings
// are unaffected.
func (ds *DataSet) DeregisterSecurity(id int) {
	for pid, scope := range ds.holdings {
		delete(scope, id)
		if len(scope) == 0 {
			delete(ds.holdings, pid)
		}
	}
}

// ResetHoldingNames invalidates every cached display name without touching
// identity, for use after a constituent rename.
func (ds *DataSet) ResetHoldingNames() {
	for _, scope := range ds.holdings {
		for _, h := range scope {
			h.name = ""
		}
	}
}
