package finbase

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the concrete entity kinds held in a dataset. The framework
// is generic over kinds; per-kind behavior lives in the Schema hooks below.
type Kind int

const (
	KindAccount Kind = iota + 1
	KindPayee
	KindSecurity
	KindPortfolio
	KindTransaction
	KindRate
	KindTaxYear
)

func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindPayee:
		return "payee"
	case KindSecurity:
		return "security"
	case KindPortfolio:
		return "portfolio"
	case KindTransaction:
		return "transaction"
	case KindRate:
		return "rate"
	case KindTaxYear:
		return "taxyear"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a kind name as used on the CLI and in data files.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind: %q", s)
}

// Kinds returns every entity kind in load order: referenced kinds come
// before the kinds referencing them, so link resolution is single-pass.
func Kinds() []Kind {
	return []Kind{KindAccount, KindPayee, KindSecurity, KindPortfolio, KindRate, KindTaxYear, KindTransaction}
}

// Field identifiers. Stable: they appear in persisted data.
const (
	FieldName       FieldID = iota + 1 // string, display name
	FieldSymbol                        // string, security ticker symbol
	FieldCurrency                      // string, ISO currency code
	FieldDate                          // Date
	FieldRatio                         // Rate, default-currency conversion ratio
	FieldParent                        // int, parent account id
	FieldNumber                        // encrypted, account number
	FieldNotes                         // encrypted, free text
	FieldAmount                        // Money
	FieldAccount                       // int, account reference
	FieldPayee                         // int, payee reference
	FieldSecurity                      // int, security reference
	FieldPortfolio                     // int, portfolio reference
	FieldReconciled                    // bool
	FieldYear                          // int, tax year
)

var fieldNames = map[FieldID]string{
	FieldName:       "name",
	FieldSymbol:     "symbol",
	FieldCurrency:   "currency",
	FieldDate:       "date",
	FieldRatio:      "ratio",
	FieldParent:     "parent",
	FieldNumber:     "number",
	FieldNotes:      "notes",
	FieldAmount:     "amount",
	FieldAccount:    "account",
	FieldPayee:      "payee",
	FieldSecurity:   "security",
	FieldPortfolio:  "portfolio",
	FieldReconciled: "reconciled",
	FieldYear:       "year",
}

func (f FieldID) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Schema is the per-kind contract the generic framework enforces
// mechanically: which fields exist, which hold references into which sibling
// list, which keys must be unique, and the entity-specific rule hooks.
type Schema struct {
	Fields    []FieldID
	Encrypted []FieldID
	// Refs maps reference fields to the kind they point into.
	Refs map[FieldID]Kind
	// Keys returns the item's uniqueness keys, registered in the list's
	// instance map. Each key remembers the field it validates so duplicate
	// errors land on the right field.
	Keys func(it *Item) []UniqueKey
	// CompositeKey returns a two-level uniqueness key (e.g. one rate per
	// (currency, date) pair), or ok=false when the kind has none.
	CompositeKey func(it *Item) (outer, inner string, ok bool)
	// Chronological lists sort date-descending (then id) and support as-of
	// lookups.
	Chronological bool
	// Validate appends entity-specific rule violations to the item.
	Validate func(it *Item)
}

func itemDate(it *Item) (Date, bool) {
	v, ok := it.Get(FieldDate)
	if !ok {
		return Date{}, false
	}
	d, ok := v.(Date)
	return d, ok
}

func itemString(it *Item, f FieldID) string {
	if v, ok := it.Get(f); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func itemInt(it *Item, f FieldID) (int, bool) {
	v, ok := it.Get(f)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// UniqueKey is one uniqueness key of one item.
type UniqueKey struct {
	Field FieldID
	Value string
}

func nameKeys(it *Item) []UniqueKey {
	if n := it.Name(); n != "" {
		return []UniqueKey{{FieldName, n}}
	}
	return nil
}

// validateName enforces the invariants every nameable entity shares: a name
// is required, must not contain the holding separator, and must not collide
// with the reserved synthetic-name token.
func validateName(it *Item) {
	name := it.Name()
	if name == "" {
		it.Errors().Add(FieldName, "name is required")
		return
	}
	if strings.Contains(name, HoldingSeparator) {
		it.Errors().Add(FieldName, "name must not contain "+HoldingSeparator)
	}
	if name == ReservedName {
		it.Errors().Add(FieldName, "name is reserved")
	}
}

// schemaOf returns the schema for a kind.
func schemaOf(k Kind) Schema {
	switch k {
	case KindAccount:
		return Schema{
			Fields:    []FieldID{FieldName, FieldCurrency, FieldParent, FieldNumber, FieldNotes},
			Encrypted: []FieldID{FieldNumber, FieldNotes},
			Refs:      map[FieldID]Kind{FieldParent: KindAccount},
			Keys:      nameKeys,
			Validate:  validateName,
		}
	case KindPayee:
		return Schema{
			Fields:    []FieldID{FieldName, FieldNotes},
			Encrypted: []FieldID{FieldNotes},
			Keys:      nameKeys,
			Validate:  validateName,
		}
	case KindSecurity:
		return Schema{
			Fields: []FieldID{FieldName, FieldSymbol, FieldCurrency},
			Keys: func(it *Item) []UniqueKey {
				keys := nameKeys(it)
				if s := itemString(it, FieldSymbol); s != "" {
					keys = append(keys, UniqueKey{FieldSymbol, "symbol:" + s})
				}
				return keys
			},
			Validate: func(it *Item) {
				validateName(it)
				if itemString(it, FieldSymbol) == "" {
					it.Errors().Add(FieldSymbol, "symbol is required")
				}
			},
		}
	case KindPortfolio:
		return Schema{
			Fields:   []FieldID{FieldName, FieldCurrency},
			Keys:     nameKeys,
			Validate: validateName,
		}
	case KindTransaction:
		return Schema{
			Fields:    []FieldID{FieldDate, FieldAmount, FieldAccount, FieldPayee, FieldSecurity, FieldPortfolio, FieldReconciled, FieldNotes},
			Encrypted: []FieldID{FieldNotes},
			Refs: map[FieldID]Kind{
				FieldAccount:   KindAccount,
				FieldPayee:     KindPayee,
				FieldSecurity:  KindSecurity,
				FieldPortfolio: KindPortfolio,
			},
			Chronological: true,
			Validate: func(it *Item) {
				if _, ok := itemDate(it); !ok {
					it.Errors().Add(FieldDate, "date is required")
				}
				if _, ok := itemInt(it, FieldAccount); !ok {
					it.Errors().Add(FieldAccount, "account is required")
				}
			},
		}
	case KindRate:
		return Schema{
			Fields:        []FieldID{FieldDate, FieldCurrency, FieldRatio},
			Chronological: true,
			CompositeKey: func(it *Item) (string, string, bool) {
				cur := itemString(it, FieldCurrency)
				on, ok := itemDate(it)
				if cur == "" || !ok {
					return "", "", false
				}
				return cur, on.String(), true
			},
			Validate: func(it *Item) {
				if _, ok := itemDate(it); !ok {
					it.Errors().Add(FieldDate, "date is required")
				}
				if itemString(it, FieldCurrency) == "" {
					it.Errors().Add(FieldCurrency, "currency is required")
				}
				v, ok := it.Get(FieldRatio)
				r, isRate := v.(Rate)
				if !ok || !isRate || !r.IsPositive() {
					it.Errors().Add(FieldRatio, "ratio must be strictly positive")
				}
			},
		}
	case KindTaxYear:
		return Schema{
			Fields:    []FieldID{FieldYear, FieldNotes},
			Encrypted: []FieldID{FieldNotes},
			Keys: func(it *Item) []UniqueKey {
				if y, ok := itemInt(it, FieldYear); ok {
					return []UniqueKey{{FieldYear, strconv.Itoa(y)}}
				}
				return nil
			},
			Validate: func(it *Item) {
				if _, ok := itemInt(it, FieldYear); !ok {
					it.Errors().Add(FieldYear, "year is required")
				}
			},
		}
	default:
		return Schema{}
	}
}
