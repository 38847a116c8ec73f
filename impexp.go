package finbase

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// RateImportSpec names the jsonpath expressions locating exchange-rate
// entries in an arbitrary provider JSON document: one path selecting the
// list of entries and three paths selecting each entry's date, target
// currency and ratio.
type RateImportSpec struct {
	Entries  string // e.g. "$.rates[*]"
	Date     string // e.g. "$.date", relative to one entry
	Currency string // e.g. "$.to"
	Ratio    string // e.g. "$.value"
}

// ImportRates pulls dated default-currency conversion rates out of a
// provider document and bulk-loads them as rate entities. It returns the
// number of entries added. The caller re-runs Ready() to bring the derived
// state up to date.
func ImportRates(ds *DataSet, r io.Reader, spec RateImportSpec) (int, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return 0, fmt.Errorf("could not decode provider document: %w", err)
	}
	jval, err := jsonpath.Get(spec.Entries, jobj)
	if err != nil {
		return 0, fmt.Errorf("error evaluating %q: %w", spec.Entries, err)
	}
	// jsonpath is never clear about whether it returns a list of answers or
	// a single answer; normalize to a list.
	entries, ok := jval.([]any)
	if !ok {
		entries = []any{jval}
	}

	list := ds.List(KindRate)
	added := 0
	for i, entry := range entries {
		values, err := rateEntryValues(entry, spec)
		if err != nil {
			return added, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, err := list.AddValues(list.NextID(), values); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func rateEntryValues(entry any, spec RateImportSpec) (map[FieldID]any, error) {
	dateStr, err := pathString(entry, spec.Date)
	if err != nil {
		return nil, err
	}
	on, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	currency, err := pathString(entry, spec.Currency)
	if err != nil {
		return nil, err
	}
	ratio, err := pathNumber(entry, spec.Ratio)
	if err != nil {
		return nil, err
	}
	return map[FieldID]any{
		FieldDate:     on,
		FieldCurrency: currency,
		FieldRatio:    R(decimal.NewFromFloat(ratio)),
	}, nil
}

func pathValue(entry any, path string) (any, error) {
	jval, err := jsonpath.Get(path, entry)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	return jval, nil
}

func pathString(entry any, path string) (string, error) {
	jval, err := pathValue(entry, path)
	if err != nil {
		return "", err
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("%q: not a string: %v", path, jval)
	}
	return s, nil
}

func pathNumber(entry any, path string) (float64, error) {
	jval, err := pathValue(entry, path)
	if err != nil {
		return 0, err
	}
	f, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("%q: not a number: %v", path, jval)
	}
	return f, nil
}
