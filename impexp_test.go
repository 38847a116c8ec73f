package finbase

import (
	"strings"
	"testing"
)

func TestImportRates(t *testing.T) {
	ds := newTestDataSet(t)
	doc := `{
	  "base": "GBP",
	  "rates": [
	    {"date": "2024-03-01", "to": "EUR", "value": 0.84},
	    {"date": "2024-03-01", "to": "USD", "value": 1.26}
	  ]
	}`

	added, err := ImportRates(ds, strings.NewReader(doc), RateImportSpec{
		Entries:  "$.rates[*]",
		Date:     "$.date",
		Currency: "$.to",
		Ratio:    "$.value",
	})
	if err != nil {
		t.Fatalf("ImportRates: %v", err)
	}
	if added != 2 {
		t.Errorf("added=%d want 2", added)
	}
	if err := ds.Ready(); err != nil {
		t.Fatalf("Ready after import: %v", err)
	}

	got, ok := ds.Rates().RateAsOf("EUR", MustParseDate("2024-03-05"))
	if !ok || !got.Equal(R(0.84)) {
		t.Errorf("imported EUR rate=%v,%v want 0.84", got, ok)
	}
	got, ok = ds.Rates().RateAsOf("USD", MustParseDate("2024-03-05"))
	if !ok || !got.Equal(R(1.26)) {
		t.Errorf("imported USD rate=%v,%v want 1.26", got, ok)
	}
}

func TestImportRatesSingleEntryDocument(t *testing.T) {
	ds := newTestDataSet(t)
	doc := `{"quote": {"date": "2024-03-01", "to": "CHF", "value": 0.96}}`

	added, err := ImportRates(ds, strings.NewReader(doc), RateImportSpec{
		Entries:  "$.quote",
		Date:     "$.date",
		Currency: "$.to",
		Ratio:    "$.value",
	})
	if err != nil {
		t.Fatalf("ImportRates: %v", err)
	}
	if added != 1 {
		t.Errorf("added=%d want 1", added)
	}
}

func TestImportRatesBadDocument(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"not json", "nope"},
		{"bad date", `{"rates":[{"date":"soon","to":"EUR","value":0.8}]}`},
		{"ratio not a number", `{"rates":[{"date":"2024-03-01","to":"EUR","value":"high"}]}`},
	}
	spec := RateImportSpec{Entries: "$.rates[*]", Date: "$.date", Currency: "$.to", Ratio: "$.value"}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ds := newTestDataSet(t)
			if _, err := ImportRates(ds, strings.NewReader(tc.doc), spec); err == nil {
				t.Errorf("ImportRates accepted %s", tc.name)
			}
		})
	}
}
