package finbase

import (
	"errors"
	"testing"

	"github.com/finbase/finbase/vault"
)

// newTestCipher returns a real vault cipher with a fixed key.
func newTestCipher(t *testing.T) Cipherer {
	t.Helper()
	key := make([]byte, vault.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	c, err := vault.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return c
}

// failCipher refuses every operation, to exercise the all-or-nothing
// contract of encrypted field mutation.
type failCipher struct{}

func (failCipher) Encrypt([]byte) ([]byte, error) { return nil, errors.New("boom") }
func (failCipher) Decrypt([]byte) ([]byte, error) { return nil, errors.New("boom") }

// newTestDataSet builds a small consistent dataset:
// two accounts (Checking with parent Assets), a payee, a security, two
// portfolios, two transactions and three EUR/USD rates, pivot GBP.
func newTestDataSet(t *testing.T) *DataSet {
	t.Helper()
	ds := NewDataSet(newTestCipher(t), "GBP")

	accounts := ds.List(KindAccount)
	mustAddValues(t, accounts, 1, map[FieldID]any{FieldName: "Assets", FieldCurrency: "GBP"})
	mustAddValues(t, accounts, 2, map[FieldID]any{FieldName: "Checking", FieldCurrency: "GBP", FieldParent: 1})

	payees := ds.List(KindPayee)
	mustAddValues(t, payees, 1, map[FieldID]any{FieldName: "Grocer"})

	securities := ds.List(KindSecurity)
	mustAddValues(t, securities, 7, map[FieldID]any{FieldName: "World Fund", FieldSymbol: "WRLD", FieldCurrency: "USD"})

	portfolios := ds.List(KindPortfolio)
	mustAddValues(t, portfolios, 3, map[FieldID]any{FieldName: "Retirement", FieldCurrency: "GBP"})
	mustAddValues(t, portfolios, 4, map[FieldID]any{FieldName: "Trading", FieldCurrency: "GBP"})

	txs := ds.List(KindTransaction)
	mustAddValues(t, txs, 1, map[FieldID]any{
		FieldDate:       MustParseDate("2024-01-10"),
		FieldAccount:    2,
		FieldPayee:      1,
		FieldAmount:     M(-42.50, "GBP"),
		FieldReconciled: true,
	})
	mustAddValues(t, txs, 2, map[FieldID]any{
		FieldDate:      MustParseDate("2024-02-15"),
		FieldAccount:   2,
		FieldSecurity:  7,
		FieldPortfolio: 3,
		FieldAmount:    M(-100, "GBP"),
	})

	rates := ds.List(KindRate)
	mustAddValues(t, rates, 1, map[FieldID]any{FieldDate: MustParseDate("2024-01-01"), FieldCurrency: "EUR", FieldRatio: R(0.85)})
	mustAddValues(t, rates, 2, map[FieldID]any{FieldDate: MustParseDate("2024-02-01"), FieldCurrency: "EUR", FieldRatio: R(0.80)})
	mustAddValues(t, rates, 3, map[FieldID]any{FieldDate: MustParseDate("2024-01-01"), FieldCurrency: "USD", FieldRatio: R(1.27)})

	if err := ds.Ready(); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	return ds
}

func mustAddValues(t *testing.T, l *List, id int, values map[FieldID]any) *Item {
	t.Helper()
	it, err := l.AddValues(id, values)
	if err != nil {
		t.Fatalf("AddValues(%v, %d): %v", l.Kind(), id, err)
	}
	return it
}
