package finbase

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a conversion ratio between two currencies. A valid rate is
// strictly positive.
type Rate struct {
	value decimal.Decimal
}

func R[T float32 | float64 | int | int64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

func (r Rate) Equal(o Rate) bool        { return r.value.Equal(o.value) }
func (r Rate) IsPositive() bool         { return r.value.IsPositive() }
func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) Mul(o Rate) Rate          { return Rate{value: r.value.Mul(o.value)} }
func (r Rate) Div(o Rate) Rate          { return Rate{value: r.value.Div(o.value)} }
func (r Rate) String() string           { return r.value.String() }
func (r Rate) Value() decimal.Decimal   { return r.value }

// Inverse returns 1/r.
func (r Rate) Inverse() Rate {
	return Rate{value: decimal.NewFromInt(1).Div(r.value)}
}

// Apply converts a monetary amount into 'to' using this ratio.
func (r Rate) Apply(m Money, to string) Money {
	return M(m.value.Mul(r.value), to)
}

// Validate returns an error unless the rate is strictly positive.
func (r Rate) Validate() error {
	if !r.value.IsPositive() {
		return fmt.Errorf("rate must be strictly positive, got %s", r.value)
	}
	return nil
}

func (r Rate) MarshalJSON() ([]byte, error) { return r.value.MarshalJSON() }

func (r *Rate) UnmarshalJSON(b []byte) error { return r.value.UnmarshalJSON(b) }
