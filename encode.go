package finbase

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountRec reads a monetary amount in its two persisted fields.
type amountRec struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountRec) Money() Money { return M(a.Amount, a.Currency) }

// EncodeItem writes one item as a single JSONL line with a kind
// discriminator. Encrypted fields are persisted as base64 ciphertext, never
// plaintext.
func EncodeItem(w io.Writer, it *Item) error {
	line := make(map[string]any, it.store.Len()+2)
	line["kind"] = it.Kind().String()
	line["id"] = it.ID()
	for f, v := range it.store.Fields() {
		name := f.String()
		switch v := v.(type) {
		case *Encrypted:
			line[name] = base64.StdEncoding.EncodeToString(v.Ciphertext())
		case Date:
			line[name] = v.String()
		case Money:
			line[name] = map[string]any{"amount": v.Amount(), "currency": v.Currency()}
		default:
			line[name] = v
		}
	}
	b, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("could not encode %v %d: %w", it.Kind(), it.ID(), err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// EncodeDataSet writes every non-deleted item of the dataset as JSONL, one
// kind after another in load order.
func EncodeDataSet(w io.Writer, ds *DataSet) error {
	for _, k := range Kinds() {
		for it := range ds.List(k).Items() {
			if it.Deleted() {
				continue
			}
			if err := EncodeItem(w, it); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeDataSet reads a JSONL stream produced by EncodeDataSet, feeds every
// line through bulk load, then runs the mandatory order-dependent sequence:
// resolve links, sort, rebuild maps, touch pass. Any duplicate id or
// dangling reference aborts the whole load.
func DecodeDataSet(r io.Reader, cipher Cipherer, defaultCurrency string) (*DataSet, error) {
	ds := NewDataSet(cipher, defaultCurrency)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // skip empty lines
		}
		var identifier struct {
			Kind string `json:"kind"`
			ID   int    `json:"id"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify kind in line %q: %w", string(lineBytes), err)
		}
		kind, err := ParseKind(identifier.Kind)
		if err != nil {
			return nil, fmt.Errorf("in line %q: %w", string(lineBytes), err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(lineBytes, &raw); err != nil {
			return nil, err
		}
		list := ds.List(kind)
		values, err := decodeValues(list.schema, raw)
		if err != nil {
			return nil, fmt.Errorf("%v %d: %w", kind, identifier.ID, err)
		}
		if _, err := list.AddValues(identifier.ID, values); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := ds.Ready(); err != nil {
		return nil, err
	}
	return ds, nil
}

// decodeValues maps a raw JSON object onto typed field values following the
// kind's schema.
func decodeValues(schema Schema, raw map[string]json.RawMessage) (map[FieldID]any, error) {
	values := make(map[FieldID]any, len(raw))
	for _, f := range schema.Fields {
		msg, ok := raw[f.String()]
		if !ok {
			continue
		}
		v, err := decodeFieldValue(f, msg, schema.isEncrypted(f))
		if err != nil {
			return nil, err
		}
		values[f] = v
	}
	return values, nil
}

func decodeFieldValue(f FieldID, msg json.RawMessage, encrypted bool) (any, error) {
	if encrypted {
		var b64 string
		if err := json.Unmarshal(msg, &b64); err != nil {
			return nil, &EncodingError{Field: f, Err: err}
		}
		ciphertext, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, &EncodingError{Field: f, Err: err}
		}
		return ciphertext, nil
	}
	switch f {
	case FieldDate:
		var d Date
		if err := json.Unmarshal(msg, &d); err != nil {
			return nil, err
		}
		return d, nil
	case FieldAmount:
		var a amountRec
		if err := json.Unmarshal(msg, &a); err != nil {
			return nil, err
		}
		return a.Money(), nil
	case FieldRatio:
		var r Rate
		if err := json.Unmarshal(msg, &r); err != nil {
			return nil, err
		}
		return r, nil
	case FieldParent, FieldAccount, FieldPayee, FieldSecurity, FieldPortfolio, FieldYear:
		var i int
		if err := json.Unmarshal(msg, &i); err != nil {
			return nil, err
		}
		return i, nil
	case FieldReconciled:
		var b bool
		if err := json.Unmarshal(msg, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
}
