package finbase

import (
	"bytes"
	"iter"
	"reflect"
	"slices"
)

// FieldID identifies one field of an entity. Identifiers are stable and
// enumerated per kind in entities.go.
type FieldID int

// Cipherer is the encryption contract the field store depends on. The vault
// package provides the production implementation.
type Cipherer interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Encrypted holds one encrypted field value in dual representation: the
// ciphertext, always present once set, and an optional decoded plaintext
// cache. A mutation always refreshes both sides or neither, so the two
// representations are never simultaneously stale.
type Encrypted struct {
	cipher   []byte
	plain    string
	hasPlain bool
}

// Ciphertext returns the stored ciphertext bytes.
func (e *Encrypted) Ciphertext() []byte { return e.cipher }

func (e *Encrypted) clone() *Encrypted {
	c := &Encrypted{plain: e.plain, hasPlain: e.hasPlain}
	c.cipher = slices.Clone(e.cipher)
	return c
}

// equal compares plaintext when both sides have it cached. Re-encrypting the
// same plaintext yields different bytes (random nonce), so the ciphertext is
// only compared when a plaintext cache is missing on either side.
func (e *Encrypted) equal(o *Encrypted) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.hasPlain && o.hasPlain {
		return e.plain == o.plain
	}
	return bytes.Equal(e.cipher, o.cipher)
}

// FieldStore is the per-item map from field identifier to value. Values are
// plain scalars/objects or *Encrypted fields.
type FieldStore struct {
	values map[FieldID]any
	onSet  func(FieldID) // dirty-marking hook installed by the owning Item
}

// NewFieldStore returns an empty store.
func NewFieldStore() *FieldStore {
	return &FieldStore{values: make(map[FieldID]any)}
}

// Get returns the value for a field, or false when the field is not set.
func (s *FieldStore) Get(id FieldID) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Set stores a plain value and marks the owning item changed.
func (s *FieldStore) Set(id FieldID, v any) {
	s.values[id] = v
	s.changed(id)
}

// Unset removes a field value and marks the owning item changed.
func (s *FieldStore) Unset(id FieldID) {
	if _, ok := s.values[id]; !ok {
		return
	}
	delete(s.values, id)
	s.changed(id)
}

// SetPlain stores an encrypted field from its plaintext. Encryption happens
// synchronously so both representations are fresh; on failure the store is
// left untouched for that field.
func (s *FieldStore) SetPlain(id FieldID, c Cipherer, plaintext string) error {
	ciphertext, err := c.Encrypt([]byte(plaintext))
	if err != nil {
		return &EncodingError{Field: id, Err: err}
	}
	s.values[id] = &Encrypted{cipher: ciphertext, plain: plaintext, hasPlain: true}
	s.changed(id)
	return nil
}

// SetCipher stores an encrypted field from its ciphertext, deferring
// plaintext decoding until first read.
func (s *FieldStore) SetCipher(id FieldID, ciphertext []byte) {
	s.values[id] = &Encrypted{cipher: slices.Clone(ciphertext)}
	s.changed(id)
}

// Plain resolves the plaintext of an encrypted field, decoding and caching
// it on first read. Reading a field that is not set returns "".
func (s *FieldStore) Plain(id FieldID, c Cipherer) (string, error) {
	v, ok := s.values[id]
	if !ok {
		return "", nil
	}
	enc, ok := v.(*Encrypted)
	if !ok {
		return "", &EncodingError{Field: id, Err: errNotEncrypted}
	}
	if enc.hasPlain {
		return enc.plain, nil
	}
	plaintext, err := c.Decrypt(enc.cipher)
	if err != nil {
		return "", &EncodingError{Field: id, Err: err}
	}
	enc.plain, enc.hasPlain = string(plaintext), true
	return enc.plain, nil
}

// Len returns the number of set fields.
func (s *FieldStore) Len() int { return len(s.values) }

// Fields iterates over set fields in ascending field-id order.
func (s *FieldStore) Fields() iter.Seq2[FieldID, any] {
	return func(yield func(FieldID, any) bool) {
		ids := make([]FieldID, 0, len(s.values))
		for id := range s.values {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if !yield(id, s.values[id]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the store. The clone carries no dirty hook.
func (s *FieldStore) Clone() *FieldStore {
	c := NewFieldStore()
	for id, v := range s.values {
		if enc, ok := v.(*Encrypted); ok {
			c.values[id] = enc.clone()
			continue
		}
		c.values[id] = v
	}
	return c
}

// Equal compares two stores field by field.
func (s *FieldStore) Equal(o *FieldStore) bool {
	if len(s.values) != len(o.values) {
		return false
	}
	for id, v := range s.values {
		w, ok := o.values[id]
		if !ok || !valueEqual(v, w) {
			return false
		}
	}
	return true
}

func (s *FieldStore) changed(id FieldID) {
	if s.onSet != nil {
		s.onSet(id)
	}
}

// valueEqual compares two field values, honoring the domain types' own
// equality where they define one.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Encrypted:
		bv, ok := b.(*Encrypted)
		return ok && av.equal(bv)
	case Money:
		bv, ok := b.(Money)
		return ok && av.Equal(bv)
	case Rate:
		bv, ok := b.(Rate)
		return ok && av.Equal(bv)
	case Date:
		bv, ok := b.(Date)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

type notEncryptedError struct{}

func (notEncryptedError) Error() string { return "field does not hold an encrypted value" }

var errNotEncrypted = notEncryptedError{}
