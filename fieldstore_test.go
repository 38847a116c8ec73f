package finbase

import (
	"bytes"
	"errors"
	"testing"
)

func TestFieldStoreSetGet(t *testing.T) {
	s := NewFieldStore()

	if _, ok := s.Get(FieldName); ok {
		t.Errorf("Get on empty store: got ok=true")
	}
	s.Set(FieldName, "Checking")
	s.Set(FieldAmount, M(12.5, "EUR"))

	if v, ok := s.Get(FieldName); !ok || v != "Checking" {
		t.Errorf("Get(FieldName)=%v,%v want Checking,true", v, ok)
	}
	if s.Len() != 2 {
		t.Errorf("Len()=%d want 2", s.Len())
	}
	s.Unset(FieldName)
	if _, ok := s.Get(FieldName); ok {
		t.Errorf("Get after Unset: got ok=true")
	}
}

func TestFieldStoreEncryptedRoundTrip(t *testing.T) {
	c := newTestCipher(t)
	s := NewFieldStore()

	if err := s.SetPlain(FieldNotes, c, "iban FR76 3000"); err != nil {
		t.Fatalf("SetPlain: %v", err)
	}
	// the stored value must not expose the plaintext
	v, _ := s.Get(FieldNotes)
	enc, ok := v.(*Encrypted)
	if !ok {
		t.Fatalf("stored value is %T, want *Encrypted", v)
	}
	if bytes.Contains(enc.Ciphertext(), []byte("FR76")) {
		t.Errorf("ciphertext leaks plaintext")
	}

	got, err := s.Plain(FieldNotes, c)
	if err != nil {
		t.Fatalf("Plain: %v", err)
	}
	if got != "iban FR76 3000" {
		t.Errorf("Plain=%q want %q", got, "iban FR76 3000")
	}
}

func TestFieldStoreLazyDecode(t *testing.T) {
	c := newTestCipher(t)
	ciphertext, err := c.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	s := NewFieldStore()
	s.SetCipher(FieldNumber, ciphertext)

	// before the first read only the ciphertext side is populated
	v, _ := s.Get(FieldNumber)
	if enc := v.(*Encrypted); enc.hasPlain {
		t.Errorf("plaintext cached before first read")
	}
	got, err := s.Plain(FieldNumber, c)
	if err != nil || got != "secret" {
		t.Fatalf("Plain=%q,%v want secret,nil", got, err)
	}
	// decoded once, served from cache afterwards
	if enc := v.(*Encrypted); !enc.hasPlain {
		t.Errorf("plaintext not cached after read")
	}
	if got, err = s.Plain(FieldNumber, failCipher{}); err != nil || got != "secret" {
		t.Errorf("cached Plain=%q,%v want secret,nil", got, err)
	}
}

func TestFieldStoreSetPlainFailureLeavesStoreUntouched(t *testing.T) {
	c := newTestCipher(t)
	s := NewFieldStore()
	if err := s.SetPlain(FieldNotes, c, "original"); err != nil {
		t.Fatal(err)
	}

	err := s.SetPlain(FieldNotes, failCipher{}, "replacement")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("SetPlain error=%v want *EncodingError", err)
	}
	if encErr.Field != FieldNotes {
		t.Errorf("EncodingError.Field=%v want FieldNotes", encErr.Field)
	}
	if got, _ := s.Plain(FieldNotes, c); got != "original" {
		t.Errorf("after failed SetPlain field holds %q want %q", got, "original")
	}
}

func TestFieldStorePlainOnUnencryptedField(t *testing.T) {
	s := NewFieldStore()
	s.Set(FieldName, "plain name")
	if _, err := s.Plain(FieldName, newTestCipher(t)); err == nil {
		t.Errorf("Plain on unencrypted field: got nil error")
	}
}

func TestFieldStoreCloneIsDeep(t *testing.T) {
	c := newTestCipher(t)
	s := NewFieldStore()
	s.Set(FieldName, "Checking")
	if err := s.SetPlain(FieldNotes, c, "secret"); err != nil {
		t.Fatal(err)
	}

	clone := s.Clone()
	if !s.Equal(clone) {
		t.Fatalf("clone not equal to original")
	}
	// mutating the clone's encrypted value must not affect the original
	if err := clone.SetPlain(FieldNotes, c, "other"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Plain(FieldNotes, c); got != "secret" {
		t.Errorf("original mutated through clone: %q", got)
	}
	if s.Equal(clone) {
		t.Errorf("stores equal after diverging")
	}
}

func TestFieldStoreEqual(t *testing.T) {
	c := newTestCipher(t)

	a := NewFieldStore()
	a.Set(FieldName, "x")
	a.Set(FieldAmount, M(10, "EUR"))
	if err := a.SetPlain(FieldNotes, c, "note"); err != nil {
		t.Fatal(err)
	}

	// same plaintext, independently encrypted: ciphertexts differ but the
	// cached plaintext decides
	b := NewFieldStore()
	b.Set(FieldName, "x")
	b.Set(FieldAmount, M(10.00, "EUR"))
	if err := b.SetPlain(FieldNotes, c, "note"); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("stores with identical content not equal")
	}

	b.Set(FieldName, "y")
	if a.Equal(b) {
		t.Errorf("stores equal after field change")
	}
	b.Set(FieldName, "x")
	b.Set(FieldDate, NewDate(2024, 1, 1))
	if a.Equal(b) {
		t.Errorf("stores equal with different field counts")
	}
}

func TestFieldStoreFieldsOrdered(t *testing.T) {
	s := NewFieldStore()
	s.Set(FieldCurrency, "EUR")
	s.Set(FieldName, "a")
	s.Set(FieldAmount, M(1, "EUR"))

	var got []FieldID
	for id := range s.Fields() {
		got = append(got, id)
	}
	want := []FieldID{FieldName, FieldCurrency, FieldAmount}
	if len(got) != len(want) {
		t.Fatalf("Fields yielded %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Fields[%d]=%v want %v", i, got[i], want[i])
		}
	}
}
