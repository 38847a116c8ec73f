package finbase

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in   string
		want Date
		err  bool
	}{
		{"2024-01-31", NewDate(2024, time.January, 31), false},
		{"2024-1-3", NewDate(2024, time.January, 3), false},
		{" 2024-01-31 ", NewDate(2024, time.January, 31), false},
		{"31/01/2024", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		got, err := ParseDate(tc.in)
		if (err != nil) != tc.err {
			t.Errorf("ParseDate(%q): err=%v want err=%v", tc.in, err, tc.err)
			continue
		}
		if !tc.err && got != tc.want {
			t.Errorf("ParseDate(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestDateNormalization(t *testing.T) {
	// out-of-range components roll over
	if got := NewDate(2024, time.January, 32); got != NewDate(2024, time.February, 1) {
		t.Errorf("NewDate(2024, 1, 32)=%v want 2024-02-01", got)
	}
	if got := NewDate(2024, time.February, 29).Add(1); got != NewDate(2024, time.March, 1) {
		t.Errorf("leap day + 1 = %v want 2024-03-01", got)
	}
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2024, time.January, 10)
	b := NewDate(2024, time.February, 15)
	if !a.Before(b) || b.Before(a) {
		t.Errorf("Before broken for %v, %v", a, b)
	}
	if !b.After(a) || a.After(b) {
		t.Errorf("After broken for %v, %v", a, b)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare broken for %v, %v", a, b)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 5)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-05"` {
		t.Errorf("Marshal=%s want \"2024-03-05\"", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip=%v want %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"soon"`), &back); err == nil {
		t.Errorf("invalid date accepted")
	}
}
