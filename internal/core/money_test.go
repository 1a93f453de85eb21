package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12,345", 1235, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("%q expected ErrInvalid, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyDiv(t *testing.T) {
	cases := []struct {
		total int64
		n     int
		want  int64
	}{
		{10000, 3, 3333},
		{10000, 4, 2500},
		{5, 2, 3}, // 0.025 rounds half-up
		{1000, 1, 1000},
		{20000, 6, 3333},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.total}).Div(tc.n); got.Cents != tc.want {
			t.Errorf("%d/%d expected %d, got %d", tc.total, tc.n, tc.want, got.Cents)
		}
	}
}

func TestMoneyMulAndPercent(t *testing.T) {
	if got := Reais(1000).Mul(0.15); got.Cents != 15000 {
		t.Fatalf("expected 15000, got %d", got.Cents)
	}
	if got := Reais(5000).Percent(25); got.Cents != 125000 {
		t.Fatalf("expected 125000, got %d", got.Cents)
	}
	if got := Reais(0.15).Mul(0.7); got.Cents != 11 { // 0.105 -> 0.11
		t.Fatalf("expected 11, got %d", got.Cents)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:         "R$ 0,00",
		5:         "R$ 0,05",
		123456:    "R$ 1.234,56",
		100000000: "R$ 1.000.000,00",
		-2550:     "-R$ 25,50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("%d expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}{Money{Cents: 3333}, Money{Cents: -500}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":33.33,"b":-5.00}` {
		t.Fatalf("unexpected json %s", b)
	}

	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":12.345,"b":"7,5","c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != 1235 || v.B.Cents != 750 || v.C.Cents != 0 {
		t.Fatalf("unexpected values %+v", v)
	}
	if err := json.Unmarshal([]byte(`{"a":"abc"}`), &v); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}
