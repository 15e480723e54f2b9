package adapter

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 7.5, 7.5, true},
		{"int", 3, 3, true},
		{"int64", int64(9), 9, true},
		{"numeric string", "7.5", 7.5, true},
		{"padded string", " 12 ", 12, true},
		{"json number", json.Number("4.5"), 4.5, true},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"nan string", "NaN", 0, false},
		{"garbage string", "abc", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("%s: toFloat(%v) = (%v, %v), want (%v, %v)", tt.name, tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToInt(t *testing.T) {
	if v, ok := toInt(7.9); !ok || v != 7 {
		t.Fatalf("toInt(7.9) = (%d, %v), want truncation to 7", v, ok)
	}
	if _, ok := toInt("x"); ok {
		t.Fatal("toInt should fail on non-numeric string")
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
		ok   bool
	}{
		{true, true, true},
		{false, false, true},
		{"true", true, true},
		{"False", false, true},
		{"1", true, true},
		{"no", false, true},
		{"maybe", false, false},
		{float64(1), true, true},
		{float64(0), false, true},
		{float64(2), false, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		got, ok := toBool(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("toBool(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToString(t *testing.T) {
	if s, ok := toString(" hi "); !ok || s != "hi" {
		t.Fatalf("toString should trim, got (%q, %v)", s, ok)
	}
	if _, ok := toString(""); ok {
		t.Fatal("empty string should be treated as missing")
	}
	if _, ok := toString(42); ok {
		t.Fatal("non-string should be treated as missing")
	}
}

func TestClamp(t *testing.T) {
	r := Range{Min: 1, Max: 50, Def: 28}

	if got := clampFloat(999, r); got != 50 {
		t.Fatalf("clampFloat over max = %v, want 50", got)
	}
	if got := clampFloat(-3, r); got != 1 {
		t.Fatalf("clampFloat under min = %v, want 1", got)
	}
	if got := clampFloat("12", r); got != 12 {
		t.Fatalf("clampFloat numeric string = %v, want 12", got)
	}
	if got := clampFloat("abc", r); got != 28 {
		t.Fatalf("clampFloat garbage = %v, want default 28", got)
	}
	if got := clampFloat(nil, r); got != 28 {
		t.Fatalf("clampFloat missing = %v, want default 28", got)
	}
	if got := clampInt(7.9, r); got != 7 {
		t.Fatalf("clampInt = %v, want 7", got)
	}
}
