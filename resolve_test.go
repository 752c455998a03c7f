package flightlog

import (
	"math"
	"testing"
)

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{in: 12.5, want: 12.5, ok: true},
		{in: 7, want: 7, ok: true},
		{in: "42", want: 42, ok: true},
		{in: " -3.25 ", want: -3.25, ok: true},
		{in: "0x1F", want: 31, ok: true},
		{in: "0XFF", want: 255, ok: true},
		{in: "-0x10", want: -16, ok: true},
		{in: "1e3", want: 1000, ok: true},
		{in: "", ok: false},
		{in: "   ", ok: false},
		{in: "abc", ok: false},
		{in: "0xZZ", ok: false},
		{in: "NaN", ok: false},
		{in: "Inf", ok: false},
		{in: "+Inf", ok: false},
		{in: "-Infinity", ok: false},
		{in: math.Inf(1), ok: false},
		{in: math.NaN(), ok: false},
		{in: nil, ok: false},
		{in: true, ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseNumeric(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseNumeric(%#v) ok=%v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseNumeric(%#v)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValueUsesFirstNonEmptyAlias(t *testing.T) {
	row := Row{"esc1_voltage": "", "esc1_volt": "16.8", "ESC1_VOLTAGE": 99.0}
	v := Value(row, ChannelESC1Voltage)
	if v == nil || *v != 16.8 {
		t.Fatalf("expected 16.8 from esc1_volt, got %v", v)
	}
	header, ok := ResolvedHeader(row, ChannelESC1Voltage)
	if !ok || header != "esc1_volt" {
		t.Fatalf("unexpected resolved header %q (ok=%v)", header, ok)
	}
}

func TestValueSkipsUnparseableAlias(t *testing.T) {
	row := Row{"blackbox.attitude.roll": "abc", "roll": 0.5}
	if v := Value(row, ChannelRoll); v == nil || *v != 0.5 {
		t.Fatalf("expected 0.5 from roll, got %v", v)
	}
	header, ok := ResolvedHeader(row, ChannelRoll)
	if !ok || header != "roll" {
		t.Fatalf("unexpected resolved header %q (ok=%v)", header, ok)
	}

	row = Row{"blackbox.error": "abc", "error": "Inf"}
	if v := Value(row, ChannelError); v != nil {
		t.Fatalf("expected nil when no alias parses, got %v", *v)
	}
	if _, ok := ResolvedHeader(row, ChannelError); ok {
		t.Fatalf("expected no resolved header when no alias parses")
	}
}

func TestValueHexAndUnknownChannel(t *testing.T) {
	row := Row{"error": "0x1F", "custom_field": "3"}
	if v := Value(row, ChannelError); v == nil || *v != 31 {
		t.Fatalf("expected hex 31, got %v", v)
	}
	if v := Value(row, "custom_field"); v == nil || *v != 3 {
		t.Fatalf("expected verbatim lookup of unknown channel, got %v", v)
	}
	if v := Value(Row{}, ChannelError); v != nil {
		t.Fatalf("expected nil for missing column, got %v", *v)
	}
	if v := Value(nil, ChannelError); v != nil {
		t.Fatalf("expected nil for nil row, got %v", *v)
	}
}
