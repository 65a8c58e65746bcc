package calculator

import (
	"math"
	"strings"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tenth, fifth := 0.1, 0.2

	tests := []struct {
		in   float64
		want string
	}{
		{in: 150, want: "150"},
		{in: -5, want: "-5"},
		{in: tenth + fifth, want: "0.30000000000000004"},
		{in: math.Copysign(0, -1), want: "0"},
		{in: 1e21, want: "1e+21"},
		{in: 1.5e-7, want: "1.5e-7"},
		{in: 123456789012345680000, want: "123456789012345680000"},
		{in: 0.000001, want: "0.000001"},
		{in: math.Inf(1), want: "Infinity"},
		{in: math.Inf(-1), want: "-Infinity"},
		{in: math.NaN(), want: "NaN"},
	}

	for _, tc := range tests {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestFormatFixed2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 83, want: "83.00"},
		{in: 1.005, want: "1.00"},
		{in: 2.675, want: "2.67"},
		{in: 1.045, want: "1.04"},
		{in: 0.125, want: "0.13"},
		{in: 166, want: "166.00"},
		{in: 1e21, want: "1e+21"},
		{in: math.Inf(1), want: "Infinity"},
	}

	for _, tc := range tests {
		if got := FormatFixed2(tc.in); got != tc.want {
			t.Fatalf("FormatFixed2(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseOperandAcceptsResults(t *testing.T) {
	for _, in := range []string{"Infinity", "-Infinity", "1e+21", "0.", "-5"} {
		if _, ok := parseOperand(in); !ok {
			t.Fatalf("expected %q to parse", in)
		}
	}

	huge := "1" + strings.Repeat("0", 310)
	ranged := map[string]float64{
		huge:       math.Inf(1),
		"-" + huge: math.Inf(-1),
		"1e400":    math.Inf(1),
		"1e-400":   0,
	}
	for in, want := range ranged {
		got, ok := parseOperand(in)
		if !ok {
			t.Fatalf("expected out-of-range %q to parse", in)
		}
		if got != want {
			t.Fatalf("parseOperand(%q): expected %v, got %v", in, want, got)
		}
	}
	for _, in := range []string{"", ".", "NaN", "abc"} {
		if _, ok := parseOperand(in); ok {
			t.Fatalf("expected %q not to parse", in)
		}
	}
}
