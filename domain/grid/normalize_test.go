package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Visits", "visits"},
		{"Cart_Add", "cartadd"},
		{"Step 2 > Cart-Add (PC)", "step2cartaddpc"},
		{"  Orders  ", "orders"},
		{"Revenue ($)", "revenue"},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeLabel(tt.in)
		assert.Equal(t, tt.want, got, "NormalizeLabel(%q)", tt.in)
		assert.Equal(t, got, NormalizeLabel(got), "NormalizeLabel must be idempotent for %q", tt.in)
	}
}

func TestCoreLabel(t *testing.T) {
	assert.Equal(t, "stepcartadd", CoreLabel("Step 2 > Cart_Add (3)"))
	assert.Equal(t, "orders", CoreLabel("Orders (2)"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1,234", 1234, true},
		{" 12 345.5 ", 12345.5, true},
		{"0", 0, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"-", 0, false},
		{"N/A", 0, false},
		{"nan", 0, false},
		{"None", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseNumber(%q) ok", tt.raw)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "ParseNumber(%q)", tt.raw)
		}
	}
}
