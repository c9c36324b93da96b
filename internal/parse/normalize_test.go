package parse

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		valid bool
	}{
		{name: "plain integer", raw: "100", want: 100, valid: true},
		{name: "plain decimal", raw: "12.5", want: 12.5, valid: true},
		{name: "comma decimal", raw: "12,5", want: 12.5, valid: true},
		{name: "dot grouping", raw: "1.234", want: 1234, valid: true},
		{name: "underscore grouping", raw: "1_000", want: 1000, valid: true},
		{name: "repeated grouping", raw: "1.234.567", want: 1234567, valid: true},
		{name: "four decimals is not grouping", raw: "1.2345", want: 1.2345, valid: true},
		{name: "dollar sign", raw: "$100", want: 100, valid: true},
		{name: "euro grouping", raw: "€1.000", want: 1000, valid: true},
		{name: "embedded whitespace", raw: " 12 345 ", want: 12345, valid: true},
		{name: "swiss quote grouping", raw: "12'345", want: 12345, valid: true},
		{name: "unicode minus", raw: "−5", want: -5, valid: true},
		{name: "en dash minus", raw: "–3.5", want: -3.5, valid: true},
		{name: "explicit plus", raw: "+7.25", want: 7.25, valid: true},
		{name: "not a number", raw: "abc", valid: false},
		{name: "empty", raw: "", valid: false},
		{name: "lone separator", raw: ".", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeNumber(tt.raw)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

// Normalizing the string form of a normalized value must not change it.
func TestNormalizeNumberIdempotent(t *testing.T) {
	inputs := []string{"100", "12,5", "1.234", "$1_000", "−5", "+7.25", "1.234.567"}
	for _, raw := range inputs {
		first, ok := NormalizeNumber(raw)
		require.True(t, ok, raw)
		second, ok := NormalizeNumber(strconv.FormatFloat(first, 'f', -1, 64))
		require.True(t, ok, raw)
		assert.Equal(t, first, second, raw)
	}
}

func TestExpandSuffix(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "12.5k", want: "12500"},
		{raw: "-3k", want: "-3000"},
		{raw: "3K", want: "3000"},
		{raw: "1,5k", want: "1500"},
		{raw: "−2k", want: "-2000"}, // unicode minus
		{raw: "+4k", want: "4000"},
		{raw: "100", want: "100"},     // no suffix, unchanged
		{raw: "12k5", want: "12k5"},   // suffix not trailing
		{raw: "$12k", want: "$12k"},   // currency blocks the match
		{raw: "kk", want: "kk"},       // no numeric part
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandSuffix(tt.raw))
		})
	}
}
