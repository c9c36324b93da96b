package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// A '.' or '_' between a digit and a three-digit group ending at a word
	// boundary is a grouping separator, not a decimal point.
	groupSepRe = regexp.MustCompile(`(\d)[._](\d{3})\b`)
	suffixKRe  = regexp.MustCompile(`^([+\-\x{2212}\x{2013}]?\d+(?:[.,]\d+)?)[kK]$`)
)

// charReplacer maps unicode negative signs (minus sign U+2212, en dash
// U+2013) to an ASCII hyphen and drops currency symbols and quote-like
// grouping characters (Swiss 12'345 style).
var charReplacer = strings.NewReplacer(
	"−", "-",
	"–", "-",
	"$", "",
	"€", "",
	"'", "",
	"’", "",
	"‘", "",
	"‚", "",
)

// NormalizeNumber canonicalizes a loosely formatted numeric string into a
// float. It strips whitespace and currency decoration, removes grouping
// separators, and treats a comma as the decimal point. Returns false when
// no finite number remains.
func NormalizeNumber(raw string) (float64, bool) {
	s := whitespaceRe.ReplaceAllString(raw, "")
	s = charReplacer.Replace(s)

	// Grouping separators can repeat (1.234.567); strip until stable.
	for {
		next := groupSepRe.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}
	s = strings.Replace(s, ",", ".", 1)

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ExpandSuffix rewrites a trailing k/K multiplier into plain digits:
// "12.5k" becomes "12500", "-3k" becomes "-3000". Inputs that do not match
// the signed-decimal-plus-k shape are returned unchanged.
func ExpandSuffix(raw string) string {
	m := suffixKRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return raw
	}
	base, ok := NormalizeNumber(m[1])
	if !ok {
		return raw
	}
	return strconv.FormatFloat(base*1000, 'f', -1, 64)
}
