// Package quantity normalizes quantity expressions from code-mixed Hindi/English
// text into integers. It understands spoken numbers one through ten in both
// languages (including common romanized Hindi spelling variants) and plain digits.
package quantity

import (
	"strconv"
	"strings"
)

// DefaultQty is returned when a quantity token cannot be interpreted at all.
// An order is assumed to mean "one" if the quantity is unreadable; this is a
// deliberate fallback, not silent data loss, and callers rely on it being a
// valid positive quantity.
const DefaultQty = 1

// lexicon maps spoken numbers 1-10 to their values. Hindi entries carry the
// romanized spellings seen in real chat traffic, so frequent variants
// ("char"/"chaar", "che"/"chhe"/"cheh") resolve to the same value.
var lexicon = map[string]int{
	// Hindi
	"ek":     1,
	"do":     2,
	"teen":   3,
	"tin":    3,
	"char":   4,
	"chaar":  4,
	"panch":  5,
	"paanch": 5,
	"che":    6,
	"chhe":   6,
	"cheh":   6,
	"chhah":  6,
	"saat":   7,
	"sat":    7,
	"aath":   8,
	"ath":    8,
	"nau":    9,
	"das":    10,
	"dus":    10,

	// English
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
	"seven": 7,
	"eight": 8,
	"nine":  9,
	"ten":   10,
}

// Normalize parses a quantity token into a positive integer.
// The token is lower-cased and trimmed before lookup, so callers may pass raw
// span text. Resolution order: bilingual lexicon, then direct integer parse.
// Anything unreadable (including zero and negative digits) yields DefaultQty.
// Normalize is total: it never panics and always returns a positive integer.
func Normalize(token string) int {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return DefaultQty
	}

	if n, ok := lexicon[token]; ok {
		return n
	}

	if n, err := strconv.Atoi(token); err == nil && n > 0 {
		return n
	}

	return DefaultQty
}
