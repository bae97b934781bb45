package mask

import (
	"unicode/utf8"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// MaskValue returns a partially visible form of s.
//
//	"abc"              -> "***"
//	"abcdef"           -> "abc***"
//	"user@example.com" -> "use***com"
//
// Lengths are counted in runes so multi-byte characters are never split.
func MaskValue(s string) string {
	n := utf8.RuneCountInString(s)
	keep := constants.MaskVisibleRunes
	if n <= keep {
		return constants.MaskPlaceholder
	}

	runes := []rune(s)
	if n <= 2*keep {
		return string(runes[:keep]) + constants.MaskPlaceholder
	}
	return string(runes[:keep]) + constants.MaskPlaceholder + string(runes[n-keep:])
}

// MaskScalar is the replacement for the value of a sensitive field. Strings
// are partially revealed, null stays null, and everything else, numbers
// included, collapses to the placeholder without being inspected.
func MaskScalar(v Value) Value {
	switch v.Kind() {
	case KindNull:
		return v
	case KindString:
		return String(MaskValue(v.Str()))
	default:
		return String(constants.MaskPlaceholder)
	}
}
