package formula

import "strconv"

// Format applies a presentation hint to a computed value. Unknown hints act
// like "plain" (the template decoder already warns about and drops them).
//
//	deltaScore  signed rendering of a number: +15, -6, +0
//	percent     number times 100, one decimal, "%" suffix
//	plain / ""  value unchanged
//
// Non-numeric values pass through untouched for the numeric hints.
func Format(value any, hint string) any {
	switch hint {
	case "deltaScore":
		f, ok := asNumber(value)
		if !ok {
			return value
		}
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if f >= 0 {
			s = "+" + s
		}
		return s
	case "percent":
		f, ok := asNumber(value)
		if !ok {
			return value
		}
		return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
	}
	return value
}
