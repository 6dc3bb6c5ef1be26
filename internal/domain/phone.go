package domain

import "strings"

// NormalizePhone converts arbitrary phone text to the canonical Brazilian
// dashed format: DD-DDDDD-DDDD for 11 digits (mobile), DD-DDDD-DDDD for 10
// (landline). Any other digit count returns the input unchanged; callers must
// tolerate non-canonical output. Never fails.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch len(digits) {
	case 11:
		return digits[0:2] + "-" + digits[2:7] + "-" + digits[7:]
	case 10:
		return digits[0:2] + "-" + digits[2:6] + "-" + digits[6:]
	default:
		return raw
	}
}
