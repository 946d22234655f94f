package utils

import "strings"

// NormalizeMobile reduces a mobile number to its canonical stored form:
// digits only, with a single leading + preserved when the caller supplied a
// country code. The unique index on mobile only works if every write path
// agrees on this form.
func NormalizeMobile(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	plus := strings.HasPrefix(mobile, "+")

	var sb strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if plus {
		return "+" + sb.String()
	}
	return sb.String()
}
