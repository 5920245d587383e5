package types

import (
	"strconv"
	"strings"
)

// LeadingInt parses the integer prefix of s after trimming spaces: "40.00" -> 40,
// "12kg" -> 12. It reports false when s does not start with an optionally signed digit run.
func LeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
