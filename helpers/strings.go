package helpers

import "strings"

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// SplitWhitespaceN splits s on runs of whitespace into at most n parts, ignoring leading whitespace.
// The final part holds the unsplit remainder (including any trailing whitespace).
// n <= 0 means no limit.
func SplitWhitespaceN(s string, n int) []string {
	var res []string
	i := 0
	for {
		for i < len(s) && isASCIISpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return res
		}
		if n > 0 && len(res) == n-1 {
			return append(res, s[i:])
		}
		start := i
		for i < len(s) && !isASCIISpace(s[i]) {
			i++
		}
		res = append(res, s[start:i])
	}
}

// RSplit splits s around the last n-1 occurrences of sep.
// Pieces are returned in left-to-right order; fewer than n pieces are returned when sep runs out.
func RSplit(s, sep string, n int) []string {
	var tail []string
	for k := 0; k < n-1; k++ {
		pos := strings.LastIndex(s, sep)
		if pos < 0 {
			break
		}
		tail = append(tail, s[pos+len(sep):])
		s = s[:pos]
	}

	res := make([]string, 0, len(tail)+1)
	res = append(res, s)
	for k := len(tail) - 1; k >= 0; k-- {
		res = append(res, tail[k])
	}
	return res
}
