package table

import (
	"math"
	"strconv"
)

// toInteger converts the leading integer of s, returning 0 when there is none
func toInteger(s *string) int64 {
	if s == nil {
		return 0
	}
	str := *s
	i := skipSpace(str, 0)
	start := i
	if i < len(str) && (str[i] == '+' || str[i] == '-') {
		i++
	}
	digits := i
	i = skipDigits(str, i)
	if i == digits {
		return 0
	}
	v, err := strconv.ParseInt(str[start:i], 10, 64)
	if err != nil {
		if str[start] == '-' {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return v
}

// toFloat converts the leading decimal number of s, returning 0 when there is none
func toFloat(s *string) float64 {
	if s == nil {
		return 0
	}
	str := *s
	i := skipSpace(str, 0)
	start := i
	if i < len(str) && (str[i] == '+' || str[i] == '-') {
		i++
	}
	intStart := i
	i = skipDigits(str, i)
	if i == intStart {
		return 0
	}
	// a fraction needs at least one digit after the point
	if i+1 < len(str) && str[i] == '.' && isDigit(str[i+1]) {
		i = skipDigits(str, i+1)
	}
	if i < len(str) && (str[i] == 'e' || str[i] == 'E') {
		j := i + 1
		if j < len(str) && (str[j] == '+' || str[j] == '-') {
			j++
		}
		if k := skipDigits(str, j); k > j {
			i = k
		}
	}
	// out of range values parse to ±Inf alongside an error
	v, _ := strconv.ParseFloat(str[start:i], 64)
	return v
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func skipDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\v' || s[i] == '\f' || s[i] == '\r') {
		i++
	}
	return i
}
