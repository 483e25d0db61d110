package counts

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// coerceCount converts an upstream count field into a non-negative integer.
// Strings are read up to the first non-digit ("15abc" is 15, "3.9" is 3);
// anything that does not start with a number yields 0.
func coerceCount(v any) int {
	var n int
	switch x := v.(type) {
	case string:
		n = leadingInt(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n = clampInt64(i)
		} else if f, err := x.Float64(); err == nil {
			n = truncFloat(f)
		} else {
			n = leadingInt(x.String())
		}
	case float64:
		n = truncFloat(x)
	case int:
		n = x
	case int64:
		n = clampInt64(x)
	}
	if n < 0 {
		return 0
	}
	return n
}

// leadingInt parses an optional sign followed by digits after leading
// whitespace. Overflowing or digit-less input yields 0.
func leadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func truncFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt || f <= math.MinInt {
		return 0
	}
	return int(f)
}

func clampInt64(i int64) int {
	if i > math.MaxInt || i < math.MinInt {
		return 0
	}
	return int(i)
}

// yearOf extracts the year from an "MM/DD/YYYY" date string.
func yearOf(date any) (int, bool) {
	s, ok := date.(string)
	if !ok {
		return 0, false
	}
	parts := strings.Split(s, "/")
	if len(parts) < 3 {
		return 0, false
	}
	year := strings.TrimSpace(parts[2])
	end := 0
	for end < len(year) && year[end] >= '0' && year[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	y, err := strconv.Atoi(year[:end])
	if err != nil {
		return 0, false
	}
	return y, true
}
