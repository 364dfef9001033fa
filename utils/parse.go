package utils

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseStringArray normalizes a form value into a string slice. It accepts a
// JSON array (`["a","b"]`) or a comma-separated string (`"a, b, c"`);
// empty elements are dropped.
func ParseStringArray(value string) []string {
	if value == "" {
		return []string{}
	}

	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return trimNonEmpty(parsed)
	}

	return trimNonEmpty(strings.Split(value, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseNullableNumber converts a form value into a number, returning nil for
// empty or unparseable input rather than failing the request.
func ParseNullableNumber(value string) *float64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	return &n
}
