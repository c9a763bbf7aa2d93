// internal/record/record.go
package record

import (
	"strings"
)

// Delimiter separates fields within a record.
const Delimiter = ";"

// FieldKey links two records that carry the same normalized value at the
// same field position.
type FieldKey struct {
	Value string
	Pos   int
}

// Split breaks a line into fields. Interior empty fields are kept; trailing
// empty fields are dropped.
func Split(line string) []string {
	parts := strings.Split(line, Delimiter)
	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}
	return parts[:n]
}

// Normalize trims whitespace and removes quote characters.
func Normalize(field string) string {
	if !strings.Contains(field, `"`) {
		return strings.TrimSpace(field)
	}
	return strings.TrimSpace(strings.ReplaceAll(field, `"`, ""))
}

// Valid reports whether every field is empty, quote-only, or a (optionally
// quoted) run of decimal digits.
func Valid(line string) bool {
	if line == "" {
		return false
	}
	for _, part := range Split(line) {
		if isBlank(part) {
			continue
		}
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			part = part[1 : len(part)-1]
		}
		if !allDigits(part) {
			return false
		}
	}
	return true
}

// Keys returns the FieldKeys of a line, in field order. Blank fields yield
// no key.
func Keys(line string) []FieldKey {
	fields := Split(line)
	keys := make([]FieldKey, 0, len(fields))
	for i, f := range fields {
		v := Normalize(f)
		if v == "" {
			continue
		}
		keys = append(keys, FieldKey{Value: v, Pos: i})
	}
	return keys
}

func isBlank(part string) bool {
	return part == "" || strings.Trim(part, `"`) == ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
