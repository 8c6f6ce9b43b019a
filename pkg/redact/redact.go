// Package redact masks sensitive values before they reach a log stream.
package redact

import (
	"regexp"
	"strings"
)

// DefaultReplacement is used when callers have no preference.
const DefaultReplacement = "***"

// Filter obfuscates the value of every named field inside message.
// Fields are expected as "name=value" pairs delimited by separator.
func Filter(fields []string, replacement string, message string, separator string) string {
	for _, field := range fields {
		if field == "" {
			continue
		}
		pattern := regexp.MustCompile(regexp.QuoteMeta(field) + "=[^" + regexp.QuoteMeta(separator) + "]*")
		message = pattern.ReplaceAllString(message, field+"="+replacement)
	}
	return message
}

// FieldSet answers membership queries for a fixed set of field names,
// case-insensitively.
type FieldSet map[string]struct{}

func NewFieldSet(fields ...string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, field := range fields {
		set[strings.ToLower(field)] = struct{}{}
	}
	return set
}

func (s FieldSet) Contains(field string) bool {
	_, ok := s[strings.ToLower(field)]
	return ok
}
