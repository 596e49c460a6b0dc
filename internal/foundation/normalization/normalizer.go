// Package normalization folds free-form configuration tokens onto canonical
// enum values. Lookup is case-insensitive and whitespace-tolerant, so
// "WARN" and " warn " resolve to the same level.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps raw string tokens onto values of a config enum type.
// Canonical spellings and registered aliases both resolve; only canonical
// spellings appear in error messages.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	canonical    []string
}

// NewNormalizer builds a normalizer from the canonical spelling of each
// value. Unrecognized input resolves to defaultValue.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
		canonical:    make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := canonicalize(k)
		n.values[key] = v
		n.canonical = append(n.canonical, key)
	}
	// Sorted so error messages are stable.
	sort.Strings(n.canonical)
	return n
}

// WithAliases registers alternate spellings ("warning" for warn, "verbose"
// for debug). Aliases resolve like canonical values but are not listed in
// error messages. The receiver is returned so registration can chain off
// NewNormalizer at the declaration site.
func (n *Normalizer[T]) WithAliases(aliases map[string]T) *Normalizer[T] {
	for k, v := range aliases {
		n.values[canonicalize(k)] = v
	}
	return n
}

// Normalize resolves raw to its enum value, falling back to the default
// for input it does not recognize.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[canonicalize(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError resolves raw to its enum value and reports
// unrecognized input instead of defaulting.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.values[canonicalize(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.canonical)
}

// Canonical returns the canonical spellings, sorted.
func (n *Normalizer[T]) Canonical() []string {
	out := make([]string, len(n.canonical))
	copy(out, n.canonical)
	return out
}

// canonicalize is the lookup key form: trimmed and lower-cased.
func canonicalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
