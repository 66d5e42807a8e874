package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome tags the result of applying a rule.
type Outcome int

const (
	// Absent means the rule's pattern did not occur in the text.
	Absent Outcome = iota
	// Found means the pattern occurred and its value was usable.
	Found
	// Malformed means the pattern occurred but the captured text could not
	// be converted to a value.
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Match is the tagged result of a rule. Value is only meaningful when
// Outcome is Found; Raw holds the captured text for Found and Malformed.
type Match[T any] struct {
	Outcome Outcome
	Value   T
	Raw     string
}

func absent[T any]() Match[T] {
	return Match[T]{Outcome: Absent}
}

func found[T any](v T, raw string) Match[T] {
	return Match[T]{Outcome: Found, Value: v, Raw: raw}
}

func malformed[T any](raw string) Match[T] {
	return Match[T]{Outcome: Malformed, Raw: raw}
}

// Ptr returns a pointer to the value when found, nil otherwise.
func (m Match[T]) Ptr() *T {
	if m.Outcome != Found {
		return nil
	}
	v := m.Value
	return &v
}

// Rule is a named pattern whose first capture group holds the field value.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

func newRule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// Find returns the first capture of the rule, trimmed. An empty capture
// counts as absent.
func (r Rule) Find(text string) Match[string] {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return absent[string]()
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return absent[string]()
	}
	return found(v, m[1])
}

// FindAmount is Find followed by ParseAmount.
func (r Rule) FindAmount(text string) Match[decimal.Decimal] {
	s := r.Find(text)
	if s.Outcome != Found {
		return absent[decimal.Decimal]()
	}
	d, err := ParseAmount(s.Value)
	if err != nil {
		return malformed[decimal.Decimal](s.Raw)
	}
	return found(d, s.Raw)
}
