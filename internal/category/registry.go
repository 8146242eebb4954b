// Package category holds the static registry of spending categories.
//
// The registry is fixed at build time: expenses reference entries by value,
// the form layer validates membership, and AI suggestions are mapped back
// to values by label. Icon names are presentation hints only.
package category

import "strings"

// Category is one static registry entry.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// registry is the fixed, ordered category list. Order matters: summaries
// and pickers present categories in this order.
var registry = []Category{
	{Value: "food", Label: "Food", Icon: "utensils"},
	{Value: "transport", Label: "Transport", Icon: "car"},
	{Value: "utilities", Label: "Utilities", Icon: "lightbulb"},
	{Value: "entertainment", Label: "Entertainment", Icon: "drama"},
	{Value: "health", Label: "Health", Icon: "heart-pulse"},
	{Value: "shopping", Label: "Shopping", Icon: "shopping-bag"},
	{Value: "other", Label: "Other", Icon: "more-horizontal"},
}

// All returns a copy of the registry in presentation order.
func All() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the entry for a value.
func Lookup(value string) (Category, bool) {
	for _, c := range registry {
		if c.Value == value {
			return c, true
		}
	}
	return Category{}, false
}

// IsValid reports whether value names a registry entry.
func IsValid(value string) bool {
	_, ok := Lookup(value)
	return ok
}

// LabelOr returns the display label for a value, or fallback when the
// value is unknown (callers typically pass "N/A").
func LabelOr(value, fallback string) string {
	if c, ok := Lookup(value); ok {
		return c.Label
	}
	return fallback
}

// MatchLabel maps a display label back to its entry, case-insensitively.
// This is how AI category suggestions are resolved: an unmatched label
// means no suggestion is applied, never an error.
func MatchLabel(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range registry {
		if strings.EqualFold(c.Label, label) {
			return c, true
		}
	}
	return Category{}, false
}

// Values returns the registry values in order.
func Values() []string {
	out := make([]string, len(registry))
	for i, c := range registry {
		out[i] = c.Value
	}
	return out
}

// Labels returns the display labels in order.
func Labels() []string {
	out := make([]string, len(registry))
	for i, c := range registry {
		out[i] = c.Label
	}
	return out
}
