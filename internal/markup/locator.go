package markup

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Locator names one field of a page and the selector that finds it.
type Locator struct {
	Field    string
	Selector string
}

// Locators is an ordered field table.
type Locators []Locator

// Extract reads the trimmed text of every field. A selector that matches
// nothing produces an empty string.
func (ls Locators) Extract(n Node) map[string]string {
	out := make(map[string]string, len(ls))
	for _, l := range ls {
		out[l.Field] = n.Find(l.Selector).Text()
	}
	return out
}

// Missing lists the fields whose selector matched no element, in table order.
func (ls Locators) Missing(n Node) []string {
	var missing []string
	for _, l := range ls {
		if !n.Has(l.Selector) {
			missing = append(missing, l.Field)
		}
	}
	return missing
}

// Validate checks that every field is named once and every selector compiles.
func (ls Locators) Validate() error {
	seen := make(map[string]bool, len(ls))
	for _, l := range ls {
		if l.Field == "" {
			return fmt.Errorf("locator with empty field name")
		}
		if seen[l.Field] {
			return fmt.Errorf("duplicate locator field: %s", l.Field)
		}
		seen[l.Field] = true

		if _, err := cascadia.Compile(l.Selector); err != nil {
			return fmt.Errorf("locator %s: invalid selector %q: %w", l.Field, l.Selector, err)
		}
	}
	return nil
}

// Override returns a copy of the table with selectors replaced for the
// named fields. Naming a field not in the table is an error.
func (ls Locators) Override(selectors map[string]string) (Locators, error) {
	out := make(Locators, len(ls))
	copy(out, ls)

	index := make(map[string]int, len(out))
	for i, l := range out {
		index[l.Field] = i
	}

	for field, selector := range selectors {
		i, ok := index[field]
		if !ok {
			return nil, fmt.Errorf("unknown locator field: %s", field)
		}
		out[i].Selector = selector
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
