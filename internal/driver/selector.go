package driver

import (
	"fmt"
	"strings"
)

// SelectorKind distinguishes how a selector string is matched.
type SelectorKind int

const (
	// CSS selectors are passed to the underlying engine unchanged.
	CSS SelectorKind = iota
	// Text selectors match elements whose own text contains Value.
	Text
)

const textPrefix = "text="

// Selector is a parsed selector string.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// ParseSelector understands two forms: "text=Some words" and everything else,
// which is treated as CSS.
func ParseSelector(raw string) (Selector, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}
	if strings.HasPrefix(s, textPrefix) {
		v := strings.TrimSpace(strings.TrimPrefix(s, textPrefix))
		v = strings.Trim(v, `"'`)
		if v == "" {
			return Selector{}, fmt.Errorf("text selector %q has no text", raw)
		}
		return Selector{Kind: Text, Value: v}, nil
	}
	return Selector{Kind: CSS, Value: s}, nil
}

// XPath renders a text selector as an XPath expression matching any element
// with a direct text node containing the value.
func (s Selector) XPath() string {
	return fmt.Sprintf("//*[text()[contains(., %s)]]", xpathLiteral(s.Value))
}

func (s Selector) String() string {
	if s.Kind == Text {
		return textPrefix + s.Value
	}
	return s.Value
}

// xpathLiteral quotes v for XPath 1.0, which has no escape sequences.
func xpathLiteral(v string) string {
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	parts := strings.Split(v, `"`)
	var b strings.Builder
	b.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(`, '"', `)
		}
		b.WriteString(`"` + p + `"`)
	}
	b.WriteString(")")
	return b.String()
}
