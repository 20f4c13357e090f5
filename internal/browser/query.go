package browser

import (
	"fmt"
	"regexp"
	"strings"
)

// Query is a semantic element locator: a CSS selector, or an ARIA role with
// an accessible name, optionally narrowed by contained text and position.
// Queries are immutable values; the narrowing methods return copies.
type Query struct {
	css     string
	role    string
	name    string
	pattern *regexp.Regexp
	exact   bool
	hasText string
	nth     int // 0 = all matches, n > 0 = the n-th match (1-based)
}

// CSS locates elements matching a CSS selector.
func CSS(selector string) Query {
	return Query{css: selector}
}

// Role locates elements by ARIA role and exact accessible name.
func Role(role, name string) Query {
	return Query{role: role, name: name, exact: true}
}

// RoleMatching locates elements by ARIA role whose accessible name matches
// pattern.
func RoleMatching(role string, pattern *regexp.Regexp) Query {
	return Query{role: role, pattern: pattern}
}

// WithText keeps only matches containing text (case-insensitive substring).
func (q Query) WithText(text string) Query {
	q.hasText = text
	return q
}

// First narrows the query to its first match.
func (q Query) First() Query {
	return q.Nth(0)
}

// Nth narrows the query to the i-th match (0-based).
func (q Query) Nth(i int) Query {
	q.nth = i + 1
	return q
}

// IsZero reports whether q locates nothing.
func (q Query) IsZero() bool {
	return q.css == "" && q.role == ""
}

// String renders q for logs and as a stable key for test doubles.
func (q Query) String() string {
	var b strings.Builder
	switch {
	case q.role != "" && q.pattern != nil:
		fmt.Fprintf(&b, "role=%s[name=/%s/]", q.role, q.pattern.String())
	case q.role != "":
		fmt.Fprintf(&b, "role=%s[name=%q]", q.role, q.name)
	default:
		b.WriteString(q.css)
	}
	if q.hasText != "" {
		fmt.Fprintf(&b, " >> has-text=%q", q.hasText)
	}
	if q.nth > 0 {
		fmt.Fprintf(&b, " >> nth=%d", q.nth-1)
	}
	return b.String()
}
