package suite

import (
	"context"
	"regexp"
	"strings"
)

// Hook is a scenario body or a before/after hook.
type Hook func(ctx context.Context, s *Session) error

// Scenario is one named, tagged end-to-end check.
type Scenario struct {
	Name string
	// Tags carry their leading "@", e.g. "@smoke".
	Tags []string
	// Slow scenarios get a longer timeout.
	Slow   bool
	Before Hook
	Body   Hook
	After  Hook
}

// HasTag reports whether sc carries tag; the leading "@" is optional.
func (sc Scenario) HasTag(tag string) bool {
	want := normalizeTag(tag)
	for _, t := range sc.Tags {
		if normalizeTag(t) == want {
			return true
		}
	}
	return false
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "@"))
}

// Select returns the scenarios carrying any of tags, in order. No tags
// selects everything.
func Select(scenarios []Scenario, tags []string) []Scenario {
	if len(tags) == 0 {
		return scenarios
	}
	var out []Scenario
	for _, sc := range scenarios {
		for _, tag := range tags {
			if sc.HasTag(tag) {
				out = append(out, sc)
				break
			}
		}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a scenario name into a file-name friendly token.
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
