package stacktrim

import (
	"regexp"
	"strings"
)

// FrameMatcher decides whether a frame line is significant enough to always
// appear in the pruned output.
type FrameMatcher interface {
	// MatchFrame reports whether the frame line is allowed.
	MatchFrame(line string) bool
}

// Keywords is the ordered substring allow-list. A frame line is allowed when
// it contains any of the keywords; entries are checked in order and the
// first hit wins. Matching is case-sensitive.
type Keywords []string

// MatchFrame implements the FrameMatcher interface.
func (k Keywords) MatchFrame(line string) bool {
	for _, kw := range k {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// MatcherFunc adapts a plain function to a FrameMatcher.
type MatcherFunc func(line string) bool

// MatchFrame implements the FrameMatcher interface.
func (f MatcherFunc) MatchFrame(line string) bool { return f(line) }

// RegexpMatcher allows frames matching a compiled regular expression.
type RegexpMatcher struct {
	Pattern *regexp.Regexp
}

// MatchFrame implements the FrameMatcher interface.
func (m *RegexpMatcher) MatchFrame(line string) bool {
	return m.Pattern.MatchString(line)
}
