package preview

import (
	"regexp"
	"strings"
)

const fence = "```"

var languageTag = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+.-]*`)

// StripFences removes at most one leading Markdown fence (with an optional
// language tag) and one trailing fence, trimming whitespace around both.
// The result is not checked for validity.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(s, fence); ok {
		if tag := languageTag.FindString(rest); tag != "" && endsTag(rest[len(tag):]) {
			rest = rest[len(tag):]
		}
		s = strings.TrimSpace(rest)
	}

	if rest, ok := strings.CutSuffix(s, fence); ok {
		s = strings.TrimSpace(rest)
	}

	return s
}

// endsTag reports whether a language tag may stop right before rest.
func endsTag(rest string) bool {
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '\r', '\n', '{', '[':
		return true
	}
	return false
}
