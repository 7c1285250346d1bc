package cacheinfra

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// doublestar treats '/' as a path separator that '*' cannot cross. Cache keys
// are flat, so both sides swap it for a byte that never appears in patterns.
var flatten = strings.NewReplacer("/", "\x1f")

// MatchKey reports whether key matches the glob pattern with redis semantics:
// '*' spans any run of characters and braces are literal. A malformed pattern
// matches nothing.
func MatchKey(pattern, key string) bool {
	ok, err := doublestar.Match(literalBraces(flatten.Replace(pattern)), flatten.Replace(key))
	return err == nil && ok
}

// literalBraces escapes '{' and '}' that are not already escaped, turning off
// doublestar alternation, which redis MATCH does not have.
func literalBraces(pattern string) string {
	if !strings.ContainsAny(pattern, "{}") {
		return pattern
	}
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '{' || r == '}':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
