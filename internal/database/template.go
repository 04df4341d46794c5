package database

import (
	"regexp"
	"strings"
)

// identPattern is the injection-safety allowlist for table and field names.
// Anything interpolated into non-parameterizable SQL must match it.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidIdentifier reports whether name is safe to interpolate into SQL
// (letters, digits, and underscores only).
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// ExpandTemplate rewrites every {logical_table} placeholder in template to
// prefix + logical_table. The scan is an explicit tokenizer pass, not a
// format-string trick: a brace sequence is consumed as a placeholder only
// when it contains a single valid identifier (with optional surrounding
// spaces) and a closing brace. Everything else — unmatched braces, nested
// braces, braces inside string literals that don't fit the pattern — is
// copied through verbatim.
//
// Expansion is idempotent: once substituted, the output contains no
// placeholder tokens, so running it again is a no-op.
func ExpandTemplate(template, prefix string) string {
	var sb strings.Builder
	sb.Grow(len(template) + 16)

	for i := 0; i < len(template); {
		ch := template[i]
		if ch != '{' {
			sb.WriteByte(ch)
			i++
			continue
		}

		name, end, ok := parsePlaceholder(template, i)
		if !ok {
			sb.WriteByte(ch)
			i++
			continue
		}

		sb.WriteString(prefix)
		sb.WriteString(name)
		i = end
	}

	return sb.String()
}

// parsePlaceholder tries to read a {  name  } token starting at the opening
// brace position. It returns the identifier, the index just past the
// closing brace, and whether the token was well-formed.
func parsePlaceholder(s string, start int) (string, int, bool) {
	i := start + 1

	// leading spaces
	for i < len(s) && s[i] == ' ' {
		i++
	}

	nameStart := i
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	name := s[nameStart:i]
	if name == "" {
		return "", 0, false
	}

	// trailing spaces
	for i < len(s) && s[i] == ' ' {
		i++
	}

	if i >= len(s) || s[i] != '}' {
		return "", 0, false
	}
	return name, i + 1, true
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
