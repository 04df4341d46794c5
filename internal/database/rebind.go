package database

import (
	"strconv"
	"strings"
)

// PlaceholderStyle selects the native bind-parameter syntax a dialect uses.
type PlaceholderStyle int

const (
	// PlaceholderQuestion is '?' (MySQL).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar is '$1', '$2', … (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAt is '@p1', '@p2', … (SQL Server).
	PlaceholderAt
	// PlaceholderColon is ':1', ':2', … (Oracle).
	PlaceholderColon
)

// Rebind translates canonical '?' placeholders in query into the given
// native style. Question marks inside single-quoted literals and inside
// quoted identifiers (double quotes, backticks, brackets) are left alone,
// so caller-supplied SQL carrying literal '?' characters is not corrupted.
func Rebind(style PlaceholderStyle, query string) string {
	if style == PlaceholderQuestion {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)

	n := 0
	quote := byte(0) // current quoting character, 0 when outside any quote
	for i := 0; i < len(query); i++ {
		ch := query[i]

		if quote != 0 {
			sb.WriteByte(ch)
			if ch == quote {
				// A doubled quote character is an escaped quote, not a
				// terminator.
				if i+1 < len(query) && query[i+1] == quote {
					sb.WriteByte(query[i+1])
					i++
					continue
				}
				quote = 0
			}
			continue
		}

		switch ch {
		case '\'', '"', '`':
			quote = ch
			sb.WriteByte(ch)
		case '[':
			quote = ']'
			sb.WriteByte(ch)
		case '?':
			n++
			switch style {
			case PlaceholderDollar:
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(n))
			case PlaceholderAt:
				sb.WriteString("@p")
				sb.WriteString(strconv.Itoa(n))
			case PlaceholderColon:
				sb.WriteByte(':')
				sb.WriteString(strconv.Itoa(n))
			}
		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String()
}
