// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import "strings"

const (
	quoteChar = "`"
	wildcard  = "*"
)

// Quote delimits an identifier for use in SQL text.
//
// Dotted identifiers are split and each segment is quoted independently, so
// "t.c" becomes `t`.`c`. A segment that is exactly "*" is kept as a literal
// wildcard: "t.*" becomes `t`.* and "*" stays *. Embedded backticks are
// doubled, which keeps hostile names inside their segment. Colons are doubled
// too so the named-parameter compiler reads them as literals.
func Quote(ident string) string {
	ident = strings.TrimSpace(ident)
	if ident == wildcard {
		return wildcard
	}

	segments := strings.Split(ident, ".")
	var b strings.Builder
	b.Grow(len(ident) + 2*len(segments))
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('.')
		}
		seg = strings.TrimSpace(seg)
		if seg == wildcard {
			b.WriteString(wildcard)
			continue
		}
		b.WriteString(quoteSegment(seg))
	}
	return b.String()
}

// QuoteAlias delimits alias as one identifier. Dots are part of the name.
func QuoteAlias(alias string) string {
	return quoteSegment(strings.TrimSpace(alias))
}

func quoteSegment(seg string) string {
	seg = strings.ReplaceAll(seg, quoteChar, quoteChar+quoteChar)
	seg = strings.ReplaceAll(seg, ":", "::")
	return quoteChar + seg + quoteChar
}

// Unquote reverses Quote. Unquote(Quote(x)) == x for any trimmed identifier
// whose segments contain no dots.
func Unquote(quoted string) string {
	var (
		b       strings.Builder
		inQuote bool
	)
	for i := 0; i < len(quoted); i++ {
		c := quoted[i]
		switch {
		case inQuote && c == ':' && i+1 < len(quoted) && quoted[i+1] == ':':
			b.WriteByte(':')
			i++
		case c != '`':
			b.WriteByte(c)
		case inQuote && i+1 < len(quoted) && quoted[i+1] == '`':
			b.WriteByte('`')
			i++
		default:
			inQuote = !inQuote
		}
	}
	return b.String()
}

// placeholderName turns a column reference into a bind-safe identifier.
// Dots and any other non-identifier characters become underscores.
func placeholderName(column string) string {
	column = strings.TrimSpace(column)
	var b strings.Builder
	b.Grow(len(column))
	for _, r := range column {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
