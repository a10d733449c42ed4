package omnijs

import (
	"fmt"
	"strings"
	"time"
)

// EncodeString encodes s as a double-quoted JavaScript string literal.
//
// The encoding is total: any Go string becomes exactly one valid JS
// literal. Backslash, double quote, and the conventional control
// escapes are written as two-character sequences; remaining control
// characters and the line/paragraph separators U+2028/U+2029 (legal in
// JSON strings but statement terminators in JavaScript source) are
// written as \uXXXX. All other runes pass through as UTF-8.
func EncodeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case ' ', ' ':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// EncodeStringList encodes values as a JavaScript array literal of
// string literals, preserving order.
func EncodeStringList(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = EncodeString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// EncodeDate encodes t as a JavaScript Date constructor call with a
// millisecond-precision UTC timestamp argument.
func EncodeDate(t time.Time) string {
	return "new Date(" + EncodeString(t.UTC().Format("2006-01-02T15:04:05.000Z07:00")) + ")"
}
