package dbh

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"strings"
	"unsafe"

	"github.com/mitranim/refut"
)

/*
Database connection passed to `Fragment.Query`. Satisfied by `*sql.DB`,
`*sql.Tx`, may be satisfied by other types.
*/
type Queryer interface {
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

/*
Database connection passed to `Fragment.Exec`. Satisfied by `*sql.DB`,
`*sql.Tx`, may be satisfied by other types.
*/
type Execer interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}

/*
True for nil interfaces, nil pointers/maps/slices and similar, and for
`driver.Valuer`s such as `sql.NullString` that encode to SQL null.
*/
func isNull(val interface{}) bool {
	if refut.IsNil(val) {
		return true
	}
	valuer, ok := val.(driver.Valuer)
	if !ok {
		return false
	}
	out, err := valuer.Value()
	return err == nil && out == nil
}

func appendQuoted(buf []byte, ident string) []byte {
	return appendDelimited(buf, "`", ident, "`")
}

func appendAliasedQuoted(buf []byte, alias string, ident string) []byte {
	if alias != "" {
		buf = append(buf, alias...)
		buf = append(buf, '.')
	}
	return appendQuoted(buf, ident)
}

func appendDelimited(buf []byte, prefix, infix, suffix string) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, infix...)
	buf = append(buf, suffix...)
	return buf
}

func appendJoined(buf []byte, str string, times int, sep string) []byte {
	for i := 0; i < times; i++ {
		if i > 0 {
			buf = append(buf, sep...)
		}
		buf = append(buf, str...)
	}
	return buf
}

func copyIntSlice(vals []int) []int {
	out := make([]int, len(vals), len(vals))
	copy(out, vals)
	return out
}

func quoted(ident string) string {
	return bytesToMutableString(appendQuoted(nil, ident))
}

/*
Allocation-free conversion. Reinterprets a byte slice as a string. Borrowed from
the standard library. Reasonably safe. Should not be used when the underlying
byte array is volatile.
*/
func bytesToMutableString(bytes []byte) string {
	return *(*string)(unsafe.Pointer(&bytes))
}

func startsWithWhere(text string) bool {
	return whereKeywordRegexp.MatchString(text)
}

// Removes the leading `where` keyword, if any, along with the following space.
func trimWhere(text string) string {
	return strings.TrimSpace(whereKeywordRegexp.ReplaceAllString(text, ``))
}

var whereKeywordRegexp = regexp.MustCompile(`(?i)^\s*where\b`)

/*
Counts `?` placeholders outside of string literals, quoted identifiers and
comments.
*/
func countPlaceholders(text string) int {
	var count int
	for i := 0; i < len(text); i++ {
		switch char := text[i]; char {
		case '?':
			count++
		case '\'', '"', '`':
			i = skipQuoted(text, i, char)
		case '-':
			if i+1 < len(text) && text[i+1] == '-' {
				i = skipUntil(text, i, "\n")
			}
		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				i = skipUntil(text, i+2, "*/") + 1
			}
		}
	}
	return count
}

// Returns the index of the closing quote. Doubled quotes are escapes.
func skipQuoted(text string, start int, quote byte) int {
	for i := start + 1; i < len(text); i++ {
		if text[i] == '\\' && quote != '`' {
			i++
			continue
		}
		if text[i] == quote {
			if i+1 < len(text) && text[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(text)
}

func skipUntil(text string, start int, end string) int {
	index := strings.Index(text[start:], end)
	if index < 0 {
		return len(text)
	}
	return start + index
}
