package boolexpr

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"
)

var parserOptions = []participle.Option{
	participle.Lexer(sqlLexer),
	participle.Elide(`Whitespace`, `Comment`),
	participle.CaseInsensitive(`Keyword`, `Ident`),
	participle.UseLookahead(4),
}

/*
Built once. Participle parsers are immutable after construction, and every
`Parse` call allocates its own parse context.
*/
var (
	whereParser = participle.MustBuild[whereClause](parserOptions...)
	condParser  = participle.MustBuild[orCond](parserOptions...)
)

var commentType = sqlLexer.Symbols()[`Comment`]

/*
Default implementation of `Parser`. Stateless; the zero value is ready to
use.
*/
type SqlParser struct{}

var _ Parser = SqlParser{}

/*
Implement `Parser`. Line comments are dropped from the tail, so callers may
append more text to the serialized clause.
*/
func (SqlParser) ParseWhere(text string) (Clause, error) {
	text = strings.TrimSpace(text)

	tree, err := parseString(whereParser, text)
	if err != nil {
		return Clause{}, errors.Wrapf(err, `parsing where clause %q`, text)
	}

	pred, err := sourceOf(tree.Cond, text)
	if err != nil {
		return Clause{}, errors.Wrapf(err, `parsing where clause %q`, text)
	}

	tail, err := StripLineComments(text[tree.Cond.EndPos.Offset:])
	if err != nil {
		return Clause{}, errors.Wrapf(err, `parsing where clause %q`, text)
	}

	return Clause{Pred: pred, Tail: tail}, nil
}

/*
Implement `Parser`. Comments after the last token of the condition are not
part of its text.
*/
func (SqlParser) ParseCond(text string) (Expr, error) {
	text = strings.TrimSpace(text)

	tree, err := parseString(condParser, text)
	if err != nil {
		return nil, errors.Wrapf(err, `parsing condition %q`, text)
	}

	expr, err := sourceOf(tree, text)
	if err != nil {
		return nil, errors.Wrapf(err, `parsing condition %q`, text)
	}
	return expr, nil
}

/*
Removes `-- ...` comments from SQL text, leaving everything else, including
block comments, as written. Comment markers inside string literals and quoted
identifiers are not comments. The result is trimmed.
*/
func StripLineComments(text string) (string, error) {
	lex, err := sqlLexer.LexString(``, text)
	if err != nil {
		return ``, errors.WithStack(err)
	}

	var buf strings.Builder
	for {
		token, err := lex.Next()
		if err != nil {
			return ``, errors.WithStack(err)
		}
		if token.EOF() {
			break
		}
		if token.Type == commentType && strings.HasPrefix(token.Value, `--`) {
			continue
		}
		buf.WriteString(token.Value)
	}
	return strings.TrimSpace(buf.String()), nil
}

func sourceOf(tree *orCond, text string) (Source, error) {
	start, end := tree.Pos.Offset, tree.EndPos.Offset
	if start < 0 || end > len(text) || start > end {
		return Source{}, errors.New(`predicate bounds out of range`)
	}
	return Source{Text: strings.TrimSpace(text[start:end]), tree: tree}, nil
}

// Participle reports some grammar conflicts by panicking.
func parseString[A any](parser *participle.Parser[A], text string) (out *A, err error) {
	defer func() {
		val := recover()
		if val != nil {
			out, err = nil, errors.Errorf(`%v`, val)
		}
	}()
	return parser.ParseString(``, text)
}
