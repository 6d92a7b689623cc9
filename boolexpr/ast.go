/*
Boolean-expression capability used by the where-clause composer in
"github.com/mitranim/dbh". Parses SQL predicate text into a small AST and
serializes it back.

Parsed sub-expressions are kept as verbatim source text. Only nodes built by
the caller (`And`, `Group`) are rendered structurally, which means merging a
condition into an existing clause never reformats the caller's SQL or
reorders its `?` placeholders.
*/
package boolexpr

// Node of a boolean expression. Appends its SQL text to the buffer.
type Expr interface {
	AppendExpr(text []byte) []byte
}

// Parses predicate text. Implementations must be safe for concurrent use.
type Parser interface {
	// Parses a full where clause: the `WHERE` keyword, a predicate, and any
	// trailing clauses such as `ORDER BY` or `LIMIT`.
	ParseWhere(text string) (Clause, error)

	// Parses a single boolean predicate without a `WHERE` keyword.
	ParseCond(text string) (Expr, error)
}

// Where clause split into its predicate and whatever follows it.
type Clause struct {
	Pred Expr
	Tail string
}

// Serializes the clause, including the leading `WHERE`.
func (self Clause) String() string {
	text := []byte(`WHERE `)
	if self.Pred != nil {
		text = self.Pred.AppendExpr(text)
	}
	if self.Tail != "" {
		text = append(text, ' ')
		text = append(text, self.Tail...)
	}
	return string(text)
}

// Conjunction of two expressions, rendered as `<left> AND <right>`.
type And struct {
	Left  Expr
	Right Expr
}

// Implement `Expr`.
func (self And) AppendExpr(text []byte) []byte {
	text = appendExpr(text, self.Left)
	text = append(text, ` AND `...)
	text = appendExpr(text, self.Right)
	return text
}

// Parenthesized sub-expression.
type Group struct {
	Inner Expr
}

// Implement `Expr`.
func (self Group) AppendExpr(text []byte) []byte {
	text = append(text, '(')
	text = appendExpr(text, self.Inner)
	text = append(text, ')')
	return text
}

// Expression parsed from text. Serializes as the original source.
type Source struct {
	Text string
	tree *orCond
}

// Implement `Expr`.
func (self Source) AppendExpr(text []byte) []byte {
	return append(text, self.Text...)
}

// True if the top level of the expression is a disjunction.
func (self Source) IsDisjunction() bool {
	return self.tree != nil && len(self.tree.Terms) > 1
}

// Serializes any expression. Nil serializes as empty.
func String(expr Expr) string {
	return string(appendExpr(nil, expr))
}

func appendExpr(text []byte, expr Expr) []byte {
	if expr == nil {
		return text
	}
	return expr.AppendExpr(text)
}
