package dbh

import (
	"strings"

	"github.com/mitranim/dbh/boolexpr"
)

/*
Merges an AND-condition into a where clause at the expression level. The
original predicate becomes one parenthesized operand, so a top-level `OR` in
it can never be absorbed by the new `AND`. Example:

	text, err := dbh.MergeWhere(`where a<>3 or a<>2 limit 1`, `deleted=0`)

	// Output:
	`WHERE deleted=0 AND (a<>3 or a<>2) limit 1`

Rules:

	* Blank condition: the where text is returned unchanged.
	* Blank where text: `WHERE <cond>`.
	* Where text without a leading `WHERE`, such as `group by x`:
	  `WHERE <cond> <text>`.
	* Otherwise the clause and the condition are parsed and recombined. A
	  condition with a top-level `OR` is parenthesized as well.

The condition is parsed only when the where text has a `WHERE` clause to
merge into. Otherwise it is used verbatim.

The result has no leading space. Unparsable input fails with
`ErrMalformedWhereClause` and produces no text.
*/
func MergeWhere(whereText, cond string) (string, error) {
	return Default.MergeWhere(whereText, cond)
}

func mergeWhere(parser boolexpr.Parser, whereText, cond string) (string, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return whereText, nil
	}

	whereText = strings.TrimSpace(whereText)
	if whereText == "" {
		return `WHERE ` + cond, nil
	}
	if !startsWithWhere(whereText) {
		return `WHERE ` + cond + ` ` + whereText, nil
	}

	expr, err := parser.ParseCond(cond)
	if err != nil {
		return "", ErrMalformedWhereClause.while(`parsing condition`).because(err)
	}

	clause, err := parser.ParseWhere(whereText)
	if err != nil {
		return "", ErrMalformedWhereClause.while(`parsing where clause`).because(err)
	}

	if isDisjunction(expr) {
		expr = boolexpr.Group{Inner: expr}
	}
	clause.Pred = boolexpr.And{Left: expr, Right: boolexpr.Group{Inner: clause.Pred}}
	return clause.String(), nil
}

func isDisjunction(expr boolexpr.Expr) bool {
	val, ok := expr.(interface{ IsDisjunction() bool })
	return ok && val.IsDisjunction()
}
