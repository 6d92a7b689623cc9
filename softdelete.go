package dbh

import (
	"strings"
)

/*
Derives the condition implementing logical deletion, or an empty string when
none applies. For joins, the side that an outer join may leave absent also
accepts null, otherwise rows without a match would be filtered out:

	LEFT JOIN, both sides soft-deleted:
	t1.`deleted`=0 AND (t2.`deleted`=0 OR t2.`deleted` IS NULL)
*/
func softDeleteCondition(desc *EntityDescriptor) string {
	join := desc.Join
	if join == nil {
		if desc.SoftDelete == nil {
			return ""
		}
		return softDeleteTerm(``, desc.SoftDelete, false)
	}

	var terms []string
	if spec := join.Left.SoftDelete; spec != nil {
		terms = append(terms, softDeleteTerm(`t1`, spec, join.Type == JoinRight))
	}
	if spec := join.Right.SoftDelete; spec != nil {
		terms = append(terms, softDeleteTerm(`t2`, spec, join.Type == JoinLeft))
	}
	return strings.Join(terms, ` AND `)
}

func softDeleteTerm(alias string, spec *SoftDeleteSpec, nullable bool) string {
	col := appendAliasedQuoted(nil, alias, spec.Column)

	var buf []byte
	if nullable {
		buf = append(buf, '(')
	}
	buf = append(buf, col...)
	buf = append(buf, '=')
	buf = append(buf, spec.Active...)
	if nullable {
		buf = append(buf, ` OR `...)
		buf = append(buf, col...)
		buf = append(buf, ` IS NULL)`...)
	}
	return string(buf)
}

/*
Merges the soft-delete condition of the entity, if any, into the where text.
The where text must begin with `WHERE` if it has a predicate; other trailing
SQL such as `group by` or `limit` is accepted as well. The result always
begins with exactly one space, so it can be appended to a statement directly.
Example:

	text, err := dbh.ApplySoftDeleteFilter(`where name = ?`, User{})

	// Output:
	" WHERE `deleted`=0 AND (name = ?)"
*/
func ApplySoftDeleteFilter(whereText string, entity interface{}) (string, error) {
	return Default.ApplySoftDeleteFilter(whereText, entity)
}

func (self Builder) applySoftDelete(desc *EntityDescriptor, whereText string) (string, error) {
	out, err := mergeWhere(self.parser(), whereText, softDeleteCondition(desc))
	if err != nil {
		return "", err
	}
	return ` ` + strings.TrimSpace(out), nil
}

// Appends filtered where text unless it's blank.
func appendFiltered(buf []byte, where string) []byte {
	if strings.TrimSpace(where) == "" {
		return buf
	}
	return append(buf, where...)
}
