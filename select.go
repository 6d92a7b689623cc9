package dbh

import (
	"strings"
)

/*
Builds `SELECT <columns> FROM <table>` without a where clause. For a join
entity, left columns are prefixed with `t1.`, right columns with `t2.`, and the
tables are joined on the join's on-condition. Example:

	SELECT t1.`id`,t1.`name`,t2.`id`,t2.`title`
	FROM `t_user` t1 LEFT JOIN `t_school` t2 ON t1.`school_id`=t2.`id`
*/
func BuildSelect(entity interface{}) (Fragment, error) {
	return Default.BuildSelect(entity)
}

// Same as `BuildSelect`, but projects `count(*)`.
func BuildSelectCount(entity interface{}) (Fragment, error) {
	return Default.BuildSelectCount(entity)
}

/*
Same as `BuildSelect` followed by the soft-delete filtered `postSql`, which is
usually a where clause, possibly followed by `order by`, `limit` and so on.
Args are bound to the placeholders in `postSql`.
*/
func BuildSelectWhere(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	return Default.BuildSelectWhere(entity, postSql, args...)
}

// Same as `BuildSelectWhere`, but projects `count(*)`.
func BuildSelectCountWhere(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	return Default.BuildSelectCountWhere(entity, postSql, args...)
}

// Same as the package-level `BuildSelect`.
func (self Builder) BuildSelect(entity interface{}) (Fragment, error) {
	frag, err := self.buildSelect(entity, false, false, ``, nil)
	return self.done(`select`, frag, err)
}

// Same as the package-level `BuildSelectCount`.
func (self Builder) BuildSelectCount(entity interface{}) (Fragment, error) {
	frag, err := self.buildSelect(entity, true, false, ``, nil)
	return self.done(`select count`, frag, err)
}

// Same as the package-level `BuildSelectWhere`.
func (self Builder) BuildSelectWhere(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	frag, err := self.buildSelect(entity, false, true, postSql, args)
	return self.done(`select`, frag, err)
}

// Same as the package-level `BuildSelectCountWhere`.
func (self Builder) BuildSelectCountWhere(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	frag, err := self.buildSelect(entity, true, true, postSql, args)
	return self.done(`select count`, frag, err)
}

func (self Builder) buildSelect(
	entity interface{}, count bool, filter bool, postSql string, args []interface{},
) (Fragment, error) {
	desc, err := self.describe(entity)
	if err != nil {
		return Fragment{}, err
	}

	buf := []byte(`SELECT `)
	if count {
		buf = append(buf, `count(*)`...)
	} else {
		buf = appendProjection(buf, desc)
	}
	buf = appendFrom(buf, desc)

	if !filter {
		return Fragment{Text: string(buf)}, nil
	}

	where, err := self.applySoftDelete(desc, postSql)
	if err != nil {
		return Fragment{}, err
	}
	buf = appendFiltered(buf, where)
	return Fragment{Text: string(buf), Args: concatArgs(nil, args)}, nil
}

func appendProjection(buf []byte, desc *EntityDescriptor) []byte {
	if desc.Join == nil {
		return appendColumnNames(buf, ``, desc.Columns)
	}
	buf = appendColumnNames(buf, `t1`, desc.Join.Left.Columns)
	buf = append(buf, ',')
	buf = appendColumnNames(buf, `t2`, desc.Join.Right.Columns)
	return buf
}

func appendColumnNames(buf []byte, alias string, cols []ColumnDescriptor) []byte {
	for i, col := range cols {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendAliasedQuoted(buf, alias, col.Name)
	}
	return buf
}

// Assumes that the join, if any, has been validated by `Builder.describe`.
func appendFrom(buf []byte, desc *EntityDescriptor) []byte {
	buf = append(buf, ` FROM `...)

	join := desc.Join
	if join == nil {
		return appendQuoted(buf, desc.Table)
	}

	buf = appendQuoted(buf, join.Left.Table)
	buf = append(buf, ` t1 `...)
	buf = append(buf, join.Type.Keyword()...)
	buf = append(buf, ' ')
	buf = appendQuoted(buf, join.Right.Table)
	buf = append(buf, ` t2 ON `...)
	buf = append(buf, strings.TrimSpace(join.On)...)
	return buf
}
