/*
Database helpers: synthesizes parameterized SQL statements from declarative
entity metadata. NOT AN ORM. Doesn't connect to databases, doesn't decode
rows, doesn't cache anything. Every function is pure and returns either a
complete `Fragment` (SQL text plus its ordered args) or an error.

Key Features

• Builds SELECT, COUNT, INSERT, UPDATE and DELETE statements from struct tags.
See `TagDescriber`.

• Selects over two-table joins, aliased `t1` and `t2`. See `Joiner`.

• Logical deletion: every generated where clause is filtered by the entity's
soft-delete column, including outer joins where one side may be absent. See
`ApplySoftDeleteFilter`.

• Merges conditions into existing where clauses at the expression level,
never breaking operator precedence. See `MergeWhere`.

• Placeholder order always matches arg order, also when composing fragments.
See `Fragment`.

Mapping Rules

1. Columns are public struct fields with a `db` tag, in declaration order.
Private fields or fields without `db` are ignored. Fields of embedded structs
are treated as part of the enclosing struct.

2. The table is named by implementing `Tabler`.

3. Column options go into the `dbh` tag. Example:

	type User struct {
		Id         int64      `db:"id"          dbh:"key"`
		Name       string     `db:"name"`
		Deleted    *int       `db:"deleted"     dbh:"soft=0|1"`
		UpdateTime *time.Time `db:"update_time" dbh:"updated"`
	}

	func (User) TableName() string { return "t_user" }

4. Nil pointers, nil interfaces and `driver.Valuer`s encoding to null, such as
an invalid `sql.NullString`, are null. Null columns are omitted from sparse
inserts and updates. Null keys are an error.

Statements

All identifiers are quoted with backticks and all values are bound via `?`:

	frag, err := dbh.BuildUpdate(User{Id: 10, Name: "one"}, false, "")

	// Output:
	dbh.Fragment{
		Text: "UPDATE `t_user` SET `name`=? WHERE `deleted`=0 AND (`id`=?)",
		Args: []interface{}{"one", int64(10)},
	}

Package-level functions use `Default`. To customize metadata, condition
parsing, timestamps or logging, use a `Builder`.

Non-Goals

Query planning, transactions, connection pooling, and dialect-specific SQL
beyond identifier quoting are out of scope. The output is MySQL-flavored.
*/
package dbh
