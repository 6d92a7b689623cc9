package dbh

/*
Sequence of named SQL arguments with utility methods for query building.
Usually obtained from an entity via a `Describer`. Every rendering method emits
one `?` placeholder per argument, in order, so the text always lines up with
`SqlArgs.Values()`.
*/
type SqlArgs []SqlArg

/*
Returns the argument names.
*/
func (self SqlArgs) Names() []string {
	var names []string
	for _, arg := range self {
		names = append(names, arg.Name)
	}
	return names
}

/*
Returns the argument values.
*/
func (self SqlArgs) Values() []interface{} {
	var values []interface{}
	for _, arg := range self {
		values = append(values, arg.Value)
	}
	return values
}

/*
Returns comma-separated quoted argument names, suitable for a column list.
Example:

	args := dbh.SqlArgs{{"one", 10}, {"two", 20}}

	fmt.Sprintf(`insert into some_table (%v)`, args.NamesString())

	// Output:
	"insert into some_table (`one`,`two`)"
*/
func (self SqlArgs) NamesString() string {
	return bytesToMutableString(self.appendNames(nil))
}

func (self SqlArgs) appendNames(buf []byte) []byte {
	for i, arg := range self {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendQuoted(buf, arg.Name)
	}
	return buf
}

/*
Returns comma-separated parameter placeholders, suitable for a `values`
clause. Example:

	args := dbh.SqlArgs{{"one", 10}, {"two", 20}}

	fmt.Sprintf(`values (%v)`, args.ValuesString())

	// Output:
	`values (?,?)`
*/
func (self SqlArgs) ValuesString() string {
	return bytesToMutableString(appendJoined(nil, `?`, len(self), `,`))
}

/*
Returns the string of assignments suitable for an `update set` clause. Example:

	args := dbh.SqlArgs{{"one", 10}, {"two", 20}}

	fmt.Sprintf(`update some_table set %v`, args.AssignmentsString())

	// Output:
	"update some_table set `one`=?,`two`=?"
*/
func (self SqlArgs) AssignmentsString() string {
	var buf []byte
	for i, arg := range self {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendQuoted(buf, arg.Name)
		buf = append(buf, `=?`...)
	}
	return bytesToMutableString(buf)
}

/*
Returns the string of conditions suitable for a `where` clause. Example:

	args := dbh.SqlArgs{{"one", 10}, {"two", 20}}

	fmt.Sprintf(`select * from some_table where %v`, args.ConditionsString())

	// Output:
	"select * from some_table where `one`=? AND `two`=?"
*/
func (self SqlArgs) ConditionsString() string {
	var buf []byte
	for i, arg := range self {
		if i > 0 {
			buf = append(buf, ` AND `...)
		}
		buf = appendQuoted(buf, arg.Name)
		buf = append(buf, `=?`...)
	}
	return bytesToMutableString(buf)
}

/*
Returns true if at least one argument satisfies the predicate function. Example:

  args.Some(SqlArg.IsNil)
*/
func (self SqlArgs) Some(fun func(SqlArg) bool) bool {
	for _, arg := range self {
		if fun != nil && fun(arg) {
			return true
		}
	}
	return false
}

/*
Returns true if every argument satisfies the predicate function. Example:

  args.Every(SqlArg.IsNil)
*/
func (self SqlArgs) Every(fun func(SqlArg) bool) bool {
	for _, arg := range self {
		if fun == nil || !fun(arg) {
			return false
		}
	}
	return true
}

// Same as `sql.NamedArg`, with additional methods. See `SqlArgs`.
type SqlArg struct {
	Name  string
	Value interface{}
}

// True if the value is SQL null. See `isNull`.
func (self SqlArg) IsNil() bool {
	return isNull(self.Value)
}
