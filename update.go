package dbh

import (
	"fmt"
	"strings"
)

/*
Builds an update of the non-key columns of an instance, keyed by its key
columns, with soft-delete filtering. Unless `withNull` is set, null columns are
skipped. Example:

	UPDATE `t_user` SET `name`=? WHERE `deleted`=0 AND (`id`=?)

If no column remains to be set, returns the no-op fragment and no error; check
`Fragment.IsNoop` before executing.

`postSql` is appended to the key predicate: if it begins with `where`, the
keyword is replaced with `AND`, otherwise it's appended as-is. Args are bound
to its placeholders.
*/
func BuildUpdate(instance interface{}, withNull bool, postSql string, args ...interface{}) (Fragment, error) {
	return Default.BuildUpdate(instance, withNull, postSql, args...)
}

/*
Builds an update with a caller-supplied `SET` body. Columns flagged as update
timestamps are appended as additional assignments bound to the current time.
Args are bound to the placeholders in `setSql`. Example:

	UPDATE `t_user` SET name = ?,`update_time`=? WHERE `deleted`=0 AND (`id`=?)
*/
func BuildCustomUpdate(instance interface{}, setSql string, args ...interface{}) (Fragment, error) {
	return Default.BuildCustomUpdate(instance, setSql, args...)
}

/*
Builds a logical delete of an instance: an update setting its soft-delete
column to the deleted value. Fails with `ErrMissingSoftDelete` if the entity
has no soft-delete column. Example:

	UPDATE `t_user` SET `deleted`=1,`update_time`=? WHERE `deleted`=0 AND (`id`=?)
*/
func BuildSoftDelete(instance interface{}) (Fragment, error) {
	return Default.BuildSoftDelete(instance)
}

// Same as the package-level `BuildUpdate`.
func (self Builder) BuildUpdate(instance interface{}, withNull bool, postSql string, args ...interface{}) (Fragment, error) {
	frag, err := self.buildUpdate(instance, withNull, postSql, args)
	if err == nil && frag.IsNoop() {
		self.logger().Debug(`nothing to update`, `type`, fmt.Sprintf(`%T`, instance))
		return frag, nil
	}
	return self.done(`update`, frag, err)
}

func (self Builder) buildUpdate(
	instance interface{}, withNull bool, postSql string, postArgs []interface{},
) (Fragment, error) {
	desc, err := self.describeWritable(instance)
	if err != nil {
		return Fragment{}, err
	}

	_, err = desc.KeyColumns()
	if err != nil {
		return Fragment{}, err
	}

	set, err := readArgs(self.describer(), desc.NonKeyColumns(), instance)
	if err != nil {
		return Fragment{}, err
	}
	set = filterNull(set, withNull)
	if len(set) == 0 {
		return Fragment{}, nil
	}

	keys, err := readKeyArgs(self.describer(), desc, instance)
	if err != nil {
		return Fragment{}, err
	}

	where := `WHERE ` + keys.ConditionsString()
	post := strings.TrimSpace(postSql)
	if post != "" {
		if startsWithWhere(post) {
			where += ` AND ` + trimWhere(post)
		} else {
			where += ` ` + post
		}
	}

	where, err = self.applySoftDelete(desc, where)
	if err != nil {
		return Fragment{}, err
	}

	buf := []byte(`UPDATE `)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, ` SET `...)
	buf = append(buf, set.AssignmentsString()...)
	buf = append(buf, where...)

	values := concatArgs(set.Values(), keys.Values())
	return Fragment{Text: string(buf), Args: concatArgs(values, postArgs)}, nil
}

// Same as the package-level `BuildCustomUpdate`.
func (self Builder) BuildCustomUpdate(instance interface{}, setSql string, args ...interface{}) (Fragment, error) {
	frag, err := self.buildCustomUpdate(instance, setSql, args)
	return self.done(`custom update`, frag, err)
}

// Same as the package-level `BuildSoftDelete`.
func (self Builder) BuildSoftDelete(instance interface{}) (Fragment, error) {
	frag, err := self.buildSoftDelete(instance)
	return self.done(`soft delete`, frag, err)
}

func (self Builder) buildSoftDelete(instance interface{}) (Fragment, error) {
	desc, err := self.describeWritable(instance)
	if err != nil {
		return Fragment{}, err
	}
	setSql, err := softDeleteAssignment(desc)
	if err != nil {
		return Fragment{}, err
	}
	return self.buildCustomUpdate(instance, setSql, nil)
}

func (self Builder) buildCustomUpdate(instance interface{}, setSql string, setArgs []interface{}) (Fragment, error) {
	setSql = strings.TrimSpace(setSql)
	if setSql == "" {
		return Fragment{}, ErrInvalidInput.while(`building custom update`).because(fmt.Errorf(`set clause is required`))
	}

	desc, err := self.describeWritable(instance)
	if err != nil {
		return Fragment{}, err
	}

	keys, err := readKeyArgs(self.describer(), desc, instance)
	if err != nil {
		return Fragment{}, err
	}

	where, err := self.applySoftDelete(desc, `WHERE `+keys.ConditionsString())
	if err != nil {
		return Fragment{}, err
	}

	stamps := self.updateStamps(desc)

	buf := []byte(`UPDATE `)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, ` SET `...)
	buf = append(buf, setSql...)
	buf = appendStamps(buf, stamps)
	buf = append(buf, where...)

	values := concatArgs(setArgs, stamps.Values())
	return Fragment{Text: string(buf), Args: concatArgs(values, keys.Values())}, nil
}

// Assignments of the current time to every update-timestamp column.
func (self Builder) updateStamps(desc *EntityDescriptor) SqlArgs {
	cols := desc.UpdateTimestampColumns()
	if len(cols) == 0 {
		return nil
	}

	now := self.now()
	args := make(SqlArgs, 0, len(cols))
	for _, col := range cols {
		args = append(args, SqlArg{Name: col.Name, Value: now})
	}
	return args
}

func appendStamps(buf []byte, stamps SqlArgs) []byte {
	if len(stamps) == 0 {
		return buf
	}
	buf = append(buf, ',')
	return append(buf, stamps.AssignmentsString()...)
}

func softDeleteAssignment(desc *EntityDescriptor) (string, error) {
	spec := desc.SoftDelete
	if spec == nil {
		return "", ErrMissingSoftDelete.because(fmt.Errorf(`table %q has no soft-delete column`, desc.Table))
	}
	return quoted(spec.Column) + `=` + spec.Deleted, nil
}
