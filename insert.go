package dbh

import (
	"fmt"
	"reflect"

	"github.com/mitranim/dbh/boolexpr"
	"github.com/mitranim/refut"
)

/*
Builds an insert for one instance. Unless `includeNulls` is set, columns whose
value is null are omitted from both the column list and the values. Example:

	INSERT INTO `t_user` (`id`,`name`) VALUES (?,?)
*/
func BuildInsert(instance interface{}, includeNulls bool) (Fragment, error) {
	return Default.BuildInsert(instance, includeNulls)
}

/*
Builds a multi-row insert. The input must be a slice or array of instances
mapped to the same table. With more than one instance, null values are always
included, since a sparse column set can't be consistent across rows. Example:

	INSERT INTO `t_user` (`id`,`name`) VALUES (?,?),(?,?)
*/
func BuildInsertBatch(instances interface{}) (Fragment, error) {
	return Default.BuildInsertBatch(instances)
}

/*
Builds an insert that only takes effect if no row matches `whereText`. The
where text gets a `WHERE` keyword if it lacks one, and is soft-delete filtered.
Args are bound to the placeholders in `whereText`, after the column values.
Example:

	INSERT INTO `t_user` (`id`,`name`) SELECT ?,? FROM dual
	WHERE NOT EXISTS (SELECT 1 FROM `t_user` WHERE `deleted`=0 AND (name = ?) LIMIT 1)
*/
func BuildInsertIfNotExists(instance interface{}, includeNulls bool, whereText string, args ...interface{}) (Fragment, error) {
	return Default.BuildInsertIfNotExists(instance, includeNulls, whereText, args...)
}

// Same as the package-level `BuildInsert`.
func (self Builder) BuildInsert(instance interface{}, includeNulls bool) (Fragment, error) {
	frag, err := self.buildInsert([]interface{}{instance}, includeNulls)
	return self.done(`insert`, frag, err)
}

// Same as the package-level `BuildInsertBatch`.
func (self Builder) BuildInsertBatch(instances interface{}) (Fragment, error) {
	list, err := sliceElems(instances)
	if err != nil {
		return self.done(`insert batch`, Fragment{}, err)
	}
	frag, err := self.buildInsert(list, false)
	return self.done(`insert batch`, frag, err)
}

func (self Builder) buildInsert(instances []interface{}, includeNulls bool) (Fragment, error) {
	if len(instances) == 0 {
		return Fragment{}, ErrInvalidInput.while(`building insert`).because(fmt.Errorf(`no instances`))
	}
	if len(instances) > 1 {
		includeNulls = true
	}

	desc, err := self.describeWritable(instances[0])
	if err != nil {
		return Fragment{}, err
	}

	first, err := readArgs(self.describer(), desc.Columns, instances[0])
	if err != nil {
		return Fragment{}, err
	}
	first = filterNull(first, includeNulls)

	tuple := `(` + first.ValuesString() + `)`

	buf := []byte(`INSERT INTO `)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, ` (`...)
	buf = first.appendNames(buf)
	buf = append(buf, `) VALUES `...)
	buf = append(buf, tuple...)

	values := make([]interface{}, 0, len(first)*len(instances))
	values = append(values, first.Values()...)

	for _, instance := range instances[1:] {
		other, err := self.describeWritable(instance)
		if err != nil {
			return Fragment{}, err
		}
		err = sameColumns(desc, other)
		if err != nil {
			return Fragment{}, err
		}

		args, err := readArgs(self.describer(), desc.Columns, instance)
		if err != nil {
			return Fragment{}, err
		}

		buf = append(buf, ',')
		buf = append(buf, tuple...)
		values = append(values, args.Values()...)
	}

	return Fragment{Text: string(buf), Args: values}, nil
}

// Same as the package-level `BuildInsertIfNotExists`.
func (self Builder) BuildInsertIfNotExists(
	instance interface{}, includeNulls bool, whereText string, args ...interface{},
) (Fragment, error) {
	frag, err := self.buildInsertIfNotExists(instance, includeNulls, whereText, args)
	return self.done(`insert if not exists`, frag, err)
}

func (self Builder) buildInsertIfNotExists(
	instance interface{}, includeNulls bool, whereText string, whereArgs []interface{},
) (Fragment, error) {
	// A line comment would swallow the closing parenthesis of the subquery.
	whereText, err := boolexpr.StripLineComments(whereText)
	if err != nil {
		return Fragment{}, ErrMalformedWhereClause.while(`building insert if not exists`).because(err)
	}
	if whereText == "" {
		return Fragment{}, ErrInvalidInput.while(`building insert if not exists`).because(fmt.Errorf(`where text is required`))
	}
	if !startsWithWhere(whereText) {
		whereText = `WHERE ` + whereText
	}

	desc, err := self.describeWritable(instance)
	if err != nil {
		return Fragment{}, err
	}

	args, err := readArgs(self.describer(), desc.Columns, instance)
	if err != nil {
		return Fragment{}, err
	}
	args = filterNull(args, includeNulls)

	where, err := self.applySoftDelete(desc, whereText)
	if err != nil {
		return Fragment{}, err
	}

	buf := []byte(`INSERT INTO `)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, ` (`...)
	buf = args.appendNames(buf)
	buf = append(buf, `) SELECT `...)
	buf = append(buf, args.ValuesString()...)
	buf = append(buf, ` FROM dual WHERE NOT EXISTS (SELECT 1 FROM `...)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, where...)
	buf = append(buf, ` LIMIT 1)`...)

	return Fragment{Text: string(buf), Args: concatArgs(args.Values(), whereArgs)}, nil
}

func sameColumns(desc, other *EntityDescriptor) error {
	if desc.Table == other.Table && len(desc.Columns) == len(other.Columns) {
		match := true
		for i := range desc.Columns {
			if desc.Columns[i].Name != other.Columns[i].Name {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return ErrInvalidInput.while(`building insert batch`).because(fmt.Errorf(
		`instances map to different columns: table %q vs. %q`, desc.Table, other.Table,
	))
}

// Converts a slice or array into a list of its elements.
func sliceElems(input interface{}) ([]interface{}, error) {
	rval := reflect.ValueOf(input)
	for rval.IsValid() && rval.Kind() == reflect.Ptr && !rval.IsNil() {
		rval = rval.Elem()
	}
	if !rval.IsValid() || (rval.Kind() != reflect.Slice && rval.Kind() != reflect.Array) {
		return nil, ErrInvalidInput.while(`building insert batch`).because(fmt.Errorf(
			`expected a slice or array of instances, got %T`, input,
		))
	}

	out := make([]interface{}, 0, rval.Len())
	for i := 0; i < rval.Len(); i++ {
		elem := rval.Index(i)
		if refut.IsRkindNilable(elem.Kind()) && elem.IsNil() {
			return nil, ErrInvalidInput.while(`building insert batch`).because(fmt.Errorf(`nil instance at index %d`, i))
		}
		out = append(out, elem.Interface())
	}
	return out, nil
}
