package dbh

import (
	"fmt"
)

// Reads the given columns of an instance into named args, in column order.
func readArgs(describer Describer, cols []ColumnDescriptor, instance interface{}) (SqlArgs, error) {
	args := make(SqlArgs, 0, len(cols))
	for _, col := range cols {
		val, err := describer.ReadValue(col, instance)
		if err != nil {
			return nil, err
		}
		args = append(args, SqlArg{Name: col.Name, Value: val})
	}
	return args, nil
}

// Drops null args unless `withNull` is set.
func filterNull(args SqlArgs, withNull bool) SqlArgs {
	if withNull {
		return args
	}
	out := make(SqlArgs, 0, len(args))
	for _, arg := range args {
		if !arg.IsNil() {
			out = append(out, arg)
		}
	}
	return out
}

/*
Reads the key values of an instance. Fails with `ErrMissingKeyColumn` if the
entity has no keys and with `ErrNullKeyValue` if any key is null.
*/
func readKeyArgs(describer Describer, desc *EntityDescriptor, instance interface{}) (SqlArgs, error) {
	keys, err := desc.KeyColumns()
	if err != nil {
		return nil, err
	}

	args, err := readArgs(describer, keys, instance)
	if err != nil {
		return nil, err
	}

	for _, arg := range args {
		if arg.IsNil() {
			return nil, ErrNullKeyValue.because(fmt.Errorf(`key column %q of table %q is null`, arg.Name, desc.Table))
		}
	}
	return args, nil
}

// Args without values, used to render key templates.
func columnArgs(cols []ColumnDescriptor) SqlArgs {
	args := make(SqlArgs, 0, len(cols))
	for _, col := range cols {
		args = append(args, SqlArg{Name: col.Name})
	}
	return args
}
