package dbh

import (
	"fmt"
)

/*
Builds the key where clause for an instance, with soft-delete filtering, bound
to the instance's key values. The text begins with a space. Example:

	" WHERE `deleted`=0 AND (`id`=?)"

Fails with `ErrMissingKeyColumn` if the entity has no keys, and with
`ErrNullKeyValue` if any key value is null.
*/
func BuildKeysWhere(instance interface{}) (Fragment, error) {
	return Default.BuildKeysWhere(instance)
}

// Same as `BuildKeysWhere`, but without args: for a type rather than an instance.
func BuildKeysWhereTemplate(entity interface{}) (Fragment, error) {
	return Default.BuildKeysWhereTemplate(entity)
}

/*
Builds " WHERE `id` IN (?)", with soft-delete filtering, for an entity with
exactly one key column. The single placeholder is meant for drivers that
expand a list argument.
*/
func BuildKeyInWhere(entity interface{}) (Fragment, error) {
	return Default.BuildKeyInWhere(entity)
}

/*
Same as `BuildKeyInWhere`, but renders one placeholder per key and binds the
keys as args. Requires at least one key; null keys fail with
`ErrNullKeyValue`.
*/
func BuildKeyInWhereValues(entity interface{}, keys ...interface{}) (Fragment, error) {
	return Default.BuildKeyInWhereValues(entity, keys...)
}

// Same as the package-level `BuildKeysWhere`.
func (self Builder) BuildKeysWhere(instance interface{}) (Fragment, error) {
	frag, err := self.buildKeysWhere(instance)
	return self.done(`keys where`, frag, err)
}

func (self Builder) buildKeysWhere(instance interface{}) (Fragment, error) {
	desc, err := self.describe(instance)
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
	return Fragment{Text: where, Args: keys.Values()}, nil
}

// Same as the package-level `BuildKeysWhereTemplate`.
func (self Builder) BuildKeysWhereTemplate(entity interface{}) (Fragment, error) {
	frag, err := self.buildKeysWhereTemplate(entity)
	return self.done(`keys where template`, frag, err)
}

func (self Builder) buildKeysWhereTemplate(entity interface{}) (Fragment, error) {
	desc, err := self.describe(entity)
	if err != nil {
		return Fragment{}, err
	}

	keys, err := desc.KeyColumns()
	if err != nil {
		return Fragment{}, err
	}

	where, err := self.applySoftDelete(desc, `WHERE `+columnArgs(keys).ConditionsString())
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Text: where}, nil
}

// Same as the package-level `BuildKeyInWhere`.
func (self Builder) BuildKeyInWhere(entity interface{}) (Fragment, error) {
	frag, err := self.buildKeyIn(entity, 1, nil)
	return self.done(`key in where`, frag, err)
}

// Same as the package-level `BuildKeyInWhereValues`.
func (self Builder) BuildKeyInWhereValues(entity interface{}, keys ...interface{}) (Fragment, error) {
	frag, err := self.buildKeyInValues(entity, keys)
	return self.done(`key in where`, frag, err)
}

func (self Builder) buildKeyInValues(entity interface{}, keys []interface{}) (Fragment, error) {
	if len(keys) == 0 {
		return Fragment{}, ErrInvalidInput.while(`building key in where`).because(fmt.Errorf(`no keys`))
	}
	for _, key := range keys {
		if isNull(key) {
			return Fragment{}, ErrNullKeyValue.while(`building key in where`)
		}
	}
	return self.buildKeyIn(entity, len(keys), concatArgs(nil, keys))
}

func (self Builder) buildKeyIn(entity interface{}, count int, args []interface{}) (Fragment, error) {
	desc, err := self.describe(entity)
	if err != nil {
		return Fragment{}, err
	}

	key, err := singleKeyColumn(desc)
	if err != nil {
		return Fragment{}, err
	}

	buf := []byte(`WHERE `)
	buf = appendQuoted(buf, key.Name)
	buf = append(buf, ` IN (`...)
	buf = appendJoined(buf, `?`, count, `,`)
	buf = append(buf, ')')

	where, err := self.applySoftDelete(desc, string(buf))
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Text: where, Args: args}, nil
}

func singleKeyColumn(desc *EntityDescriptor) (ColumnDescriptor, error) {
	keys, err := desc.KeyColumns()
	if err != nil {
		return ColumnDescriptor{}, err
	}
	if len(keys) > 1 {
		return ColumnDescriptor{}, ErrInvalidInput.because(fmt.Errorf(
			`table %q has %d key columns, expected exactly one`, desc.Table, len(keys),
		))
	}
	return keys[0], nil
}
