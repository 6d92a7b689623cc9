package dbh

/*
Builds a physical delete of an instance, keyed by its key columns, with
soft-delete filtering. Example:

	DELETE FROM `t_user` WHERE `deleted`=0 AND (`id`=?)
*/
func BuildDelete(instance interface{}) (Fragment, error) {
	return Default.BuildDelete(instance)
}

/*
Builds a physical delete over rows matching `postSql`, with soft-delete
filtering. Args are bound to the placeholders in `postSql`. Example:

	DELETE FROM `t_user` WHERE `deleted`=0 AND (name = ?)
*/
func BuildCustomDelete(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	return Default.BuildCustomDelete(entity, postSql, args...)
}

/*
Builds a logical delete over rows matching `postSql`. Update-timestamp columns
are bound to the current time, followed by the args for `postSql`. Example:

	UPDATE `t_user` SET `deleted`=1,`update_time`=? WHERE `deleted`=0 AND (name = ?)
*/
func BuildCustomSoftDelete(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	return Default.BuildCustomSoftDelete(entity, postSql, args...)
}

// Same as the package-level `BuildDelete`.
func (self Builder) BuildDelete(instance interface{}) (Fragment, error) {
	frag, err := self.buildDelete(instance)
	return self.done(`delete`, frag, err)
}

func (self Builder) buildDelete(instance interface{}) (Fragment, error) {
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

	buf := []byte(`DELETE FROM `)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, where...)
	return Fragment{Text: string(buf), Args: keys.Values()}, nil
}

// Same as the package-level `BuildCustomDelete`.
func (self Builder) BuildCustomDelete(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	frag, err := self.buildCustomDelete(entity, postSql, args)
	return self.done(`custom delete`, frag, err)
}

func (self Builder) buildCustomDelete(entity interface{}, postSql string, args []interface{}) (Fragment, error) {
	desc, err := self.describeWritable(entity)
	if err != nil {
		return Fragment{}, err
	}

	where, err := self.applySoftDelete(desc, postSql)
	if err != nil {
		return Fragment{}, err
	}

	buf := []byte(`DELETE FROM `)
	buf = appendQuoted(buf, desc.Table)
	buf = appendFiltered(buf, where)
	return Fragment{Text: string(buf), Args: concatArgs(nil, args)}, nil
}

// Same as the package-level `BuildCustomSoftDelete`.
func (self Builder) BuildCustomSoftDelete(entity interface{}, postSql string, args ...interface{}) (Fragment, error) {
	frag, err := self.buildCustomSoftDelete(entity, postSql, args)
	return self.done(`custom soft delete`, frag, err)
}

func (self Builder) buildCustomSoftDelete(entity interface{}, postSql string, args []interface{}) (Fragment, error) {
	desc, err := self.describeWritable(entity)
	if err != nil {
		return Fragment{}, err
	}

	set, err := softDeleteAssignment(desc)
	if err != nil {
		return Fragment{}, err
	}

	where, err := self.applySoftDelete(desc, postSql)
	if err != nil {
		return Fragment{}, err
	}

	stamps := self.updateStamps(desc)

	buf := []byte(`UPDATE `)
	buf = appendQuoted(buf, desc.Table)
	buf = append(buf, ` SET `...)
	buf = append(buf, set...)
	buf = appendStamps(buf, stamps)
	buf = appendFiltered(buf, where)
	return Fragment{Text: string(buf), Args: concatArgs(stamps.Values(), args)}, nil
}
