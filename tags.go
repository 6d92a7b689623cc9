package dbh

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitranim/refut"
)

/*
Implemented by mapped struct types to name their table. May be implemented on
either the value or the pointer type.
*/
type Tabler interface {
	TableName() string
}

/*
Implemented by struct types that describe a two-table join. The struct must
have exactly one field tagged `dbh:"left"` and one tagged `dbh:"right"`, whose
types are mapped entities themselves. Example:

	type UserSchool struct {
		User   User   `dbh:"left"`
		School School `dbh:"right"`
	}

	func (UserSchool) JoinSpec() (dbh.JoinType, string) {
		return dbh.JoinLeft, "t1.`school_id`=t2.`id`"
	}
*/
type Joiner interface {
	JoinSpec() (JoinType, string)
}

/*
Default `Describer`, reading metadata from struct tags:

	type User struct {
		Id         int64      `db:"id"          dbh:"key"`
		Name       string     `db:"name"`
		Deleted    *int       `db:"deleted"     dbh:"soft=0|1"`
		UpdateTime *time.Time `db:"update_time" dbh:"updated"`
	}

	func (User) TableName() string { return "t_user" }

Columns are exported fields with a `db` tag, in declaration order, including
fields of embedded structs. Options in the `dbh` tag are comma-separated:

	key       -- part of the key
	updated   -- stamped with the current time on update
	soft=A|D  -- soft-delete column with active literal A and deleted literal D,
	             defaults to 0|1

`Describe` accepts a struct value, a pointer (possibly nil), or a
`reflect.Type`. `ReadValue` requires a value or a non-nil pointer. Nil
pointers along an embedded path read as null.
*/
type TagDescriber struct{}

var (
	tablerRtype = reflect.TypeOf((*Tabler)(nil)).Elem()
	joinerRtype = reflect.TypeOf((*Joiner)(nil)).Elem()
)

// Implement `Describer`.
func (self TagDescriber) Describe(entity interface{}) (*EntityDescriptor, error) {
	rtype, err := entityRtype(entity)
	if err != nil {
		return nil, err
	}
	if implements(rtype, joinerRtype) {
		return describeJoinRtype(rtype)
	}
	return describeRtype(rtype)
}

// Implement `Describer`.
func (self TagDescriber) ReadValue(col ColumnDescriptor, instance interface{}) (interface{}, error) {
	rval := reflect.ValueOf(instance)
	for rval.IsValid() && rval.Kind() == reflect.Ptr {
		if rval.IsNil() {
			return nil, ErrInvalidInput.while(`reading column ` + col.Name).because(fmt.Errorf(
				`expected an instance, got nil %T`, instance,
			))
		}
		rval = rval.Elem()
	}
	if !rval.IsValid() || rval.Kind() != reflect.Struct {
		return nil, ErrUnmappedType.while(`reading column ` + col.Name).because(fmt.Errorf(
			`expected a struct instance, got %T`, instance,
		))
	}

	for i, index := range col.Index {
		if i > 0 {
			for rval.Kind() == reflect.Ptr {
				if rval.IsNil() {
					return nil, nil
				}
				rval = rval.Elem()
			}
		}
		if rval.Kind() != reflect.Struct || index >= rval.NumField() {
			return nil, ErrUnmappedType.while(`reading column ` + col.Name).because(fmt.Errorf(
				`field path %v doesn't exist on %T`, col.Index, instance,
			))
		}
		rval = rval.Field(index)
	}
	return rval.Interface(), nil
}

func entityRtype(entity interface{}) (reflect.Type, error) {
	rtype, ok := entity.(reflect.Type)
	if !ok {
		rtype = reflect.TypeOf(entity)
	}
	if rtype == nil {
		return nil, ErrUnmappedType.because(fmt.Errorf(`can't describe nil`))
	}

	rtype = refut.RtypeDeref(rtype)
	if rtype.Kind() != reflect.Struct {
		return nil, ErrUnmappedType.because(fmt.Errorf(`expected a struct type, got %v`, rtype))
	}
	return rtype, nil
}

func describeRtype(rtype reflect.Type) (*EntityDescriptor, error) {
	if !implements(rtype, tablerRtype) {
		return nil, ErrUnmappedType.because(fmt.Errorf(`type %v doesn't implement Tabler`, rtype))
	}

	desc := &EntityDescriptor{Table: zeroOf(rtype, tablerRtype).(Tabler).TableName()}
	if strings.TrimSpace(desc.Table) == "" {
		return nil, ErrUnmappedType.because(fmt.Errorf(`type %v has a blank table name`, rtype))
	}

	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, path []int) error {
		name := sfieldColumnName(sfield)
		if name == "" {
			return nil
		}

		col := ColumnDescriptor{Name: name, Index: copyIntSlice(path)}
		soft, err := parseColumnOptions(&col, sfield.Tag.Get(`dbh`))
		if err != nil {
			return err
		}

		if soft != nil {
			if desc.SoftDelete != nil {
				return ErrInvalidInput.because(fmt.Errorf(
					`type %v has more than one soft-delete column`, rtype,
				))
			}
			desc.SoftDelete = soft
		}

		desc.Columns = append(desc.Columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

func describeJoinRtype(rtype reflect.Type) (*EntityDescriptor, error) {
	var left, right *EntityDescriptor

	for i := 0; i < rtype.NumField(); i++ {
		sfield := rtype.Field(i)
		if !refut.IsSfieldExported(sfield) {
			continue
		}

		var side **EntityDescriptor
		switch strings.TrimSpace(sfield.Tag.Get(`dbh`)) {
		case `left`:
			side = &left
		case `right`:
			side = &right
		default:
			continue
		}

		if *side != nil {
			return nil, ErrInvalidInput.because(fmt.Errorf(
				`join type %v has more than one %q field`, rtype, sfield.Tag.Get(`dbh`),
			))
		}

		fieldRtype, err := entityRtype(sfield.Type)
		if err != nil {
			return nil, err
		}
		desc, err := describeRtype(fieldRtype)
		if err != nil {
			return nil, err
		}
		*side = desc
	}

	if left == nil || right == nil {
		return nil, ErrUnmappedType.because(fmt.Errorf(
			`join type %v requires fields tagged dbh:"left" and dbh:"right"`, rtype,
		))
	}

	typ, on := zeroOf(rtype, joinerRtype).(Joiner).JoinSpec()
	join, err := NewJoinDescriptor(left, right, typ, on)
	if err != nil {
		return nil, err
	}
	return &EntityDescriptor{Join: join}, nil
}

/*
Applies the options of a `dbh` tag to the column. Returns a soft-delete spec if
the column is the soft-delete marker.
*/
func parseColumnOptions(col *ColumnDescriptor, tag string) (*SoftDeleteSpec, error) {
	var soft *SoftDeleteSpec

	for _, opt := range strings.Split(tag, `,`) {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == `key`:
			col.Key = true
		case opt == `updated`:
			col.UpdateTimestamp = true
		case opt == `soft`:
			soft = &SoftDeleteSpec{Column: col.Name, Active: `0`, Deleted: `1`}
		case strings.HasPrefix(opt, `soft=`):
			active, deleted, ok := strings.Cut(strings.TrimPrefix(opt, `soft=`), `|`)
			active, deleted = strings.TrimSpace(active), strings.TrimSpace(deleted)
			if !ok || active == "" || deleted == "" {
				return nil, ErrInvalidInput.because(fmt.Errorf(
					`column %q: expected soft=<active>|<deleted>, got %q`, col.Name, opt,
				))
			}
			soft = &SoftDeleteSpec{Column: col.Name, Active: active, Deleted: deleted}
		default:
			return nil, ErrInvalidInput.because(fmt.Errorf(`column %q: unknown option %q`, col.Name, opt))
		}
	}
	return soft, nil
}

func sfieldColumnName(sfield reflect.StructField) string {
	return refut.TagIdent(sfield.Tag.Get(`db`))
}

func implements(rtype reflect.Type, iface reflect.Type) bool {
	return rtype.Implements(iface) || reflect.PtrTo(rtype).Implements(iface)
}

// Zero value of the type, or a pointer to it if only the pointer implements the interface.
func zeroOf(rtype reflect.Type, iface reflect.Type) interface{} {
	if rtype.Implements(iface) {
		return reflect.Zero(rtype).Interface()
	}
	return reflect.New(rtype).Interface()
}
