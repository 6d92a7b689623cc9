package dbh

import (
	"fmt"
	"strings"
)

/*
Static metadata for one mapped type. Obtained from a `Describer` and never
mutated by this package. A descriptor with a non-nil `Join` describes a
read-only composite of two tables, aliased `t1` and `t2`.
*/
type EntityDescriptor struct {
	Table      string
	Columns    []ColumnDescriptor
	SoftDelete *SoftDeleteSpec
	Join       *JoinDescriptor
}

/*
Single mapped column. `Index` locates the value on an instance; its meaning is
owned by the `Describer` that produced the column.
*/
type ColumnDescriptor struct {
	Name            string
	Key             bool
	UpdateTimestamp bool
	Index           []int
}

/*
Logical deletion marker. `Active` and `Deleted` are SQL literals, embedded
into the generated text as-is, for example `0` and `1` or `'N'` and `'Y'`.
*/
type SoftDeleteSpec struct {
	Column  string
	Active  string
	Deleted string
}

type JoinType string

const (
	JoinInner JoinType = `INNER`
	JoinLeft  JoinType = `LEFT`
	JoinRight JoinType = `RIGHT`
)

// Returns the SQL keyword, or an empty string for unknown join types.
func (self JoinType) Keyword() string {
	switch self {
	case JoinInner:
		return `JOIN`
	case JoinLeft:
		return `LEFT JOIN`
	case JoinRight:
		return `RIGHT JOIN`
	default:
		return ``
	}
}

// Pairs two entities into a two-table composite for SELECT and COUNT.
type JoinDescriptor struct {
	Left  *EntityDescriptor
	Right *EntityDescriptor
	Type  JoinType
	On    string
}

/*
Constructs a join, failing immediately with `ErrMissingJoinCondition` if the
on-condition is blank.
*/
func NewJoinDescriptor(left, right *EntityDescriptor, typ JoinType, on string) (*JoinDescriptor, error) {
	join := &JoinDescriptor{Left: left, Right: right, Type: typ, On: strings.TrimSpace(on)}
	err := join.Validate()
	if err != nil {
		return nil, err
	}
	return join, nil
}

// Validates a join, including joins constructed as struct literals.
func (self *JoinDescriptor) Validate() error {
	if strings.TrimSpace(self.On) == "" {
		return ErrMissingJoinCondition.while(`validating join`)
	}
	if self.Type.Keyword() == "" {
		return ErrInvalidInput.while(`validating join`).because(fmt.Errorf(`unknown join type %q`, self.Type))
	}
	if self.Left == nil || self.Right == nil {
		return ErrInvalidInput.while(`validating join`).because(fmt.Errorf(`join requires both sides`))
	}
	if self.Left.Join != nil || self.Right.Join != nil {
		return ErrInvalidInput.while(`validating join`).because(fmt.Errorf(`nested joins are not supported`))
	}
	return nil
}

// Returns the key columns, failing with `ErrMissingKeyColumn` if there are none.
func (self *EntityDescriptor) KeyColumns() ([]ColumnDescriptor, error) {
	var out []ColumnDescriptor
	for _, col := range self.Columns {
		if col.Key {
			out = append(out, col)
		}
	}
	if len(out) == 0 {
		return nil, ErrMissingKeyColumn.because(fmt.Errorf(`table %q has no key columns`, self.Table))
	}
	return out, nil
}

// Returns the columns that are not keys, in declaration order.
func (self *EntityDescriptor) NonKeyColumns() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, col := range self.Columns {
		if !col.Key {
			out = append(out, col)
		}
	}
	return out
}

// Returns the columns flagged to be stamped with the current time on update.
func (self *EntityDescriptor) UpdateTimestampColumns() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, col := range self.Columns {
		if col.UpdateTimestamp {
			out = append(out, col)
		}
	}
	return out
}

func (self *EntityDescriptor) writable() error {
	if self.Join != nil {
		return ErrReadOnlyEntity.because(fmt.Errorf(`join of %q and %q can only be selected`,
			self.Join.Left.Table, self.Join.Right.Table))
	}
	return nil
}

/*
Metadata provider consumed by every builder. `Describe` accepts either an
instance or a representative of its type, as documented by the
implementation. Both methods must fail with `ErrUnmappedType` for types they
can't describe.

`TagDescriber` is the default implementation.
*/
type Describer interface {
	Describe(entity interface{}) (*EntityDescriptor, error)
	ReadValue(col ColumnDescriptor, instance interface{}) (interface{}, error)
}
