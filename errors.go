package dbh

import (
	"errors"
	"fmt"
)

/*
Error codes. You probably shouldn't use this directly; instead, use the `Err`
variables with `errors.Is`.
*/
type ErrCode string

const (
	ErrCodeUnknown              ErrCode = ""
	ErrCodeMissingKeyColumn     ErrCode = "ErrMissingKeyColumn"
	ErrCodeNullKeyValue         ErrCode = "ErrNullKeyValue"
	ErrCodeMissingJoinCondition ErrCode = "ErrMissingJoinCondition"
	ErrCodeMalformedWhereClause ErrCode = "ErrMalformedWhereClause"
	ErrCodeUnmappedType         ErrCode = "ErrUnmappedType"
	ErrCodeMissingSoftDelete    ErrCode = "ErrMissingSoftDelete"
	ErrCodeReadOnlyEntity       ErrCode = "ErrReadOnlyEntity"
	ErrCodeInvalidInput         ErrCode = "ErrInvalidInput"
)

/*
Use blank error variables to detect error types:

	if errors.Is(err, dbh.ErrNullKeyValue) {
		// Handle specific error.
	}

Note that errors returned by this package can't be compared via `==` because
they may include additional details about the circumstances. When compared by
`errors.Is`, they compare `.Cause` and fall back on `.Code`.
*/
var (
	ErrMissingKeyColumn     Err = Err{Code: ErrCodeMissingKeyColumn, Cause: errors.New(`entity has no key columns`)}
	ErrNullKeyValue         Err = Err{Code: ErrCodeNullKeyValue, Cause: errors.New(`key column value is null`)}
	ErrMissingJoinCondition Err = Err{Code: ErrCodeMissingJoinCondition, Cause: errors.New(`join has no on-condition`)}
	ErrMalformedWhereClause Err = Err{Code: ErrCodeMalformedWhereClause, Cause: errors.New(`malformed where clause`)}
	ErrUnmappedType         Err = Err{Code: ErrCodeUnmappedType, Cause: errors.New(`type is not mapped to a table`)}
	ErrMissingSoftDelete    Err = Err{Code: ErrCodeMissingSoftDelete, Cause: errors.New(`entity has no soft-delete column`)}
	ErrReadOnlyEntity       Err = Err{Code: ErrCodeReadOnlyEntity, Cause: errors.New(`join entity is read-only`)}
	ErrInvalidInput         Err = Err{Code: ErrCodeInvalidInput, Cause: errors.New(`invalid input`)}
)

// Describes an error returned by this package.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

// Implement `error`.
func (self Err) Error() string {
	if self == (Err{}) {
		return ""
	}
	msg := `SQL error`
	if self.Code != ErrCodeUnknown {
		msg += fmt.Sprintf(` %s`, self.Code)
	}
	if self.While != "" {
		msg += fmt.Sprintf(` while %v`, self.While)
	}
	if self.Cause != nil {
		msg += `: ` + self.Cause.Error()
	}
	return msg
}

// Implement a hidden interface in "errors".
func (self Err) Is(other error) bool {
	if self.Cause != nil && errors.Is(self.Cause, other) {
		return true
	}
	err, ok := other.(Err)
	return ok && err.Code == self.Code
}

// Implement a hidden interface in "errors".
func (self Err) Unwrap() error {
	return self.Cause
}

func (self Err) while(while string) Err {
	self.While = while
	return self
}

func (self Err) because(cause error) Err {
	self.Cause = cause
	return self
}
