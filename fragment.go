package dbh

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

/*
Immutable pair of SQL text and its ordered arguments. Every `?` placeholder in
`Text`, left to right, corresponds to the argument at the same index in
`Args`. All builders return fragments; composing fragments preserves this
alignment.

The zero value is the "no-op" fragment returned by `Builder.BuildUpdate` when
there is nothing to update. Check it with `Fragment.IsNoop`.
*/
type Fragment struct {
	Text string
	Args []interface{}
}

/*
Returns a new fragment with the chunk appended, inserting a space if
necessary, and the args appended after the existing ones. Doesn't modify the
receiver. Example:

	frag := dbh.Fragment{Text: "SELECT `id` FROM `t_user`"}
	frag = frag.Append(`WHERE id = ?`, 10)
	frag = frag.Append(`AND name = ?`, "one")

Resulting state:

	dbh.Fragment{
		Text: "SELECT `id` FROM `t_user` WHERE id = ? AND name = ?",
		Args: []interface{}{10, "one"},
	}
*/
func (self Fragment) Append(chunk string, args ...interface{}) Fragment {
	if chunk == "" && len(args) == 0 {
		return self
	}
	text := self.Text
	if text != "" && chunk != "" && !isWhitespaceBetween(text, chunk) {
		text += " "
	}
	return Fragment{Text: text + chunk, Args: concatArgs(self.Args, args)}
}

/*
Returns a new fragment with the text of the other fragment appended verbatim
and its args appended after the existing ones.
*/
func (self Fragment) Concat(other Fragment) Fragment {
	return Fragment{Text: self.Text + other.Text, Args: concatArgs(self.Args, other.Args)}
}

/*
Makes a copy that doesn't share any mutable state with the original.
*/
func (self Fragment) Copy() Fragment {
	args := self.Args
	if args != nil {
		self.Args = make([]interface{}, len(args), cap(args))
		copy(self.Args, args)
	}
	return self
}

// True for the "nothing to do" sentinel returned by `Builder.BuildUpdate`.
func (self Fragment) IsNoop() bool {
	return self.Text == ""
}

/*
Verifies that the number of `?` placeholders matches the number of args.
Placeholders inside string literals, quoted identifiers and comments are not
counted.
*/
func (self Fragment) Validate() error {
	count := countPlaceholders(self.Text)
	if count != len(self.Args) {
		return ErrInvalidInput.while(`validating fragment`).because(fmt.Errorf(
			`found %d placeholders but %d args in %q`, count, len(self.Args), self.Text,
		))
	}
	return nil
}

// Implement `fmt.Stringer` for debug purposes.
func (self Fragment) String() string {
	return fmt.Sprintf(`%s %v`, self.Text, self.Args)
}

/*
Shorter way to call `sql.ExecContext`. A no-op fragment executes nothing and
reports zero affected rows.
*/
func (self Fragment) Exec(ctx context.Context, conn Execer) (sql.Result, error) {
	if self.IsNoop() {
		return noopResult{}, nil
	}
	return conn.ExecContext(ctx, self.Text, self.Args...)
}

// Shorter way to call `sql.QueryContext`.
func (self Fragment) Query(ctx context.Context, conn Queryer) (*sql.Rows, error) {
	if self.IsNoop() {
		return nil, ErrInvalidInput.while(`querying`).because(fmt.Errorf(`fragment is empty`))
	}
	return conn.QueryContext(ctx, self.Text, self.Args...)
}

type noopResult struct{}

func (noopResult) LastInsertId() (int64, error) { return 0, nil }
func (noopResult) RowsAffected() (int64, error) { return 0, nil }

func concatArgs(left, right []interface{}) []interface{} {
	if len(left) == 0 && len(right) == 0 {
		return nil
	}
	out := make([]interface{}, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

func isWhitespaceBetween(left string, right string) bool {
	return endWhitespaceRegexp.MatchString(left) || startWhitespaceRegexp.MatchString(right)
}

var startWhitespaceRegexp = regexp.MustCompile(`^[\n\s]`)
var endWhitespaceRegexp = regexp.MustCompile(`[\n\s]$`)
