package dbh

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mitranim/dbh/boolexpr"
)

/*
Synthesizes SQL statements from entity metadata. The zero value is ready to
use: it describes entities with `TagDescriber`, parses conditions with
`boolexpr.SqlParser`, stamps update times with `time.Now` and discards logs.

A `Builder` holds only read-only configuration, and every method allocates its
own buffers, so a single builder may be shared by any number of goroutines.
Builders return either a complete `Fragment` or an error, never both.
*/
type Builder struct {
	Describer Describer
	Parser    boolexpr.Parser
	Now       func() time.Time
	Logger    *slog.Logger
}

// Builder used by the package-level functions.
var Default Builder

func (self Builder) describer() Describer {
	if self.Describer != nil {
		return self.Describer
	}
	return TagDescriber{}
}

func (self Builder) parser() boolexpr.Parser {
	if self.Parser != nil {
		return self.Parser
	}
	return boolexpr.SqlParser{}
}

func (self Builder) now() time.Time {
	if self.Now != nil {
		return self.Now()
	}
	return time.Now()
}

func (self Builder) logger() *slog.Logger {
	if self.Logger != nil {
		return self.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (self Builder) describe(entity interface{}) (*EntityDescriptor, error) {
	desc, err := self.describer().Describe(entity)
	if err != nil {
		return nil, err
	}
	if desc.Join != nil {
		err := desc.Join.Validate()
		if err != nil {
			return nil, err
		}
	}
	return desc, nil
}

func (self Builder) describeWritable(entity interface{}) (*EntityDescriptor, error) {
	desc, err := self.describe(entity)
	if err != nil {
		return nil, err
	}
	err = desc.writable()
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// Logs the outcome of a builder and enforces all-or-nothing results.
func (self Builder) done(op string, frag Fragment, err error) (Fragment, error) {
	if err != nil {
		if errors.Is(err, ErrMalformedWhereClause) {
			self.logger().Error(`bad sql syntax`, `op`, op, `err`, err)
		}
		return Fragment{}, err
	}
	self.logger().Debug(`synthesized statement`, `op`, op, `sql`, frag.Text, `args`, len(frag.Args))
	return frag, nil
}

// Same as the package-level `MergeWhere`, using this builder's parser.
func (self Builder) MergeWhere(whereText, cond string) (string, error) {
	out, err := mergeWhere(self.parser(), whereText, cond)
	if err != nil {
		self.logger().Error(`bad sql syntax`, `where`, whereText, `cond`, cond, `err`, err)
		return "", err
	}
	return out, nil
}

// Same as the package-level `ApplySoftDeleteFilter`, using this builder's
// describer and parser.
func (self Builder) ApplySoftDeleteFilter(whereText string, entity interface{}) (string, error) {
	desc, err := self.describe(entity)
	if err != nil {
		return "", err
	}
	out, err := self.applySoftDelete(desc, whereText)
	if err != nil {
		self.logger().Error(`bad sql syntax`, `where`, whereText, `table`, desc.Table, `err`, err)
		return "", err
	}
	return out, nil
}
