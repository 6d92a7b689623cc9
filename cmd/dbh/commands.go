package main

import (
	"fmt"
	"strings"

	"github.com/mitranim/dbh"
	"github.com/mitranim/dbh/internal/mapfile"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// valueFlags holds the repeated --set and --arg flags shared by commands.
type valueFlags struct {
	sets []string
	args []string
}

func (v *valueFlags) register(cmd *cobra.Command, withSet bool) {
	if withSet {
		cmd.Flags().StringArrayVar(&v.sets, "set", nil, "Column value as col=value, repeatable (values are YAML scalars)")
	}
	cmd.Flags().StringArrayVar(&v.args, "arg", nil, "Arg bound to a placeholder of the SQL text, repeatable")
}

// row builds a mapfile row from the --set flags.
func (v *valueFlags) row(entity string) (mapfile.Row, error) {
	row := mapfile.Row{Entity: entity, Values: make(map[string]interface{}, len(v.sets))}
	for _, set := range v.sets {
		name, raw, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return mapfile.Row{}, fmt.Errorf("invalid --set %q, expected col=value", set)
		}
		val, err := decodeValue(raw)
		if err != nil {
			return mapfile.Row{}, fmt.Errorf("invalid --set %q: %w", set, err)
		}
		row.Values[name] = val
	}
	return row, nil
}

func (v *valueFlags) values() ([]interface{}, error) {
	out := make([]interface{}, 0, len(v.args))
	for _, raw := range v.args {
		val, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --arg %q: %w", raw, err)
		}
		out = append(out, val)
	}
	return out, nil
}

// decodeValue decodes a YAML scalar, so that `1` binds as an int and `null`
// as SQL null. An empty string stays an empty string.
func decodeValue(raw string) (interface{}, error) {
	if raw == "" {
		return "", nil
	}
	var out interface{}
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	switch out.(type) {
	case map[string]interface{}, []interface{}:
		return nil, fmt.Errorf("expected a scalar")
	}
	return out, nil
}

func optionalArg(args []string, index int) string {
	if len(args) > index {
		return args[index]
	}
	return ""
}

// newSelectCommand creates the select and count commands.
func newSelectCommand(count bool) *cobra.Command {
	var vals valueFlags

	use, short := "select ENTITY [POST_SQL]", "Print a select over an entity or join"
	if count {
		use, short = "count ENTITY [POST_SQL]", "Print a count over an entity or join"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Without POST_SQL, the statement has no where clause. With POST_SQL, usually a
where clause possibly followed by order by or limit, the soft-delete filter of
the entity is merged into it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			builder, _, err := s.builder()
			if err != nil {
				return err
			}
			params, err := vals.values()
			if err != nil {
				return err
			}

			var frag dbh.Fragment
			switch {
			case len(args) == 1 && count:
				frag, err = builder.BuildSelectCount(args[0])
			case len(args) == 1:
				frag, err = builder.BuildSelect(args[0])
			case count:
				frag, err = builder.BuildSelectCountWhere(args[0], args[1], params...)
			default:
				frag, err = builder.BuildSelectWhere(args[0], args[1], params...)
			}
			if err != nil {
				return err
			}
			return emit(cmd, s, frag, true)
		},
	}
	vals.register(cmd, false)
	return cmd
}

func newKeysCommand() *cobra.Command {
	var vals valueFlags
	var in bool

	cmd := &cobra.Command{
		Use:   "keys ENTITY",
		Short: "Print the key where clause of an entity",
		Long: `Print the key where clause of an entity.

With --set, key values are bound from the given columns. Without it, the
clause is printed as a template. With --in, prints an IN clause for an entity
with a single key column, binding the --arg values, or a single placeholder
when there are none.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			builder, _, err := s.builder()
			if err != nil {
				return err
			}

			var frag dbh.Fragment
			switch {
			case in && len(vals.args) > 0:
				keys, valErr := vals.values()
				if valErr != nil {
					return valErr
				}
				frag, err = builder.BuildKeyInWhereValues(args[0], keys...)
			case in:
				frag, err = builder.BuildKeyInWhere(args[0])
			case len(vals.sets) == 0:
				frag, err = builder.BuildKeysWhereTemplate(args[0])
			default:
				row, rowErr := vals.row(args[0])
				if rowErr != nil {
					return rowErr
				}
				frag, err = builder.BuildKeysWhere(row)
			}
			if err != nil {
				return err
			}
			return printFragment(cmd, s, frag)
		},
	}
	vals.register(cmd, true)
	cmd.Flags().BoolVar(&in, "in", false, "Print an IN clause over the single key column")
	return cmd
}

func newInsertCommand() *cobra.Command {
	var vals valueFlags
	var nulls bool
	var ifNotExists string

	cmd := &cobra.Command{
		Use:   "insert ENTITY --set col=value...",
		Short: "Print an insert of one row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			builder, describer, err := s.builder()
			if err != nil {
				return err
			}
			row, err := vals.row(args[0])
			if err != nil {
				return err
			}
			if err := checkColumns(describer, row); err != nil {
				return err
			}

			var frag dbh.Fragment
			if ifNotExists != "" {
				params, err := vals.values()
				if err != nil {
					return err
				}
				frag, err = builder.BuildInsertIfNotExists(row, nulls, ifNotExists, params...)
				if err != nil {
					return err
				}
			} else {
				frag, err = builder.BuildInsert(row, nulls)
				if err != nil {
					return err
				}
			}
			return emit(cmd, s, frag, false)
		},
	}
	vals.register(cmd, true)
	cmd.Flags().BoolVar(&nulls, "nulls", false, "Include columns without values as nulls")
	cmd.Flags().StringVar(&ifNotExists, "if-not-exists", "", "Only insert if no row matches this where clause")
	return cmd
}

func newUpdateCommand() *cobra.Command {
	var vals valueFlags
	var withNull bool
	var setSQL string

	cmd := &cobra.Command{
		Use:   "update ENTITY --set col=value... [POST_SQL]",
		Short: "Print an update of one row, keyed by its key columns",
		Long: `Print an update of one row, keyed by its key columns.

Non-key columns given with --set are assigned. With --sql, the given SET body
is used instead and update-timestamp columns are stamped with the current
time. POST_SQL is appended to the key predicate; a leading where becomes and.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			builder, describer, err := s.builder()
			if err != nil {
				return err
			}
			row, err := vals.row(args[0])
			if err != nil {
				return err
			}
			if err := checkColumns(describer, row); err != nil {
				return err
			}
			params, err := vals.values()
			if err != nil {
				return err
			}

			var frag dbh.Fragment
			if setSQL != "" {
				if len(args) > 1 {
					return fmt.Errorf("POST_SQL can't be combined with --sql")
				}
				frag, err = builder.BuildCustomUpdate(row, setSQL, params...)
			} else {
				frag, err = builder.BuildUpdate(row, withNull, optionalArg(args, 1), params...)
			}
			if err != nil {
				return err
			}
			return emit(cmd, s, frag, false)
		},
	}
	vals.register(cmd, true)
	cmd.Flags().BoolVar(&withNull, "with-null", false, "Also assign columns without values, as nulls")
	cmd.Flags().StringVar(&setSQL, "sql", "", "Custom SET body, args bound with --arg")
	return cmd
}

// newDeleteCommand creates the delete and soft-delete commands.
func newDeleteCommand(soft bool) *cobra.Command {
	var vals valueFlags

	use, short := "delete ENTITY [POST_SQL]", "Print a physical delete"
	if soft {
		use, short = "soft-delete ENTITY [POST_SQL]", "Print a logical delete"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

With POST_SQL, deletes the rows it matches, binding --arg values. Without it,
deletes one row by the key values given with --set.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			builder, _, err := s.builder()
			if err != nil {
				return err
			}

			var frag dbh.Fragment
			if len(args) > 1 {
				params, err := vals.values()
				if err != nil {
					return err
				}
				if soft {
					frag, err = builder.BuildCustomSoftDelete(args[0], args[1], params...)
				} else {
					frag, err = builder.BuildCustomDelete(args[0], args[1], params...)
				}
				if err != nil {
					return err
				}
				return emit(cmd, s, frag, false)
			}

			row, err := vals.row(args[0])
			if err != nil {
				return err
			}
			if soft {
				frag, err = builder.BuildSoftDelete(row)
			} else {
				frag, err = builder.BuildDelete(row)
			}
			if err != nil {
				return err
			}
			return emit(cmd, s, frag, false)
		},
	}
	vals.register(cmd, true)
	return cmd
}

func newFilterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filter ENTITY WHERE",
		Short: "Merge the soft-delete filter of an entity into a where clause",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			builder, _, err := s.builder()
			if err != nil {
				return err
			}
			text, err := builder.ApplySoftDeleteFilter(args[1], args[0])
			if err != nil {
				return err
			}
			return printFragment(cmd, s, dbh.Fragment{Text: text})
		},
	}
}

func newMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge WHERE CONDITION",
		Short: "Merge a condition into a where clause, preserving its precedence",
		Example: `  dbh merge "where a<>3 or a<>2" "deleted=0"
  # WHERE deleted=0 AND (a<>3 or a<>2)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getState(cmd.Context())
			text, err := s.plainBuilder().MergeWhere(args[0], args[1])
			if err != nil {
				return err
			}
			return printFragment(cmd, s, dbh.Fragment{Text: text})
		},
	}
}

func newLimitCommand() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "limit --limit N [--offset N]",
		Short: "Print a limit clause",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var offsetPtr, limitPtr *int
			if cmd.Flags().Changed("offset") {
				offsetPtr = &offset
			}
			if cmd.Flags().Changed("limit") {
				limitPtr = &limit
			}
			return printFragment(cmd, getState(cmd.Context()), dbh.Fragment{Text: dbh.BuildLimit(offsetPtr, limitPtr)})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Rows to return")
	return cmd
}

func newEntitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities of the mapping file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, describer, err := getState(cmd.Context()).builder()
			if err != nil {
				return err
			}
			for _, name := range describer.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// checkColumns rejects --set columns that the entity doesn't map, which would
// otherwise be silently ignored.
func checkColumns(describer *mapfile.Describer, row mapfile.Row) error {
	desc, err := describer.Describe(row)
	if err != nil {
		return err
	}
	if desc.Join != nil {
		// Builders reject joins with a more specific error.
		return nil
	}
	known := make(map[string]bool, len(desc.Columns))
	for _, col := range desc.Columns {
		known[col.Name] = true
	}
	for name := range row.Values {
		if !known[name] {
			return fmt.Errorf("entity %q has no column %q", row.Entity, name)
		}
	}
	return nil
}
