package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mitranim/dbh"
	"github.com/mitranim/dbh/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// openDB opens a MySQL connection pool for --execute. Replaced in tests.
var openDB = func(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// emit prints the fragment, or runs it against the configured database when
// --execute is set. Queries print their rows, other statements the number of
// affected rows.
func emit(cmd *cobra.Command, s *state, frag dbh.Fragment, query bool) error {
	if !s.execute {
		return printFragment(cmd, s, frag)
	}
	if s.cfg.DSN == "" {
		return fmt.Errorf("--execute requires a dsn (--dsn, DBH_DSN or the config file)")
	}

	db, err := openDB(s.cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	s.logger.Debug("executing statement", "sql", frag.Text, "args", len(frag.Args))

	if query {
		rows, err := frag.Query(ctx, db)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()
		return printRows(cmd, s, rows)
	}

	result, err := frag.Exec(ctx, db)
	if err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.cfg.Format == config.FormatYAML {
		data, err := yaml.Marshal(map[string]int64{"rows_affected": affected})
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = out.Write(data)
		return err
	}
	_, err = fmt.Fprintf(out, "-- rows affected: %d\n", affected)
	return err
}

// printRows writes the rows as tab-separated text with a header, or as a
// YAML list of column maps.
func printRows(cmd *cobra.Command, s *state, rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	var records []map[string]interface{}
	var lines []string
	if s.cfg.Format != config.FormatYAML {
		lines = append(lines, strings.Join(cols, "\t"))
	}

	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}

		record := make(map[string]interface{}, len(cols))
		cells := make([]string, len(cols))
		for i, val := range vals {
			if bytes, ok := val.([]byte); ok {
				val = string(bytes)
			}
			record[cols[i]] = val
			if val == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprint(val)
			}
		}
		records = append(records, record)
		lines = append(lines, strings.Join(cells, "\t"))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.cfg.Format == config.FormatYAML {
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = out.Write(data)
		return err
	}
	_, err = fmt.Fprintln(out, strings.Join(lines, "\n"))
	return err
}
