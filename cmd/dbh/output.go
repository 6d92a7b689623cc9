package main

import (
	"fmt"

	"github.com/mitranim/dbh"
	"github.com/mitranim/dbh/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fragmentOutput is the YAML shape of a printed fragment.
type fragmentOutput struct {
	SQL  string        `yaml:"sql"`
	Args []interface{} `yaml:"args,omitempty"`
	Noop bool          `yaml:"noop,omitempty"`
}

// printFragment writes the SQL text and its args in the configured format.
func printFragment(cmd *cobra.Command, s *state, frag dbh.Fragment) error {
	out := cmd.OutOrStdout()

	if s.cfg.Format == config.FormatYAML {
		data, err := yaml.Marshal(fragmentOutput{SQL: frag.Text, Args: frag.Args, Noop: frag.IsNoop()})
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	if frag.IsNoop() {
		_, err := fmt.Fprintln(out, "-- nothing to do")
		return err
	}
	if _, err := fmt.Fprintln(out, frag.Text); err != nil {
		return err
	}
	for i, arg := range frag.Args {
		if _, err := fmt.Fprintf(out, "-- $%d = %#v\n", i+1, arg); err != nil {
			return err
		}
	}
	return nil
}
