package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/mitranim/dbh"
	"github.com/mitranim/dbh/internal/config"
	"github.com/mitranim/dbh/internal/mapfile"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

// stateKey is used to store the loaded state in the command context.
type stateKey struct{}

// state is shared by all subcommands once the root has loaded the config.
type state struct {
	cfg     *config.Loaded
	logger  *slog.Logger
	execute bool
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "dbh",
		Short: "dbh - SQL statement synthesis from entity mappings",
		Long: `dbh prints parameterized SQL for entities described in a YAML mapping file.

Each command prints the SQL text followed by its ordered args, with
soft-delete filtering applied the same way the Go library applies it.

With --execute, statement commands run against the MySQL database given by
--dsn instead, printing rows for select and count and the number of affected
rows otherwise.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			execute, err := cmd.Root().PersistentFlags().GetBool("execute")
			if err != nil {
				return err
			}

			logger := newLogger(cmd, cfg.Verbose)
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), stateKey{}, &state{cfg: cfg, logger: logger, execute: execute})
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dbh.yaml)")
	rootCmd.PersistentFlags().StringP("mapping", "m", "", "Path to the entity mapping file (default: ./dbh-map.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log synthesized statements to stderr")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format (text|yaml)")
	rootCmd.PersistentFlags().String("dsn", "", "MySQL data source name, used with --execute")
	rootCmd.PersistentFlags().BoolP("execute", "x", false, "Run statements instead of printing them")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatText, config.FormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newSelectCommand(false))
	rootCmd.AddCommand(newSelectCommand(true))
	rootCmd.AddCommand(newKeysCommand())
	rootCmd.AddCommand(newInsertCommand())
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newDeleteCommand(false))
	rootCmd.AddCommand(newDeleteCommand(true))
	rootCmd.AddCommand(newFilterCommand())
	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newLimitCommand())
	rootCmd.AddCommand(newEntitiesCommand())

	return rootCmd
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func getState(ctx context.Context) *state {
	if s, ok := ctx.Value(stateKey{}).(*state); ok {
		return s
	}
	return &state{
		cfg:    &config.Loaded{Config: config.Config{Mapping: config.DefaultMappingFile, Format: config.FormatText}},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// builder returns a builder that describes entities from the mapping file.
func (s *state) builder() (dbh.Builder, *mapfile.Describer, error) {
	describer, err := mapfile.Load(s.cfg.Mapping)
	if err != nil {
		return dbh.Builder{}, nil, err
	}
	s.logger.Debug("loaded mapping", "path", s.cfg.Mapping, "entities", len(describer.Names()))
	return dbh.Builder{Describer: describer, Logger: s.logger}, describer, nil
}

// plainBuilder returns a builder for commands that don't touch entities.
func (s *state) plainBuilder() dbh.Builder {
	return dbh.Builder{Logger: s.logger}
}
