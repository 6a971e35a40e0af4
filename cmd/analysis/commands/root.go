// Package commands implements the analysis command tree.
package commands

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/config"
)

// app is the state shared by subcommands once the root has loaded config.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand returns the analysis root command with all subcommands.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	var (
		configPath string
		noColor    bool
	)

	root := &cobra.Command{
		Use:   "analysis",
		Short: "Explore HyperLogLog accuracy and count distinct lines",
		Long: `analysis exercises the HyperLogLog estimator.

Commands:
  sweep     Measure estimation error over precisions and cardinalities
  count     Estimate the number of distinct lines in files or stdin
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			overrideString(fs, "log-level", &cfg.Logging.Level)
			overrideString(fs, "log-format", &cfg.Logging.Format)

			validateErr := cfg.Validate()
			if validateErr != nil {
				return validateErr
			}

			a.cfg = cfg
			a.logger = config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			a.logger.Debug("config loaded", "path", configPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .hll.yaml in . or $HOME)")
	root.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format: text, json")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newSweepCommand(a))
	root.AddCommand(newCountCommand(a))
	root.AddCommand(newVersionCommand(version))

	return root
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Printing the version never depends on config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "analysis %s (%s)\n", version, runtime.Version())
		},
	}
}
