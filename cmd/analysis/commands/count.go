package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	hll "github.com/rejitnatarajan/HLL"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/config"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/distinct"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/report"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// ErrInvalidErrorTarget is returned for --error values outside (0, 1).
var ErrInvalidErrorTarget = errors.New("--error must be between 0 and 1")

func newCountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [files...]",
		Short: "Estimate the number of distinct lines in files or stdin",
		Long: `count feeds every line of its inputs into a HyperLogLog estimator and
prints the estimated number of distinct lines. With no files, or "-",
standard input is read.

Precision can be given directly, derived from a target standard error, or
derived from a memory budget for the registers.`,
		Example: `  analysis count access.log error.log --per-source
  sort -u words.txt | analysis count --error 0.005
  analysis count --memory 4KiB big.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCount(cmd, args)
		},
	}

	fs := cmd.Flags()
	fs.Int("precision", config.DefaultCountPrecision, "Estimator precision (4-16)")
	fs.Float64("error", 0, "Target standard error, e.g. 0.01 for 1%")
	fs.String("memory", "", "Register memory budget, e.g. 16KiB")
	fs.String("hash", config.DefaultHash, "Hash function: murmur3, xxh3")
	fs.Uint32("seed", 0, "Hash seed")
	fs.Bool("per-source", false, "Report every input separately as well as the union")
	fs.String("format", report.FormatTable, "Output format: table, yaml")

	cmd.MarkFlagsMutuallyExclusive("precision", "error", "memory")

	return cmd
}

func (a *app) runCount(cmd *cobra.Command, args []string) error {
	cc := &a.cfg.Count
	fs := cmd.Flags()

	overrideInt(fs, "precision", &cc.Precision)
	overrideString(fs, "hash", &cc.Hash)
	overrideUint32(fs, "seed", &cc.Seed)
	overrideBool(fs, "per-source", &cc.PerSource)

	err := resolvePrecision(cmd, cc)
	if err != nil {
		return err
	}

	err = a.cfg.Validate()
	if err != nil {
		return err
	}

	formatName, _ := fs.GetString("format")

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	hash, err := hll.HashByName(cc.Hash)
	if err != nil {
		return err
	}

	sources, closeAll, err := openSources(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	defer closeAll()

	a.logger.Debug("counting",
		"sources", len(sources),
		"precision", cc.Precision,
		"memory", humanize.IBytes(uint64(hll.MemoryBytes(cc.Precision))),
		"hash", cc.Hash)

	summary, err := distinct.Count(cmd.Context(), sources, distinct.Options{
		Precision: cc.Precision,
		Hash:      hash,
		Seed:      cc.Seed,
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	a.logger.Info("counted", "lines", summary.Lines, "distinct", summary.Union)

	return report.Distinct(cmd.OutOrStdout(), summary, cc.PerSource, format)
}

// resolvePrecision applies --error or --memory to cc.Precision.
func resolvePrecision(cmd *cobra.Command, cc *config.CountConfig) error {
	fs := cmd.Flags()

	if fs.Changed("error") {
		target, _ := fs.GetFloat64("error")
		if target <= 0 || target >= 1 {
			return fmt.Errorf("%w (got %v)", ErrInvalidErrorTarget, target)
		}

		cc.Precision = hll.PrecisionForError(target)
	}

	if fs.Changed("memory") {
		budget, _ := fs.GetString("memory")

		n, err := humanize.ParseBytes(budget)
		if err != nil {
			return fmt.Errorf("parse --memory: %w", err)
		}

		cc.Precision = hll.PrecisionForMemory(n)
	}

	return nil
}

// openSources opens every named file, mapping "-" (or no names) to stdin.
// The returned function closes whatever was opened.
func openSources(stdin io.Reader, names []string) ([]distinct.Source, func(), error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}

	var files []*os.File

	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	sources := make([]distinct.Source, 0, len(names))

	for _, name := range names {
		if name == stdinName {
			sources = append(sources, distinct.Source{Name: "stdin", Reader: stdin})
			continue
		}

		f, err := os.Open(name)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open input: %w", err)
		}

		files = append(files, f)
		sources = append(sources, distinct.Source{Name: name, Reader: f})
	}

	return sources, closeAll, nil
}
