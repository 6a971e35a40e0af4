package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	hll "github.com/rejitnatarajan/HLL"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/config"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/report"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/sweep"
)

func newSweepCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure estimation error over precisions and cardinalities",
		Long: `sweep inserts known numbers of distinct keys into fresh estimators and
reports how far the estimates land from the truth, next to the theoretical
standard error 1.04/sqrt(2^p).`,
		Example: `  analysis sweep --precisions 4,10,14 --cardinalities 1000,100000 --trials 20
  analysis sweep --hash xxh3 --format yaml
  analysis sweep --plot accuracy.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSweep(cmd)
		},
	}

	fs := cmd.Flags()
	fs.IntSlice("precisions", config.DefaultSweepPrecisions, "Precisions to test (4-16)")
	fs.IntSlice("cardinalities", config.DefaultSweepCardinalities, "Distinct key counts to insert")
	fs.Int("trials", config.DefaultSweepTrials, "Trials per (precision, cardinality) cell")
	fs.Int("workers", config.DefaultSweepWorkers, "Number of parallel workers (0 = use CPU count)")
	fs.String("hash", config.DefaultHash, "Hash function: murmur3, xxh3")
	fs.Uint32("seed", 0, "Hash seed")
	fs.String("format", report.FormatTable, "Output format: table, yaml")
	fs.String("plot", "", "Also write an HTML chart of the results to this file")

	return cmd
}

func (a *app) runSweep(cmd *cobra.Command) error {
	sc := &a.cfg.Sweep
	fs := cmd.Flags()

	overrideInts(fs, "precisions", &sc.Precisions)
	overrideInts(fs, "cardinalities", &sc.Cardinalities)
	overrideInt(fs, "trials", &sc.Trials)
	overrideInt(fs, "workers", &sc.Workers)
	overrideString(fs, "hash", &sc.Hash)
	overrideUint32(fs, "seed", &sc.Seed)

	err := a.cfg.Validate()
	if err != nil {
		return err
	}

	formatName, _ := fs.GetString("format")

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	hash, err := hll.HashByName(sc.Hash)
	if err != nil {
		return err
	}

	results, err := sweep.Run(cmd.Context(), sweep.Options{
		Precisions:    sc.Precisions,
		Cardinalities: sc.Cardinalities,
		Trials:        sc.Trials,
		Workers:       sc.Workers,
		Hash:          hash,
		Seed:          sc.Seed,
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	err = report.Sweep(cmd.OutOrStdout(), results, format)
	if err != nil {
		return err
	}

	plotPath, _ := fs.GetString("plot")
	if plotPath == "" {
		return nil
	}

	return writePlot(plotPath, results)
}

func writePlot(path string, results []sweep.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close plot: %w", closeErr)
		}
	}()

	return report.SweepChart(f, results)
}
