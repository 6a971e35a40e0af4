// Package report renders sweep and distinct-count results.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	hll "github.com/rejitnatarajan/HLL"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/distinct"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/sweep"
)

// Output formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for output formats other than table and yaml.
var ErrUnknownFormat = errors.New("report: unknown output format")

// percentScale converts a fraction to a percentage.
const percentScale = 100

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	highLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

// ParseFormat validates an output format name. The empty name is a table.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(name) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Sweep writes sweep results to w in the given format.
func Sweep(w io.Writer, results []sweep.Result, format string) error {
	switch format {
	case FormatYAML:
		return writeYAML(w, sweepDocument(results))
	case FormatTable, "":
		_, err := io.WriteString(w, sweepTable(results)+"\n")
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Distinct writes a distinct-count summary to w in the given format.
// perSource adds one row per source ahead of the union.
func Distinct(w io.Writer, s distinct.Summary, perSource bool, format string) error {
	switch format {
	case FormatYAML:
		return writeYAML(w, distinctDocument(s, perSource))
	case FormatTable, "":
		_, err := io.WriteString(w, distinctTable(s, perSource)+"\n")
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

func sweepTable(results []sweep.Result) string {
	tbl := newTable()
	tbl.SetTitle("Accuracy sweep")
	tbl.AppendHeader(table.Row{
		"Precision", "Registers", "Memory", "Cardinality", "Trials",
		"Mean estimate", "Mean error", "Max error", "Std error", "Status",
	})

	within := 0

	for _, r := range results {
		status := highLabel("high")
		if r.WithinBound() {
			status = okLabel("ok")
			within++
		}

		tbl.AppendRow(table.Row{
			r.Precision,
			humanize.Comma(int64(1) << r.Precision),
			humanize.IBytes(uint64(hll.MemoryBytes(r.Precision))),
			humanize.Comma(int64(r.Cardinality)),
			r.Trials,
			humanize.CommafWithDigits(r.MeanEstimate, 1),
			percent(r.MeanRelError),
			percent(r.MaxRelError),
			percent(r.StdError),
			status,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%d/%d within 3σ", within, len(results))})

	return tbl.Render()
}

func distinctTable(s distinct.Summary, perSource bool) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Source", "Lines", "Distinct (est.)"})

	if perSource {
		for _, sc := range s.PerSource {
			tbl.AppendRow(table.Row{sc.Name, humanize.Comma(sc.Lines), humanize.Comma(round(sc.Estimate))})
		}

		tbl.AppendSeparator()
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total (%d sources)", len(s.PerSource)),
		humanize.Comma(s.Lines),
		humanize.Comma(round(s.Union)),
	})

	return tbl.Render()
}

func percent(f float64) string {
	return strconv.FormatFloat(f*percentScale, 'f', 2, 64) + "%"
}

func round(f float64) int64 {
	return int64(math.Round(f))
}

type sweepRow struct {
	Precision    int     `yaml:"precision"`
	Registers    int     `yaml:"registers"`
	MemoryBytes  int     `yaml:"memory_bytes"`
	Cardinality  int     `yaml:"cardinality"`
	Trials       int     `yaml:"trials"`
	MeanEstimate float64 `yaml:"mean_estimate"`
	MeanRelError float64 `yaml:"mean_rel_error"`
	MaxRelError  float64 `yaml:"max_rel_error"`
	StdError     float64 `yaml:"std_error"`
	WithinBound  bool    `yaml:"within_bound"`
}

type sweepDoc struct {
	Results []sweepRow `yaml:"results"`
}

func sweepDocument(results []sweep.Result) sweepDoc {
	doc := sweepDoc{Results: make([]sweepRow, 0, len(results))}
	for _, r := range results {
		doc.Results = append(doc.Results, sweepRow{
			Precision:    r.Precision,
			Registers:    1 << r.Precision,
			MemoryBytes:  hll.MemoryBytes(r.Precision),
			Cardinality:  r.Cardinality,
			Trials:       r.Trials,
			MeanEstimate: r.MeanEstimate,
			MeanRelError: r.MeanRelError,
			MaxRelError:  r.MaxRelError,
			StdError:     r.StdError,
			WithinBound:  r.WithinBound(),
		})
	}

	return doc
}

type sourceRow struct {
	Name     string `yaml:"name"`
	Lines    int64  `yaml:"lines"`
	Distinct int64  `yaml:"distinct"`
}

type distinctDoc struct {
	Sources  []sourceRow `yaml:"sources,omitempty"`
	Lines    int64       `yaml:"lines"`
	Distinct int64       `yaml:"distinct"`
}

func distinctDocument(s distinct.Summary, perSource bool) distinctDoc {
	doc := distinctDoc{Lines: s.Lines, Distinct: round(s.Union)}
	if perSource {
		for _, sc := range s.PerSource {
			doc.Sources = append(doc.Sources, sourceRow{Name: sc.Name, Lines: sc.Lines, Distinct: round(sc.Estimate)})
		}
	}

	return doc
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}
