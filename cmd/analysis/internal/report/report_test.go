package report_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/distinct"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/report"
	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/sweep"
)

func sampleResults() []sweep.Result {
	return []sweep.Result{
		{Precision: 10, Cardinality: 1000, Trials: 3, MeanEstimate: 1012.4, MeanRelError: 0.0124, MaxRelError: 0.02, StdError: 0.0325},
		{Precision: 10, Cardinality: 100000, Trials: 3, MeanEstimate: 140000, MeanRelError: 0.4, MaxRelError: 0.45, StdError: 0.0325},
		{Precision: 14, Cardinality: 1000, Trials: 3, MeanEstimate: 999.5, MeanRelError: 0.0005, MaxRelError: 0.001, StdError: 0.008125},
	}
}

func sampleSummary() distinct.Summary {
	return distinct.Summary{
		PerSource: []distinct.SourceCount{
			{Name: "access.log", Lines: 12000, Estimate: 4321.4},
			{Name: "error.log", Lines: 800, Estimate: 77.6},
		},
		Union: 4350.2,
		Lines: 12800,
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", report.FormatTable},
		{"table", report.FormatTable},
		{"YAML", report.FormatYAML},
	}

	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := report.ParseFormat("csv")
	assert.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestSweep_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Sweep(&buf, sampleResults(), report.FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Accuracy sweep")
	assert.Contains(t, out, "Precision")
	assert.Contains(t, out, "1,024")
	assert.Contains(t, out, "1.0 KiB")
	assert.Contains(t, out, "16 KiB")
	assert.Contains(t, out, "100,000")
	assert.Contains(t, out, "1.24%")
	assert.Contains(t, out, "3.25%")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "2/3 within 3σ")
}

func TestSweep_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Sweep(&buf, sampleResults(), report.FormatYAML))

	var doc struct {
		Results []struct {
			Precision   int     `yaml:"precision"`
			Registers   int     `yaml:"registers"`
			MemoryBytes int     `yaml:"memory_bytes"`
			Cardinality int     `yaml:"cardinality"`
			StdError    float64 `yaml:"std_error"`
			WithinBound bool    `yaml:"within_bound"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Results, 3)

	assert.Equal(t, 10, doc.Results[0].Precision)
	assert.Equal(t, 1024, doc.Results[0].Registers)
	assert.Equal(t, 1024, doc.Results[0].MemoryBytes)
	assert.True(t, doc.Results[0].WithinBound)
	assert.False(t, doc.Results[1].WithinBound)
	assert.Equal(t, 16384, doc.Results[2].Registers)
	assert.InDelta(t, 0.008125, doc.Results[2].StdError, 1e-12)
}

func TestDistinct_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Distinct(&buf, sampleSummary(), false, report.FormatTable))

	out := buf.String()
	assert.NotContains(t, out, "access.log")
	assert.Contains(t, out, "12,800")
	assert.Contains(t, out, "4,350")

	buf.Reset()
	require.NoError(t, report.Distinct(&buf, sampleSummary(), true, report.FormatTable))

	out = buf.String()
	assert.Contains(t, out, "access.log")
	assert.Contains(t, out, "4,321")
	assert.Contains(t, out, "error.log")
	assert.Contains(t, out, "78")
}

func TestDistinct_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Distinct(&buf, sampleSummary(), true, report.FormatYAML))

	var doc struct {
		Sources []struct {
			Name     string `yaml:"name"`
			Lines    int64  `yaml:"lines"`
			Distinct int64  `yaml:"distinct"`
		} `yaml:"sources"`
		Lines    int64 `yaml:"lines"`
		Distinct int64 `yaml:"distinct"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Sources, 2)
	assert.Equal(t, "access.log", doc.Sources[0].Name)
	assert.Equal(t, int64(4321), doc.Sources[0].Distinct)
	assert.Equal(t, int64(78), doc.Sources[1].Distinct)
	assert.Equal(t, int64(12800), doc.Lines)
	assert.Equal(t, int64(4350), doc.Distinct)

	buf.Reset()
	require.NoError(t, report.Distinct(&buf, sampleSummary(), false, report.FormatYAML))
	assert.NotContains(t, buf.String(), "sources")
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.ErrorIs(t, report.Sweep(&buf, sampleResults(), "xml"), report.ErrUnknownFormat)
	assert.ErrorIs(t, report.Distinct(&buf, sampleSummary(), false, "xml"), report.ErrUnknownFormat)
	assert.Zero(t, buf.Len())
}

type failWriter struct{}

var errWrite = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestWriteErrors(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, report.Sweep(failWriter{}, sampleResults(), report.FormatTable), errWrite)
	assert.ErrorIs(t, report.Distinct(failWriter{}, sampleSummary(), true, report.FormatTable), errWrite)
}

func TestSweepChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.SweepChart(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "HyperLogLog accuracy")
	assert.Contains(t, out, "p=10")
	assert.Contains(t, out, "p=14")
	assert.Contains(t, out, "100000")
}
