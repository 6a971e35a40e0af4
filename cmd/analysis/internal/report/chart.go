package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rejitnatarajan/HLL/cmd/analysis/internal/sweep"
)

const lineWidth = 2

// SweepChart writes an HTML line chart of mean relative error (in percent)
// against cardinality, one series per precision.
func SweepChart(w io.Writer, results []sweep.Result) error {
	var cardinalities, precisions []int
	for _, r := range results {
		cardinalities = append(cardinalities, r.Cardinality)
		precisions = append(precisions, r.Precision)
	}

	slices.Sort(cardinalities)
	cardinalities = slices.Compact(cardinalities)
	slices.Sort(precisions)
	precisions = slices.Compact(precisions)

	labels := make([]string, len(cardinalities))
	column := make(map[int]int, len(cardinalities))

	for i, n := range cardinalities {
		labels[i] = strconv.Itoa(n)
		column[n] = i
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "HyperLogLog accuracy",
			Width:     "100%",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Mean relative error",
			Subtitle: "percent, by cardinality and precision",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cardinality"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Error (%)"}),
	)
	line.SetXAxis(labels)

	for _, p := range precisions {
		data := make([]opts.LineData, len(cardinalities))
		for i := range data {
			data[i] = opts.LineData{Value: "-"}
		}

		for _, r := range results {
			if r.Precision == p {
				data[column[r.Cardinality]] = opts.LineData{Value: r.MeanRelError * percentScale}
			}
		}

		line.AddSeries(fmt.Sprintf("p=%d", p), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		)
	}

	err := line.Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}
