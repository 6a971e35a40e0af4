// Package distinct estimates the number of distinct lines across inputs.
package distinct

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	hll "github.com/rejitnatarajan/HLL"
)

const (
	// maxLineSize is the longest line the scanner accepts.
	maxLineSize = 1 << 20

	// initialBufferSize is the scanner's starting buffer.
	initialBufferSize = 64 << 10

	// cancelCheckInterval is how many lines are read between context checks.
	cancelCheckInterval = 1024
)

// Source is a named line-oriented input.
type Source struct {
	Name   string
	Reader io.Reader
}

// Options configures Count.
type Options struct {
	Precision int
	Hash      hll.HashFunc // nil means hll.Murmur3
	Seed      uint32
	Logger    *slog.Logger // nil discards
}

// SourceCount is the result for one source.
type SourceCount struct {
	Name     string
	Lines    int64
	Estimate float64
}

// Summary is the result of Count.
type Summary struct {
	PerSource []SourceCount
	Union     float64 // distinct lines across all sources
	Lines     int64   // total lines read
}

// Count reads every source line by line into its own estimator and merges
// them into a union estimate. Sources are read sequentially, in order.
// A trailing "\r" is stripped from each line; empty lines are items too.
func Count(ctx context.Context, sources []Source, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	estimatorOpts := []hll.Option{hll.WithSeed(opts.Seed)}
	if opts.Hash != nil {
		estimatorOpts = append(estimatorOpts, hll.WithHash(opts.Hash))
	}

	union := hll.New(opts.Precision, estimatorOpts...)
	summary := Summary{PerSource: make([]SourceCount, 0, len(sources))}

	for _, src := range sources {
		e := hll.New(opts.Precision, estimatorOpts...)

		lines, err := readLines(ctx, src.Reader, e)
		if err != nil {
			return Summary{}, fmt.Errorf("read %s: %w", src.Name, err)
		}

		mergeErr := union.Merge(e)
		if mergeErr != nil {
			return Summary{}, fmt.Errorf("merge %s: %w", src.Name, mergeErr)
		}

		sc := SourceCount{Name: src.Name, Lines: lines, Estimate: e.Estimate()}
		summary.PerSource = append(summary.PerSource, sc)
		summary.Lines += lines

		logger.Debug("source counted", "source", src.Name, "lines", lines, "estimate", sc.Estimate)
	}

	summary.Union = union.Estimate()

	return summary, nil
}

func readLines(ctx context.Context, r io.Reader, e *hll.Estimator) (int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufferSize), maxLineSize)

	var lines int64

	for scanner.Scan() {
		if lines%cancelCheckInterval == 0 && ctx.Err() != nil {
			return lines, ctx.Err()
		}

		e.Add(bytes.TrimSuffix(scanner.Bytes(), []byte{'\r'}))
		lines++
	}

	return lines, scanner.Err()
}
