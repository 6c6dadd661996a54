package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardnew/modecli/log"
)

// Bench repeatedly parses the same arguments with a shared model, for use
// with --pprof-mode.
type Bench struct {
	Count   int `default:"10000" help:"Number of parses."          short:"n"`
	Workers int `default:"0"     help:"Concurrent parsers (0: one per CPU)." short:"j"`

	Args []string `arg:"" help:"Arguments to parse; use -- before the first option." name:"args" optional:"" passthrough:""`
}

// benchStats summarizes a benchmark run.
type benchStats struct {
	Count   int
	Workers int
	Failed  atomic.Int64
	Elapsed time.Duration
}

func (s *benchStats) String() string {
	per := time.Duration(0)
	if s.Count > 0 {
		per = s.Elapsed / time.Duration(s.Count)
	}

	return fmt.Sprintf("%d parses (%d failed) on %d workers in %v (%v/parse)",
		s.Count, s.Failed.Load(), s.Workers, s.Elapsed, per)
}

// Run executes the bench command.
func (b *Bench) Run(ctx context.Context) error {
	d, err := DeclarationFrom(ctx)
	if err != nil {
		return err
	}

	m, err := d.Model()
	if err != nil {
		return err
	}

	// Surface a failing argument list once instead of counting it N times.
	if _, err := d.ParseWith(m, b.Args); err != nil {
		return err
	}

	stats := &benchStats{Count: max(b.Count, 0), Workers: b.Workers}
	if stats.Workers <= 0 {
		stats.Workers = runtime.GOMAXPROCS(0)
	}

	var (
		next atomic.Int64
		wg   sync.WaitGroup
	)

	start := time.Now()

	for range stats.Workers {
		wg.Go(func() {
			for next.Add(1) <= int64(stats.Count) {
				if ctx.Err() != nil {
					return
				}

				if _, err := m.Parse(b.Args); err != nil {
					stats.Failed.Add(1)
				}
			}
		})
	}

	wg.Wait()

	stats.Elapsed = time.Since(start)

	log.DebugContext(ctx, "bench complete",
		slog.Int("count", stats.Count),
		slog.Int("workers", stats.Workers),
		slog.Int64("failed", stats.Failed.Load()),
		slog.Duration("elapsed", stats.Elapsed),
	)

	_, err = fmt.Fprintln(outputFrom(ctx), stats)

	return err
}
