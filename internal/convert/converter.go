package convert

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/heartmarshall/daijirin-converter/internal/daijirin"
	"github.com/heartmarshall/daijirin-converter/internal/domain"
	"github.com/heartmarshall/daijirin-converter/internal/segment"
)

// Config tunes a conversion run.
type Config struct {
	// Workers is the number of goroutines parsing entries. 1 converts on the
	// calling goroutine.
	Workers int
	// Window bounds how many entries may be read ahead of the writer.
	Window int
	// ProgressInterval is the period of progress log lines. Zero disables them.
	ProgressInterval time.Duration
	// ConverterVersion is stamped into the dictionary metadata.
	ConverterVersion string
}

// Stats holds the outcome of a conversion run.
type Stats struct {
	Entries   int
	Converted int
	Failed    int
	ByKind    map[domain.FailureKind]int
	Bytes     int64
	Duration  time.Duration
}

// Progress is a snapshot of a running conversion.
type Progress struct {
	Bytes   int64
	Entries int64
	Failed  int64
}

// Converter runs the entry grammar over a dump. Entry-level failures are
// recorded and skipped; metadata, read, writer and sink errors abort the run.
type Converter struct {
	log     *slog.Logger
	grammar *daijirin.Grammar
	writer  Writer
	sink    ErrorSink
	cfg     Config

	bytes   atomic.Int64
	entries atomic.Int64
	failed  atomic.Int64
}

// New creates a Converter.
func New(log *slog.Logger, grammar *daijirin.Grammar, writer Writer, sink ErrorSink, cfg Config) *Converter {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Window < cfg.Workers {
		cfg.Window = cfg.Workers
	}
	return &Converter{
		log:     log,
		grammar: grammar,
		writer:  writer,
		sink:    sink,
		cfg:     cfg,
	}
}

// Progress returns the current counters. Safe to call while Run is active.
func (c *Converter) Progress() Progress {
	return Progress{
		Bytes:   c.bytes.Load(),
		Entries: c.entries.Load(),
		Failed:  c.failed.Load(),
	}
}

// Run converts every entry of src. Entries reach the writer in input order
// regardless of the worker count.
func (c *Converter) Run(ctx context.Context, src Source) (Stats, error) {
	start := time.Now()
	stats := Stats{ByKind: make(map[domain.FailureKind]int)}

	lines, err := src.Metadata()
	if err != nil {
		return stats, fmt.Errorf("read metadata: %w", err)
	}
	meta, err := daijirin.ParseMetadata(lines, c.cfg.ConverterVersion)
	if err != nil {
		return stats, err
	}
	if err := c.writer.WriteMetadata(ctx, meta); err != nil {
		return stats, fmt.Errorf("write metadata: %w", err)
	}
	c.log.Info("converting dictionary",
		slog.String("title", meta.Title),
		slog.String("dump_version", meta.DumpVersion),
		slog.Int("workers", c.cfg.Workers),
	)

	if c.cfg.ProgressInterval > 0 {
		stop := c.reportProgress(c.cfg.ProgressInterval)
		defer stop()
	}

	if c.cfg.Workers == 1 {
		err = c.runSequential(ctx, src, &stats)
	} else {
		err = c.runParallel(ctx, src, &stats)
	}

	stats.Bytes = src.BytesConsumed()
	c.bytes.Store(stats.Bytes)
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, err
	}

	c.log.Info("conversion finished",
		slog.Int("entries", stats.Entries),
		slog.Int("converted", stats.Converted),
		slog.Int("failed", stats.Failed),
		slog.Int64("bytes", stats.Bytes),
		slog.String("duration", stats.Duration.String()),
	)
	return stats, nil
}

// result is the conversion outcome of one block.
type result struct {
	block segment.Block
	entry domain.NormalizedEntry
	err   error
}

func (c *Converter) convert(b segment.Block) result {
	entry, err := c.grammar.Convert(b.Text)
	return result{block: b, entry: entry, err: err}
}

func (c *Converter) runSequential(ctx context.Context, src Source, stats *Stats) error {
	for src.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.bytes.Store(src.BytesConsumed())
		if err := c.handle(ctx, c.convert(src.Block()), stats); err != nil {
			return err
		}
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	return nil
}

// handle delivers one result to the writer or the error sink. It runs on a
// single goroutine and owns stats.
func (c *Converter) handle(ctx context.Context, r result, stats *Stats) error {
	stats.Entries++
	c.entries.Add(1)

	if r.err == nil {
		if err := c.writer.WriteEntry(ctx, r.entry); err != nil {
			return fmt.Errorf("write entry %d (line %d): %w", r.block.Seq, r.block.Line, err)
		}
		stats.Converted++
		return nil
	}

	kind := domain.ClassifyFailure(r.err)
	stats.Failed++
	stats.ByKind[kind]++
	c.failed.Add(1)

	c.log.Warn("entry skipped",
		slog.Int("seq", r.block.Seq),
		slog.Int("line", r.block.Line),
		slog.String("kind", string(kind)),
		slog.String("error", r.err.Error()),
	)
	if err := c.sink.Record(ctx, r.block.Raw, r.err); err != nil {
		return fmt.Errorf("record failed entry %d: %w", r.block.Seq, err)
	}
	return nil
}

func (c *Converter) reportProgress(every time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := c.Progress()
				c.log.Info("progress",
					slog.Int64("bytes", p.Bytes),
					slog.Int64("entries", p.Entries),
					slog.Int64("failed", p.Failed),
				)
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
