package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/heartmarshall/daijirin-converter/internal/adapter/errlog"
	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres"
	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres/entrystore"
	"github.com/heartmarshall/daijirin-converter/internal/adapter/xmldoc"
	"github.com/heartmarshall/daijirin-converter/internal/config"
	"github.com/heartmarshall/daijirin-converter/internal/convert"
	"github.com/heartmarshall/daijirin-converter/internal/daijirin"
	"github.com/heartmarshall/daijirin-converter/internal/segment"
)

// inputBufferSize is the read buffer in front of the decoder (1 MB).
const inputBufferSize = 1 << 20

// RunConvert converts the dump at inputPath into the XML document and error
// log named by cfg and, when a database is configured, into the entry store.
// Entry-level failures are counted in the returned Stats, not returned as
// errors.
func RunConvert(ctx context.Context, log *slog.Logger, cfg *config.Config, inputPath string) (convert.Stats, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return convert.Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	if info, err := in.Stat(); err == nil {
		log.Info("starting conversion",
			slog.String("version", BuildVersion()),
			slog.String("input", inputPath),
			slog.Int64("input_bytes", info.Size()),
			slog.String("encoding", cfg.Convert.InputEncoding),
			slog.String("output", cfg.Convert.OutputPath),
		)
	}

	seg, err := segment.NewDecoding(bufio.NewReaderSize(in, inputBufferSize), cfg.Convert.InputEncoding)
	if err != nil {
		return convert.Stats{}, err
	}

	out, err := os.Create(cfg.Convert.OutputPath)
	if err != nil {
		return convert.Stats{}, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	sink, err := errlog.Create(cfg.Convert.ErrorLogPath)
	if err != nil {
		return convert.Stats{}, err
	}
	defer sink.Close()

	writers := convert.MultiWriter{xmldoc.New(out)}

	if cfg.Database.Enabled() {
		if !cfg.Database.SkipMigrations {
			if err := postgres.Migrate(ctx, log, cfg.Database.DSN); err != nil {
				return convert.Stats{}, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return convert.Stats{}, err
		}
		defer pool.Close()

		repo := entrystore.New(pool, postgres.NewTxManager(pool))
		writers = append(writers, entrystore.NewWriter(log, repo))
	}

	conv := convert.New(log, daijirin.New(), writers, sink, convert.Config{
		Workers:          cfg.Convert.Workers,
		Window:           cfg.Convert.Window,
		ProgressInterval: cfg.Convert.ProgressInterval,
		ConverterVersion: Version,
	})

	stats, err := conv.Run(ctx, seg)
	if err != nil {
		// The document is left unterminated so it cannot pass for a complete one.
		return stats, err
	}

	if err := errors.Join(writers.Close(), sink.Close(), out.Close()); err != nil {
		return stats, fmt.Errorf("finish output: %w", err)
	}
	for kind, n := range stats.ByKind {
		log.Info("failures by kind", slog.String("kind", string(kind)), slog.Int("count", n))
	}
	return stats, nil
}
