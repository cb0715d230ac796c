// Command daijirin-convert turns a Daijirin text dump into an importable XML
// dictionary document. Entries that fail to parse are logged and appended,
// verbatim, to an error file; the rest of the dump is still converted.
// With DATABASE_DSN set, entries are also stored in PostgreSQL.
//
// Usage:
//
//	daijirin-convert [flags] <dump.txt>
//
// Flags override the matching config values:
//
//	-config    path to YAML config (default: CONFIG_PATH or ./daijirin.yaml)
//	-o         output XML path
//	-errors    error log path
//	-encoding  input encoding: utf-8, shift_jis, euc-jp
//	-workers   parser goroutines
//	-version   print the version and exit
//
// Exit codes: 0 = success, 1 = fatal error. Skipped entries do not change
// the exit code; they are counted in the final log line and kept in the
// error log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/daijirin-converter/internal/app"
	"github.com/heartmarshall/daijirin-converter/internal/config"
	"github.com/heartmarshall/daijirin-converter/internal/convert"
)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	outputFlag := flag.String("o", "", "output XML path")
	errorsFlag := flag.String("errors", "", "error log path")
	encodingFlag := flag.String("encoding", "", "input encoding (utf-8, shift_jis, euc-jp)")
	workersFlag := flag.Int("workers", 0, "number of parser goroutines")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <dump.txt>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *versionFlag {
		fmt.Println(app.BuildVersion())
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags override config.
	if *outputFlag != "" {
		cfg.Convert.OutputPath = *outputFlag
	}
	if *errorsFlag != "" {
		cfg.Convert.ErrorLogPath = *errorsFlag
	}
	if *encodingFlag != "" {
		cfg.Convert.InputEncoding = *encodingFlag
	}
	if *workersFlag > 0 {
		cfg.Convert.Workers = *workersFlag
		if cfg.Convert.Window < *workersFlag {
			cfg.Convert.Window = 4 * *workersFlag
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := app.RunConvert(ctx, logger, cfg, flag.Arg(0))
	stop()
	os.Exit(report(logger, stats, err, cfg.Convert.ErrorLogPath))
}

// report logs the outcome of a run and returns the process exit code. Only a
// fatal error is non-zero; skipped entries are reported and the run counts
// as done.
func report(logger *slog.Logger, stats convert.Stats, err error, errorLog string) int {
	if err != nil {
		logger.Error("conversion failed", slog.String("error", err.Error()))
		return 1
	}

	if stats.Failed > 0 {
		logger.Warn("conversion completed with skipped entries",
			slog.Int("failed", stats.Failed),
			slog.String("error_log", errorLog),
		)
		return 0
	}

	logger.Info("conversion completed successfully")
	return 0
}
