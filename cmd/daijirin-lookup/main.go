// Command daijirin-lookup prints stored dictionary entries by reading or by
// kanji spelling. It needs DATABASE_DSN and a store filled by daijirin-convert.
//
// Usage:
//
//	daijirin-lookup [-kanji] [-limit n] [-format json|text] <query>
//
// Exit codes: 0 = found, 1 = error, 3 = no entry matched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres"
	"github.com/heartmarshall/daijirin-converter/internal/adapter/postgres/entrystore"
	"github.com/heartmarshall/daijirin-converter/internal/app"
	"github.com/heartmarshall/daijirin-converter/internal/config"
	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	kanjiFlag := flag.Bool("kanji", false, "match the query against kanji spellings instead of readings")
	dictFlag := flag.String("dictionary", "", "restrict to one dictionary id")
	limitFlag := flag.Int("limit", 20, "maximum number of entries")
	formatFlag := flag.String("format", "json", "output format: json or text")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <query>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	if !cfg.Database.Enabled() {
		logger.Error("DATABASE_DSN is not set")
		os.Exit(1)
	}

	query := flag.Arg(0)
	filter := entrystore.Filter{Limit: *limitFlag}
	if *kanjiFlag {
		filter.Kanji = &query
	} else {
		filter.Kana = &query
	}
	if *dictFlag != "" {
		id, err := uuid.Parse(*dictFlag)
		if err != nil {
			logger.Error("invalid dictionary id", slog.String("error", err.Error()))
			os.Exit(1)
		}
		filter.DictionaryID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := entrystore.New(pool, postgres.NewTxManager(pool))
	entries, err := repo.Find(ctx, filter)
	if err != nil {
		logger.Error("lookup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(entries) == 0 {
		logger.Info("no entry matched", slog.String("query", query))
		os.Exit(3)
	}

	if *formatFlag == "text" {
		writeText(os.Stdout, entries)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		logger.Error("encode result", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// writeText prints each entry as a heading followed by its definition tree,
// indented by depth.
func writeText(w io.Writer, entries []domain.NormalizedEntry) {
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading := e.Kana
		if len(e.Kanji) > 0 {
			heading += " 【" + strings.Join(e.Kanji, "・") + "】"
		}
		if e.HasAccent() {
			heading += " " + e.Accent
		}
		fmt.Fprintln(w, heading)

		e.Definition.Walk(func(d *domain.Definition, depth int) {
			indent := strings.Repeat("  ", depth)
			line := d.Text
			if d.Number > 0 {
				line = fmt.Sprintf("(%d) %s", d.Number, line)
			}
			if line != "" {
				fmt.Fprintln(w, indent+strings.ReplaceAll(line, "\n", "\n"+indent))
			}
			for _, ex := range d.Examples {
				fmt.Fprintf(w, "%s  「%s」\n", indent, ex.Expression)
			}
		})
	}
}
