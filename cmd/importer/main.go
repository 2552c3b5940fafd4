package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"orderdesk/internal/backend"
	"orderdesk/internal/config"
	"orderdesk/internal/importer"
	"orderdesk/internal/logx"
	"orderdesk/internal/validation"
)

func main() {
	var (
		filePath string
		token    string
		dryRun   bool
	)
	flag.StringVar(&filePath, "file", "", "Path to a productId,customerId,overridePrice CSV file")
	flag.StringVar(&token, "token", os.Getenv("ORDERDESK_TOKEN"), "Manager bearer token for the backend")
	flag.BoolVar(&dryRun, "dry-run", false, "Report changes without writing them")
	flag.Parse()

	if filePath == "" || token == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logx.Fatal().Err(err).Msg("load config")
	}
	logx.Init(cfg.Environment().IsProduction())

	client, err := backend.New(cfg.BackendURL, cfg.BackendTimeout(), backend.StaticToken(token))
	if err != nil {
		logx.Fatal().Err(err).Msg("init backend client")
	}

	f, err := os.Open(filePath)
	if err != nil {
		logx.Fatal().Err(err).Str("file", filePath).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, importer.BackendWriter{Client: client}, validation.New())
	imp.DryRun = dryRun

	start := time.Now()
	report, err := imp.Run(context.Background())
	if err != nil {
		logx.Fatal().Err(err).Msg("import failed")
	}

	fmt.Printf("Overrides: %d created, %d updated, %d unchanged in %s\n",
		report.Created, report.Updated, report.Unchanged, time.Since(start).Truncate(time.Millisecond))
}
