package main

import (
	"context"
	"flag"

	"orderdesk/internal/config"
	"orderdesk/internal/logx"
	"orderdesk/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "roll back the dashboard storage schema")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		logx.Fatal().Err(err).Msg("load config")
	}
	logx.Init(cfg.Environment().IsProduction())

	ctx := context.Background()
	if *down {
		if err := migrate.Rollback(ctx, cfg.DBConnString); err != nil {
			logx.Fatal().Err(err).Msg("roll back migrations")
		}
		logx.Info().Msg("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, cfg.DBConnString); err != nil {
		logx.Fatal().Err(err).Msg("apply migrations")
	}
	logx.Info().Msg("migrations applied")
}
