// Command legacyimport loads a mongodump of the previous MongoDB deployment
// into the relational schema. Re-running it updates rows in place.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/panotour/core/internal/config"
	"github.com/panotour/core/internal/database"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	dir := flag.String("dump", "", "mongodump database directory containing *.bson files")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: legacyimport -dump <dir> [-config config.yaml]")
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	reports, err := newImporter(db, logger).Run(context.Background(), *dir)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	for _, r := range reports {
		fmt.Printf("%-14s read=%d imported=%d skipped=%d\n", r.Collection, r.Read, r.Imported, r.Skipped)
	}
}
