// Package main loads a campus data snapshot into the assistant database.
// Run it after each ERP export, before or while the server is up; the
// database is WAL-mode so readers are not blocked.
//
// Unlike the server it needs no WhatsApp credentials, so it reads its
// few settings directly instead of going through full config validation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/config"
	"github.com/campuskit/campus-wabot-go/internal/data"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	var (
		snapshotPath = flag.String("snapshot", "", "path to the snapshot JSON file (required)")
		dbPath       = flag.String("db", "", "path to the SQLite database (default: from WABOT_DATA_DIR)")
		timeout      = flag.Duration("timeout", 2*time.Minute, "maximum time for the load")
	)
	flag.Parse()

	if *snapshotPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: seed -snapshot <file.json> [-db <path>]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	logLevel := os.Getenv(config.EnvLogLevel)
	if logLevel == "" {
		logLevel = "info"
	}
	log := logger.New(logLevel).WithModule("seed")

	path := *dbPath
	if path == "" {
		dataDir := os.Getenv(config.EnvDataDir)
		if dataDir == "" {
			dataDir = "./data"
		}
		cfg := config.Config{DataDir: dataDir}
		path = cfg.SQLitePath()
	}

	snap, err := data.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load snapshot")
	}

	db, err := storage.New(path)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := snap.Apply(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to apply snapshot")
	}

	log.WithField("duration_ms", time.Since(start).Milliseconds()).
		WithField("records", snap.Counts()).
		Info("Snapshot applied")
}
