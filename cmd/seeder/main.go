// cmd/seeder/main.go
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/ils-tools/internal/adapters/db"
	redis_a "github.com/ammerola/ils-tools/internal/adapters/redis_adapter"
	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/internal/pkg/config"
	"github.com/ammerola/ils-tools/internal/workers"
)

// seederState remembers the last list loaded so reruns are no-ops
type seederState struct {
	File       string    `json:"file"`
	Checksum   string    `json:"checksum"`
	Entries    int       `json:"entries"`
	LastUpdate time.Time `json:"last_update"`
}

func main() {
	var (
		listFile  = flag.String("file", "./Bus_Discarding.json", "Discard list to load (.json, .xlsx or .pdf)")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking the last load")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Parse and report without writing to the store")
		force     = flag.Bool("force", false, "Reload even if the file is unchanged")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	format, ok := workers.FormatFromFilename(*listFile)
	if !ok {
		logger.Error("unsupported discard list format", slog.String("file", *listFile))
		os.Exit(1)
	}

	checksum, err := fileChecksum(*listFile)
	if err != nil {
		logger.Error("failed to read discard list", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var state seederState
	if !*force {
		if data, err := os.ReadFile(*stateFile); err == nil {
			_ = json.Unmarshal(data, &state)
		}
		if state.Checksum == checksum {
			logger.Info("discard list unchanged since last load, skipping",
				slog.String("file", *listFile),
				slog.Time("last_update", state.LastUpdate))
			return
		}
	}

	entries, warnings, err := workers.ParseDiscardFile(ctx, format, *listFile, logger)
	if err != nil {
		logger.Error("failed to parse discard list", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn("skipped row", slog.String("detail", w))
	}

	fmt.Printf("PARSED: %d entries from %s (%d skipped)\n", len(entries), filepath.Base(*listFile), len(warnings))

	if *dryRun {
		printPreview(entries)
		logger.Info("dry run complete, store not modified")
		return
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	discard := services.NewDiscardLog(store, nil, cfg.Scan.Highlight, logger)
	stored, err := discard.ReplaceList(ctx, entries)
	if err != nil {
		logger.Error("failed to store discard list", slog.String("error", err.Error()))
		os.Exit(1)
	}

	state = seederState{
		File:       *listFile,
		Checksum:   checksum,
		Entries:    stored,
		LastUpdate: time.Now().UTC(),
	}
	if data, err := json.MarshalIndent(state, "", "  "); err == nil {
		if err := os.WriteFile(*stateFile, data, 0o644); err != nil {
			logger.Warn("failed to save seeder state", slog.String("error", err.Error()))
		}
	}

	logger.Info("discard list loaded",
		slog.String("file", *listFile),
		slog.String("store_backend", cfg.Store.Backend),
		slog.Int("entries_stored", stored),
		slog.Int("warnings", len(warnings)))
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ScanStore, func(), error) {
	if cfg.UsesPostgresStore() {
		database, err := db.NewDatabase(ctx, &db.Config{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			Database:       cfg.Database.Name,
			SSLMode:        cfg.Database.SSLMode,
			MaxConnections: 2,
			MinConnections: 1,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return db.NewScanStore(database.SQL(), logger), database.Close, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redis_a.NewScanStore(client, logger), func() { client.Close() }, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printPreview(entries []domain.DiscardEntry) {
	limit := min(len(entries), 10)
	for _, e := range entries[:limit] {
		fmt.Printf("  %-16s %s\n", e.Barcode, e.Title)
	}
	if len(entries) > limit {
		fmt.Printf("  ... and %d more\n", len(entries)-limit)
	}
}
