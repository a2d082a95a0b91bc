package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubgate/clubgate/internal/config"
	"github.com/clubgate/clubgate/internal/db"
	"github.com/clubgate/clubgate/internal/gate/csvimport"
	"github.com/clubgate/clubgate/internal/gate/service"
	"github.com/clubgate/clubgate/internal/gate/store/sqlite"
	"github.com/clubgate/clubgate/internal/kiosk"
	"github.com/clubgate/clubgate/internal/reader"
	"github.com/clubgate/clubgate/internal/reader/pcsc"
	"github.com/clubgate/clubgate/internal/reader/wedge"
	"github.com/clubgate/clubgate/internal/ui"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "clubgate ", log.LstdFlags|log.LUTC)

	if cfg.Group == "" {
		logger.Fatal("CLUBGATE_GROUP is required (the group this gate admits)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatalf("seed dev: %v", err)
		}
	}

	// Stores
	cardStore := sqlite.NewCardStore(conn, writer)
	attemptStore := sqlite.NewAttemptStore(conn, writer)

	// Card registry import (startup-time convenience).
	if _, err := os.Stat(cfg.CSVPath); err == nil {
		if _, err := csvimport.ImportFile(ctx, cfg.CSVPath, cardStore, logger); err != nil {
			logger.Fatalf("import %s: %v", cfg.CSVPath, err)
		}
	}

	// Services
	svc := service.NewGateService(cardStore, attemptStore, service.ReplayPolicy{
		GracePeriod: time.Duration(cfg.GraceSeconds) * time.Second,
		ReuseWindow: time.Duration(cfg.ReuseMinutes) * time.Minute,
	})

	pruner := service.NewAttemptPruner(attemptStore, service.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// Reader
	var rdr reader.Reader
	switch cfg.Reader {
	case "wedge":
		rdr = wedge.New(os.Stdin)
	default:
		rdr = pcsc.New()
	}

	presenter := ui.NewConsole(os.Stdout)
	if cfg.Reader == "pcsc" {
		presenter.RenderStatus(pcsc.Probe())
	}

	scans := make(chan reader.Scan, 8)
	status := make(chan string, 8)

	go func() {
		if err := rdr.Run(ctx, scans, status); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("reader stopped: %v", err)
			stop()
		}
	}()

	k := kiosk.New(kiosk.Dependencies{
		Logger:    logger,
		Service:   svc,
		Presenter: presenter,
		Group:     cfg.Group,
	})

	logger.Printf("gate open for group %q (reader=%s, db=%s)", cfg.Group, cfg.Reader, cfg.DBPath)

	if err := k.Run(ctx, scans, status); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("kiosk: %v", err)
	}
}
