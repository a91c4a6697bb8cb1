package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"telegramdw/internal/config"
	"telegramdw/internal/detect"
	"telegramdw/internal/loader"
	"telegramdw/internal/pipeline"
	"telegramdw/internal/scraper"
	"telegramdw/internal/storage"
	"telegramdw/internal/telegram"
	"telegramdw/internal/transform"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to config file")
	steps := flag.String("steps", "", "comma-separated subset of steps to run (scrape,load,transform,detect)")
	date := flag.String("date", "", "scrape day to load (YYYY-MM-DD, default today)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	loadDay, err := loader.ParseDay(*date)
	if err != nil {
		logger.Fatal("Invalid -date flag", zap.Error(err))
	}

	db, err := storage.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := storage.MigrateDB(db, "migrations", logger); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rawRepo := storage.NewRawRepository(db, logger)

	all := []pipeline.Step{
		{Name: "scrape", Run: nil}, // wired below, needs the Telegram client
		{Name: "load", Run: func(ctx context.Context) error {
			return loader.New(rawRepo, cfg.Scraper.DataDir, logger).Run(ctx, loadDay)
		}},
		{Name: "transform", Run: func(ctx context.Context) error {
			return transform.NewRunner(db, transform.Registry(), transform.Checks(), logger).Run(ctx)
		}},
		{Name: "detect", Run: func(ctx context.Context) error {
			if !cfg.Detector.Enabled {
				logger.Info("Detector disabled, skipping")
				return nil
			}
			client := detect.NewClient(cfg.Detector.URL)
			return detect.NewEnricher(client, rawRepo, cfg.Detector.ConfidenceThreshold, logger).Run(ctx)
		}},
	}

	selected, err := pipeline.Select(all, *steps)
	if err != nil {
		logger.Fatal("Invalid -steps flag", zap.Error(err))
	}

	if scrapeSelected(selected) {
		tgClient := telegram.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Telegram.SessionFile, logger)

		go func() {
			if err := tgClient.Run(ctx, cfg.Telegram.Phone); err != nil && ctx.Err() == nil {
				logger.Fatal("Telegram client failed to run", zap.Error(err))
			}
		}()

		select {
		case <-tgClient.AuthCompleted:
			logger.Info("Telegram authentication completed")
		case <-ctx.Done():
			logger.Info("Interrupted during Telegram client startup")
			return
		}

		sc := scraper.New(tgClient, cfg.Scraper.DataDir, cfg.Telegram.Channels, cfg.Telegram.MessageLimit, logger)
		for i := range selected {
			if selected[i].Name == "scrape" {
				selected[i].Run = sc.Run
			}
		}
	}

	p := pipeline.New(selected, logger)

	if strings.TrimSpace(cfg.Pipeline.Interval) == "" {
		if err := p.Run(ctx); err != nil {
			logger.Fatal("Pipeline run failed", zap.Error(err))
		}
		return
	}

	interval, err := time.ParseDuration(cfg.Pipeline.Interval)
	if err != nil {
		logger.Fatal("Failed to parse pipeline interval", zap.Error(err))
	}
	_ = p.Loop(ctx, interval)
	logger.Info("Application stopped")
}

func scrapeSelected(steps []pipeline.Step) bool {
	for _, s := range steps {
		if s.Name == "scrape" {
			return true
		}
	}
	return false
}
