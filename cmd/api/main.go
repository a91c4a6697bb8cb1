package main

import (
	"flag"

	"go.uber.org/zap"

	"telegramdw/internal/config"
	"telegramdw/internal/server"
	"telegramdw/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to config file")
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

	db, err := storage.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	srv := server.NewServer(db, logger)
	if err := srv.Run(cfg.Server.Port); err != nil {
		logger.Fatal("API server failed", zap.Error(err))
	}
}
