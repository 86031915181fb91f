package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arena/internal/config"
	"arena/internal/court"
	"arena/internal/health"
	"arena/internal/infrastructure/logger"
	"arena/internal/infrastructure/mysql"
	"arena/internal/product"
	"arena/internal/report"
	"arena/internal/server"
	"arena/internal/stock"
	"arena/internal/store"
	"arena/internal/tab"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := mysql.EnsureSchema(ctx, db); err != nil {
			cancel()
			zapLogger.Fatal("creating schema", zap.Error(err))
		}
		seeded, err := mysql.SeedCourts(ctx, db)
		cancel()
		if err != nil {
			zapLogger.Fatal("seeding courts", zap.Error(err))
		}
		if seeded {
			zapLogger.Info("default courts created")
		}
	}

	st := store.New(db, zapLogger, cfg.Tx.Timeout, cfg.Tx.MaxRetryAttempts)

	router := server.NewRouter(server.Controllers{
		Health:    health.NewController(st, zapLogger),
		Courts:    court.NewModule(st, zapLogger),
		Tabs:      tab.NewModule(st, zapLogger),
		Products:  product.NewModule(st, zapLogger),
		Movements: stock.NewModule(st, zapLogger),
		Reports:   report.NewModule(st, zapLogger),
	}, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
