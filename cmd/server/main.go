package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coffeeshop/internal/config"
	"coffeeshop/internal/infrastructure/logger"
	"coffeeshop/internal/infrastructure/mysql"
	"coffeeshop/internal/menu"
	"coffeeshop/internal/notification"
	"coffeeshop/internal/order"
	"coffeeshop/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("application failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	db, err := mysql.NewConnection(ctx, cfg.Database, zapLogger)
	if err != nil {
		return err
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Database.Migrate {
		if err := mysql.Migrate(ctx, db); err != nil {
			return err
		}
		zapLogger.Info("database schema applied")
	}

	sender, err := notification.NewSender(notification.Config{
		Mode:       cfg.Notification.Mode,
		URL:        cfg.Notification.URL,
		MinLatency: cfg.Notification.MinLatency,
		MaxLatency: cfg.Notification.MaxLatency,
		MaxRetries: cfg.Notification.MaxRetries,
	}, zapLogger)
	if err != nil {
		return err
	}
	zapLogger.Info("notification sender ready", zap.String("mode", cfg.Notification.Mode))

	menuCtrl := menu.NewModule(zapLogger)
	orderCtrl := order.NewModule(db, cfg, sender, zapLogger)

	router := server.NewRouter(menuCtrl, orderCtrl, cfg.Server.RequestTimeout, zapLogger)
	srv := server.New(cfg.Server.Port, router, cfg.Server.RequestTimeout, zapLogger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	zapLogger.Info("server stopped gracefully")
	return nil
}
