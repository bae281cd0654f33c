package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	driver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"coffeeshop/internal/config"
)

func DSN(cfg config.DatabaseConfig) string {
	dc := driver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dc.DBName = cfg.Name
	dc.ParseTime = true
	dc.Loc = time.UTC
	return dc.FormatDSN()
}

// NewConnection opens the pool and pings it until the database answers or
// cfg.ConnectTimeout elapses. Containers usually start MySQL after the app.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(250*time.Millisecond),
		backoff.WithMaxInterval(5*time.Second),
		backoff.WithMaxElapsedTime(cfg.ConnectTimeout),
	)

	notify := func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.String("host", cfg.Host), zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(b, ctx), notify); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}
