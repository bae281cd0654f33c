// Package notification delivers order status notices to customers.
//
// Senders are best-effort: callers must treat a returned error as something
// to log, not as a reason to undo the status change that triggered it.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coffeeshop/internal/domain"
)

type Sender interface {
	Send(ctx context.Context, status domain.OrderStatus) (*Receipt, error)
}

type Receipt struct {
	Status  domain.OrderStatus
	Message string
	Latency time.Duration
	SentAt  time.Time
}

const (
	ModeSimulated = "simulated"
	ModeHTTP      = "http"
)

type Config struct {
	Mode       string
	URL        string
	MinLatency time.Duration
	MaxLatency time.Duration
	MaxRetries uint64
}

// NewSender builds the sender selected by cfg.Mode.
func NewSender(cfg Config, logger *zap.Logger) (Sender, error) {
	switch cfg.Mode {
	case ModeSimulated, "":
		return NewSimulatedSender(cfg.MinLatency, cfg.MaxLatency), nil
	case ModeHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("notification url is required for mode %q", ModeHTTP)
		}
		return NewHTTPSender(cfg.URL, nil, cfg.MaxRetries, logger), nil
	default:
		return nil, fmt.Errorf("unknown notification mode %q", cfg.Mode)
	}
}
