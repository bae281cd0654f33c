package notification

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
)

// SimulatedSender stands in for an e-mail provider. Every send succeeds after
// a random delay in [min, max].
type SimulatedSender struct {
	minLatency time.Duration
	maxLatency time.Duration
	jitter     func(n int64) int64
	now        func() time.Time
}

func NewSimulatedSender(minLatency, maxLatency time.Duration) *SimulatedSender {
	if minLatency < 0 {
		minLatency = 0
	}
	if maxLatency < minLatency {
		maxLatency = minLatency
	}
	return &SimulatedSender{
		minLatency: minLatency,
		maxLatency: maxLatency,
		jitter:     rand.Int64N,
		now:        time.Now,
	}
}

func (s *SimulatedSender) Send(ctx context.Context, status domain.OrderStatus) (*Receipt, error) {
	latency := s.latency()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, apperrors.NewTransportError("simulated notification interrupted", ctx.Err())
		case <-timer.C:
		}
	}

	return &Receipt{
		Status:  status,
		Message: fmt.Sprintf("The email was sent with the status %s after %s", status, latency),
		Latency: latency,
		SentAt:  s.now(),
	}, nil
}

func (s *SimulatedSender) latency() time.Duration {
	spread := int64(s.maxLatency - s.minLatency)
	if spread <= 0 {
		return s.minLatency
	}
	return s.minLatency + time.Duration(s.jitter(spread+1))
}
