package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
)

const (
	initialInterval = 100 * time.Millisecond
	maxInterval     = time.Second
	randomization   = 0.2
	multiplier      = 2
)

// HTTPSender posts the new status to a remote notify endpoint as
// POST <baseURL>?status=<status>. Server errors are retried with exponential
// backoff; client errors are not.
type HTTPSender struct {
	baseURL    string
	client     *http.Client
	maxRetries uint64
	logger     *zap.Logger
}

func NewHTTPSender(baseURL string, client *http.Client, maxRetries uint64, logger *zap.Logger) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSender{
		baseURL:    baseURL,
		client:     client,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

type notifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *HTTPSender) Send(ctx context.Context, status domain.OrderStatus) (*Receipt, error) {
	endpoint, err := s.endpoint(status)
	if err != nil {
		return nil, apperrors.NewTransportError("building notification url", err)
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
		backoff.WithRandomizationFactor(randomization),
		backoff.WithMultiplier(multiplier),
	)

	start := time.Now()
	var attempt int
	var body notifyResponse

	operation := func() error {
		attempt++
		resp, err := s.post(ctx, endpoint)
		if err != nil {
			s.logger.Warn("notification attempt failed",
				zap.Int("attempt", attempt), zap.String("status", status.String()), zap.Error(err))
			return err
		}
		body = resp
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Sprintf("sending %s notification", status), err)
	}

	message := body.Message
	if message == "" {
		message = fmt.Sprintf("notification for status %s accepted", status)
	}

	return &Receipt{
		Status:  status,
		Message: message,
		Latency: time.Since(start),
		SentAt:  time.Now(),
	}, nil
}

func (s *HTTPSender) endpoint(status domain.OrderStatus) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("status", status.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *HTTPSender) post(ctx context.Context, endpoint string) (notifyResponse, error) {
	var out notifyResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return out, backoff.Permanent(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return out, err
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return out, fmt.Errorf("notify endpoint returned %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return out, backoff.Permanent(fmt.Errorf("notify endpoint rejected request with %d", resp.StatusCode))
	}

	if len(data) > 0 {
		// Only the status code decides success.
		if err := json.Unmarshal(data, &out); err != nil {
			s.logger.Debug("ignoring undecodable notify response body",
				zap.Int("statusCode", resp.StatusCode), zap.Error(err))
		}
	}
	return out, nil
}
