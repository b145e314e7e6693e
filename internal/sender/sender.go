// Package sender makes the single outbound HTTP attempt the Dispatcher asks
// for and classifies the result. The in-process retry loop a naive port
// would carry stays out of this package on purpose: retry scheduling
// belongs to the Dispatcher and RetryScheduler, not the HTTP call itself.
package sender

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
)

// MaxCapturedBodyBytes caps how much of a response body gets persisted on
// the DeliveryAttempt row.
const MaxCapturedBodyBytes = domain.MaxCapturedBodyBytes

// Outcome is the sum type the Dispatcher switches on. Exactly one of
// StatusCode or Error is meaningful: a transport failure leaves StatusCode
// at zero and populates Error.
type Outcome struct {
	StatusCode      int
	Body            string
	Headers         map[string]string
	Error           error
	DurationMs      int
	ConnectionError bool
}

// Retryable reports whether the dispatcher should consider scheduling
// another attempt for this outcome.
func (o Outcome) Retryable() bool {
	if o.StatusCode == 0 {
		return true // transport-level failure
	}
	if o.StatusCode >= 200 && o.StatusCode < 300 {
		return false
	}
	if o.StatusCode == http.StatusRequestTimeout || o.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return o.StatusCode >= 500
}

// Success reports a 2xx response.
func (o Outcome) Success() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

type Config struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	SignatureHeader string
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  10 * time.Second,
		ReadTimeout:     30 * time.Second,
		SignatureHeader: "X-Webhook-Signature",
	}
}

type Sender struct {
	client *http.Client
	cfg    Config
}

func New(cfg Config) *Sender {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{DialContext: dialer.DialContext}
	return &Sender{
		client: &http.Client{
			Timeout:   cfg.ReadTimeout,
			Transport: transport,
			// The service does not follow redirects: a 3xx is a
			// terminal, non-retryable outcome in its own right.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cfg: cfg,
	}
}

// Send POSTs msg's byte-exact payload to its target_url, attempt number n,
// and classifies the result. It never returns a Go error for HTTP-level or
// transport-level failure; those are reported inside Outcome.
func (s *Sender) Send(ctx context.Context, msg *domain.Message, attemptNumber int) Outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, msg.TargetURL, bytes.NewReader(msg.Payload))
	if err != nil {
		return Outcome{Error: fmt.Errorf("sender: failed to build request: %w", err), DurationMs: int(time.Since(start).Milliseconds())}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(s.cfg.SignatureHeader, msg.Signature)
	req.Header.Set("X-Webhook-Id", msg.ID)
	req.Header.Set("X-Webhook-Attempt", fmt.Sprintf("%d", attemptNumber))
	for k, v := range msg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return Outcome{
			Error:           err,
			DurationMs:      int(duration.Milliseconds()),
			ConnectionError: isConnectionError(err),
		}
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, MaxCapturedBodyBytes+1))
	body := string(bodyBytes)
	if len(bodyBytes) > MaxCapturedBodyBytes {
		body = string(bodyBytes[:MaxCapturedBodyBytes]) + "..."
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return Outcome{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    headers,
		DurationMs: int(duration.Milliseconds()),
	}
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok {
		return true
	}
	return false
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}
