// Package remote talks to the authoritative time-tracking service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/jonboulle/clockwork"
)

// StartDayResult is the outcome of a start call. AlreadyStarted is true when
// the service returned the day's existing open session.
type StartDayResult struct {
	Session        *domain.WorkSession
	AlreadyStarted bool
}

// Status is the service's view of the current day.
type Status struct {
	HasActiveDay  bool
	CurrentStatus domain.SessionStatus
	Session       *domain.WorkSession
}

// Tracker is the contract of the remote time-tracking service.
type Tracker interface {
	StartDay(ctx context.Context) (*StartDayResult, error)
	Pause(ctx context.Context) (*domain.WorkSession, error)
	Resume(ctx context.Context) (*domain.WorkSession, error)
	EndDay(ctx context.Context) (*domain.WorkSession, error)
	SyncTime(ctx context.Context, p domain.SyncPayload) (*domain.WorkSession, error)
	GetStatus(ctx context.Context) (*Status, error)
}

// Config holds the client settings.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	// MaxRetries applies to idempotent reads only. State-changing calls are
	// sent once.
	MaxRetries int
}

// DefaultConfig returns a Config pointing at a local service.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:8787",
		Timeout:    10 * time.Second,
		MaxRetries: 1,
	}
}

// HTTPClient implements Tracker over JSON/HTTP.
type HTTPClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
	clock    clockwork.Clock
}

// NewHTTPClient creates a Tracker for the service at cfg.Endpoint.
func NewHTTPClient(cfg Config, observer Observer, clock clockwork.Clock) *HTTPClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
		clock:    clock,
	}
}

var _ Tracker = (*HTTPClient)(nil)

func (c *HTTPClient) StartDay(ctx context.Context) (*StartDayResult, error) {
	var resp StartDayResponse
	if err := c.call(ctx, "start_day", http.MethodPost, "/api/time/start", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil {
		return nil, c.missingSession("start_day")
	}
	return &StartDayResult{Session: resp.Session.Domain(), AlreadyStarted: resp.AlreadyStarted}, nil
}

func (c *HTTPClient) Pause(ctx context.Context) (*domain.WorkSession, error) {
	return c.sessionCall(ctx, "pause", "/api/time/pause", nil)
}

func (c *HTTPClient) Resume(ctx context.Context) (*domain.WorkSession, error) {
	return c.sessionCall(ctx, "resume", "/api/time/resume", nil)
}

func (c *HTTPClient) EndDay(ctx context.Context) (*domain.WorkSession, error) {
	return c.sessionCall(ctx, "end_day", "/api/time/end", nil)
}

func (c *HTTPClient) SyncTime(ctx context.Context, p domain.SyncPayload) (*domain.WorkSession, error) {
	return c.sessionCall(ctx, "sync_time", "/api/time/sync", NewSyncRequest(p))
}

func (c *HTTPClient) GetStatus(ctx context.Context) (*Status, error) {
	var resp StatusResponse
	var err error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		err = c.call(ctx, "get_status", http.MethodGet, "/api/time/status", nil, &resp)
		if err == nil || ctx.Err() != nil {
			break
		}
		// Client errors will not change on retry.
		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return &Status{
		HasActiveDay:  resp.HasActiveDay,
		CurrentStatus: domain.SessionStatus(resp.CurrentStatus),
		Session:       resp.Session.Domain(),
	}, nil
}

func (c *HTTPClient) sessionCall(ctx context.Context, op, path string, body any) (*domain.WorkSession, error) {
	var resp SessionResponse
	if err := c.call(ctx, op, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil {
		return nil, c.missingSession(op)
	}
	return resp.Session.Domain(), nil
}

func (c *HTTPClient) missingSession(op string) error {
	return fmt.Errorf("%s: %w: %w: response has no session", op, ErrRemoteUnavailable, errDecode)
}

func (c *HTTPClient) call(ctx context.Context, op, method, path string, body, out any) error {
	start := c.clock.Now()
	err := c.do(ctx, op, method, path, body, out)
	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		LatencyMs: c.clock.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: reading response: %v", op, ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode, Body: errorMessage(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: %w: %w: %v", op, ErrRemoteUnavailable, errDecode, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return strings.TrimSpace(string(body))
}
