package tester

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Doer sends HTTP requests. *http.Client satisfies it; pooling, TLS and
// redirects are the implementation's business.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StepResult is the normalized outcome of one step.
type StepResult struct {
	Endpoint string  `json:"endpoint" jsonschema:"description=Endpoint path template"`
	Method   string  `json:"method"`
	Status   int     `json:"status" jsonschema:"description=HTTP status code or 0 when the request failed"`
	Time     float64 `json:"time" jsonschema:"description=Elapsed wall-clock time in milliseconds"`
	Passed   bool    `json:"passed"`
	Response any     `json:"response,omitempty" jsonschema:"description=Decoded JSON or raw text or No Data"`
	Error    string  `json:"error,omitempty"`
	URL      string  `json:"url" jsonschema:"description=Resolved request URL"`
}

// Executor runs single test steps against an API through a shared client.
// It holds no per-step state, so one Executor may serve concurrent steps.
type Executor struct {
	client  Doer
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.timeout = timeout }
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock overrides the clock used for timing.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// NewExecutor builds an executor around a caller-owned client. A nil client
// means http.DefaultClient.
func NewExecutor(client Doer, opts ...Option) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client:  client,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute builds the request for step, sends it once and classifies the
// response. It always returns a result; failures are reported in it with
// status 0.
func (e *Executor) Execute(ctx context.Context, step Step) StepResult {
	req := Resolve(step)
	log := e.log.With(
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.String("operation", step.Endpoint.OperationKey()),
	)
	log.Debug("Executing step", zap.Int("headers", len(req.Headers)), zap.Bool("has_body", req.Body != nil))

	result := StepResult{
		Endpoint: step.Endpoint.Path,
		Method:   req.Method,
		URL:      req.URL,
	}

	start := e.now()
	status, payload, err := e.dispatch(ctx, req)
	if err != nil {
		log.Warn("Step failed", zap.Error(err))
		result.Error = err.Error()
		return result
	}

	result.Status = status
	result.Time = float64(e.now().Sub(start)) / float64(time.Millisecond)
	result.Passed = status < http.StatusInternalServerError
	result.Response = payload

	log.Debug("Step finished",
		zap.Int("status", result.Status),
		zap.Float64("time_ms", result.Time),
		zap.Bool("passed", result.Passed),
	)
	return result
}

func (e *Executor) dispatch(ctx context.Context, r ResolvedRequest) (int, any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return 0, nil, errors.New("request failed: empty response")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, DecodePayload(resp.Header.Get("Content-Type"), respBody), nil
}
