// Package fetch retrieves raw upstream payloads for contest sources.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/metrics"
	"github.com/MrSnakeDoc/contesthub/internal/utils"
)

// DefaultMaxBytes caps a single response body.
const DefaultMaxBytes int64 = 4 * 1024 * 1024

// Result is the outcome of one endpoint request.
// Exactly one of Body and Err is meaningful.
type Result struct {
	Endpoint domain.Endpoint
	Body     []byte
	Err      error
}

// OK reports whether the endpoint produced a body.
func (r Result) OK() bool {
	return r.Err == nil
}

// Options configures an Orchestrator.
type Options struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
	RPS       float64 // per host; <= 0 disables limiting
	Burst     int
}

// Orchestrator issues the endpoint requests of a source concurrently.
type Orchestrator struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *hostLimiter
	log       logger.Logger
}

// New creates an Orchestrator.
func New(opts Options, log logger.Logger) *Orchestrator {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  maxBytes,
		limiter:   newHostLimiter(opts.RPS, opts.Burst),
		log:       log,
	}
}

// FetchSource requests every endpoint of src at once and waits for all of
// them. Results come back in endpoint order; one failure never affects the
// others.
func (o *Orchestrator) FetchSource(ctx context.Context, src domain.ContestSource) []Result {
	results := make([]Result, len(src.Endpoints))

	var wg sync.WaitGroup
	for i, ep := range src.Endpoints {
		wg.Add(1)
		go func(i int, ep domain.Endpoint) {
			defer wg.Done()

			start := time.Now()
			body, err := o.fetch(ctx, ep)
			results[i] = Result{Endpoint: ep, Body: body, Err: err}

			outcome := metrics.OutcomeOK
			if err != nil {
				outcome = metrics.OutcomeError
				o.log.Warn("endpoint fetch failed",
					logger.String("source", string(src.Name)),
					logger.String("url", ep.URL),
					logger.Error(err))
			} else {
				o.log.Debug("endpoint fetched",
					logger.String("source", string(src.Name)),
					logger.String("url", ep.URL),
					logger.Int("bytes", len(body)),
					logger.Duration("elapsed", time.Since(start)))
			}
			metrics.ObserveFetch(string(src.Name), outcome, time.Since(start))
		}(i, ep)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) fetch(ctx context.Context, ep domain.Endpoint) ([]byte, error) {
	if err := o.limiter.Wait(ctx, ep.URL); err != nil {
		return nil, err
	}

	req, err := o.newRequest(ctx, ep)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", ep.URL, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: ep.URL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, o.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ep.URL, err)
	}
	return body, nil
}

// newRequest builds a GET, or a JSON POST when the endpoint carries a body.
func (o *Orchestrator) newRequest(ctx context.Context, ep domain.Endpoint) (*http.Request, error) {
	method := http.MethodGet
	var payload io.Reader
	if ep.IsPost() {
		method = http.MethodPost
		payload = bytes.NewBufferString(ep.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, ep.URL, payload)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", ep.URL, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}
	return req, nil
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Code)
}
