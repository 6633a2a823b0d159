// Package router forwards analysed documents to the processing tier chosen by
// the complexity analysis.
package router

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/local/docorchestrator/internal/analysis"
	"github.com/local/docorchestrator/internal/metrics"
)

const maxResponseBytes = 128 << 20

// Config locates the tiers and tunes the per-service breakers.
type Config struct {
	CoreURL         string
	FullURL         string
	Timeout         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
	BreakerHalfOpen int
	BreakerInterval time.Duration
}

// Request is one document to route.
type Request struct {
	DocumentID string
	Filename   string
	Data       []byte
	Analysis   analysis.DocumentAnalysis
}

// Response is the decoded body returned by the processing tier.
type Response struct {
	Service    analysis.Service
	StatusCode int
	Body       map[string]any
	Duration   time.Duration
}

// envelope is the wire format expected by both tiers.
type envelope struct {
	DocumentBytes string                    `json:"document_bytes"`
	Filename      string                    `json:"filename"`
	DocumentID    string                    `json:"document_id"`
	Analysis      analysis.DocumentAnalysis `json:"analysis"`
}

// Router posts documents to docling-core or docling-full. It does not retry;
// repeated transient failures open that service's breaker.
type Router struct {
	client    *http.Client
	timeout   time.Duration
	endpoints map[analysis.Service]string
	breakers  map[analysis.Service]*gobreaker.CircuitBreaker
}

// New creates a Router. A nil client uses a default http.Client.
func New(cfg Config, client *http.Client) *Router {
	if client == nil {
		client = &http.Client{}
	}
	r := &Router{
		client:  client,
		timeout: cfg.Timeout,
		endpoints: map[analysis.Service]string{
			analysis.ServiceCore: strings.TrimRight(cfg.CoreURL, "/") + "/" + string(analysis.ServiceCore),
			analysis.ServiceFull: strings.TrimRight(cfg.FullURL, "/") + "/" + string(analysis.ServiceFull),
		},
		breakers: make(map[analysis.Service]*gobreaker.CircuitBreaker, 2),
	}
	for svc := range r.endpoints {
		r.breakers[svc] = newBreaker(string(svc), cfg)
	}
	return r
}

func newBreaker(name string, cfg Config) *gobreaker.CircuitBreaker {
	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	halfOpen := cfg.BreakerHalfOpen
	if halfOpen <= 0 {
		halfOpen = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(halfOpen),
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("service", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.BreakerTransition(name, to.String())
		},
		// Client-side rejections say nothing about the tier's health.
		IsSuccessful: func(err error) bool { return err == nil || !IsTransient(err) },
	})
}

// Endpoint returns the URL used for svc.
func (r *Router) Endpoint(svc analysis.Service) string { return r.endpoints[svc] }

// BreakerState reports the breaker state for svc.
func (r *Router) BreakerState(svc analysis.Service) string {
	if cb, ok := r.breakers[svc]; ok {
		return cb.State().String()
	}
	return ""
}

// Route sends req to the service recommended by its analysis.
func (r *Router) Route(ctx context.Context, req Request) (*Response, error) {
	svc := req.Analysis.RecommendedService
	endpoint, ok := r.endpoints[svc]
	if !ok {
		return nil, &DownstreamError{Service: string(svc), Err: fmt.Errorf("unknown service %q", svc)}
	}

	start := time.Now()
	out, err := r.breakers[svc].Execute(func() (interface{}, error) {
		return r.post(ctx, svc, endpoint, req)
	})
	dur := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &DownstreamError{Service: string(svc), Err: fmt.Errorf("%w: %v", ErrBreakerOpen, err)}
		}
		metrics.ObserveRoute(string(svc), resultLabel(err), dur)
		log.Error().
			Err(err).
			Str("document_id", req.DocumentID).
			Str("service", string(svc)).
			Dur("elapsed", dur).
			Msg("document routing failed")
		return nil, err
	}

	resp := out.(*Response)
	resp.Duration = dur
	metrics.ObserveRoute(string(svc), "success", dur)
	log.Info().
		Str("document_id", req.DocumentID).
		Str("service", string(svc)).
		Int("status", resp.StatusCode).
		Dur("elapsed", dur).
		Msg("document routed")
	return resp, nil
}

func (r *Router) post(ctx context.Context, svc analysis.Service, endpoint string, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(envelope{
		DocumentBytes: base64.StdEncoding.EncodeToString(req.Data),
		Filename:      req.Filename,
		DocumentID:    req.DocumentID,
		Analysis:      req.Analysis,
	})
	if err != nil {
		return nil, &DownstreamError{Service: string(svc), Err: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &DownstreamError{Service: string(svc), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, &DownstreamError{Service: string(svc), Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, &DownstreamError{Service: string(svc), StatusCode: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &DownstreamError{Service: string(svc), StatusCode: httpResp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &DownstreamError{Service: string(svc), Err: fmt.Errorf("decode response: %w", err)}
	}

	// A 2xx with success=false is still a processing failure.
	if ok, present := body["success"].(bool); present && !ok {
		msg, _ := body["error"].(string)
		if msg == "" {
			msg = "processing failed"
		}
		return nil, &DownstreamError{Service: string(svc), Err: errors.New(msg)}
	}

	return &Response{Service: svc, StatusCode: httpResp.StatusCode, Body: body}, nil
}

func resultLabel(err error) string {
	var de *DownstreamError
	switch {
	case errors.Is(err, ErrBreakerOpen):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case IsFatal(err):
		return "rejected"
	case errors.As(err, &de) && de.StatusCode > 0:
		return "http_error"
	default:
		return "error"
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
