// Package statuscheck reports readiness of the collaborators the orchestrator
// depends on.
package statuscheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/local/docorchestrator/internal/analysis"
)

// Pinger is anything that can answer a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// BreakerReporter exposes the per-tier breaker state of the router.
type BreakerReporter interface {
	BreakerState(svc analysis.Service) string
	Endpoint(svc analysis.Service) string
}

// Checker aggregates health checks for external dependencies.
type Checker struct {
	redis   Pinger
	storage Pinger
	tiers   BreakerReporter
	timeout time.Duration
}

// Options configures the Checker. Nil collaborators are reported as disabled.
type Options struct {
	Redis   Pinger
	Storage Pinger
	Tiers   BreakerReporter
	Timeout time.Duration
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Ready       bool   `json:"ready"`
	Redis       Status `json:"redis"`
	S3          Status `json:"s3"`
	DoclingCore Status `json:"docling_core"`
	DoclingFull Status `json:"docling_full"`
}

func New(opts Options) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	return &Checker{redis: opts.Redis, storage: opts.Storage, tiers: opts.Tiers, timeout: opts.Timeout}
}

// Summary returns the current status snapshot. The service is ready when no
// configured collaborator is failing; disabled ones do not count.
func (c *Checker) Summary(ctx context.Context) Summary {
	s := Summary{
		Redis:       c.ping(ctx, c.redis),
		S3:          c.ping(ctx, c.storage),
		DoclingCore: c.tier(analysis.ServiceCore),
		DoclingFull: c.tier(analysis.ServiceFull),
	}
	s.Ready = (s.Redis.OK || c.redis == nil) &&
		(s.S3.OK || c.storage == nil) &&
		(s.DoclingCore.OK || s.DoclingFull.OK)
	return s
}

// Handler serves the summary; 503 when not ready.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := c.Summary(r.Context())
		code := http.StatusOK
		if !s.Ready {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(s); err != nil {
			log.Error().Err(err).Msg("failed to write readiness summary")
		}
	}
}

func (c *Checker) ping(ctx context.Context, p Pinger) Status {
	if p == nil {
		return Status{OK: false, Message: "disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func (c *Checker) tier(svc analysis.Service) Status {
	if c.tiers == nil {
		return Status{OK: false, Message: "router unavailable"}
	}
	state := c.tiers.BreakerState(svc)
	if state == gobreaker.StateOpen.String() {
		return Status{OK: false, Message: "breaker open for " + c.tiers.Endpoint(svc)}
	}
	return Status{OK: true, Message: "breaker " + state}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
