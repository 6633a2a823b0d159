package statuscheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/docorchestrator/internal/analysis"
)

type tiers map[analysis.Service]string

func (t tiers) BreakerState(svc analysis.Service) string { return t[svc] }
func (t tiers) Endpoint(svc analysis.Service) string     { return "http://tier/" + string(svc) }

func ok(context.Context) error { return nil }

func TestSummaryAllHealthy(t *testing.T) {
	c := New(Options{
		Redis:   PingFunc(ok),
		Storage: PingFunc(ok),
		Tiers:   tiers{analysis.ServiceCore: "closed", analysis.ServiceFull: "half-open"},
	})

	s := c.Summary(context.Background())
	assert.True(t, s.Ready)
	assert.True(t, s.Redis.OK)
	assert.True(t, s.S3.OK)
	assert.Equal(t, "breaker half-open", s.DoclingFull.Message)
}

func TestSummaryDisabledCollaboratorsDoNotBlock(t *testing.T) {
	c := New(Options{Tiers: tiers{analysis.ServiceCore: "closed", analysis.ServiceFull: "open"}})

	s := c.Summary(context.Background())
	assert.True(t, s.Ready)
	assert.Equal(t, "disabled", s.Redis.Message)
	assert.False(t, s.DoclingFull.OK)
	assert.Contains(t, s.DoclingFull.Message, "http://tier/docling-full")
}

func TestHandlerNotReady(t *testing.T) {
	c := New(Options{
		Redis: PingFunc(func(context.Context) error { return errors.New(strings.Repeat("x", 200)) }),
		Tiers: tiers{analysis.ServiceCore: "closed", analysis.ServiceFull: "closed"},
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":false`)
}

func TestTrimError(t *testing.T) {
	assert.Equal(t, "", trimError(nil))
	assert.Len(t, trimError(errors.New(strings.Repeat("y", 300))), 120)
	assert.Equal(t, "timeout", trimError(context.DeadlineExceeded))
}
