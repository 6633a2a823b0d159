package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/docorchestrator/internal/analysis"
)

type received struct {
	path string
	env  envelope
}

func newTier(t *testing.T, status int, body string, got *received) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.path = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got.env))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func request(svc analysis.Service) Request {
	return Request{
		DocumentID: "doc-1",
		Filename:   "report.pdf",
		Data:       []byte("%PDF-1.4 body"),
		Analysis: analysis.DocumentAnalysis{
			Filename:           "report.pdf",
			FileType:           "application/pdf",
			ComplexityScore:    3,
			RecommendedService: svc,
			ProcessingSteps:    []string{analysis.StepTextExtraction, analysis.StepTableDetection},
		},
	}
}

func TestRouteToCore(t *testing.T) {
	var got received
	srv := newTier(t, 200, `{"success":true,"text":"hello","chunks":[]}`, &got)
	r := New(Config{CoreURL: srv.URL, FullURL: "http://unused.invalid", Timeout: time.Second}, srv.Client())

	resp, err := r.Route(context.Background(), request(analysis.ServiceCore))
	require.NoError(t, err)

	assert.Equal(t, "/docling-core", got.path)
	assert.Equal(t, "doc-1", got.env.DocumentID)
	assert.Equal(t, "report.pdf", got.env.Filename)
	assert.Equal(t, 3, got.env.Analysis.ComplexityScore)
	raw, err := base64.StdEncoding.DecodeString(got.env.DocumentBytes)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(raw))

	assert.Equal(t, analysis.ServiceCore, resp.Service)
	assert.Equal(t, "hello", resp.Body["text"])
}

func TestRouteToFull(t *testing.T) {
	var got received
	srv := newTier(t, 200, `{"success":true,"pages":[]}`, &got)
	r := New(Config{CoreURL: "http://unused.invalid", FullURL: srv.URL + "/"}, srv.Client())

	_, err := r.Route(context.Background(), request(analysis.ServiceFull))
	require.NoError(t, err)
	assert.Equal(t, "/docling-full", got.path)
	assert.Equal(t, srv.URL+"/docling-full", r.Endpoint(analysis.ServiceFull))
}

func TestRouteFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  int
		transient bool
	}{
		{"server error", 503, "overloaded", 503, true},
		{"client error", 413, "too large", 413, false},
		{"undecodable", 200, "<html>", 0, false},
		{"reported failure", 200, `{"success":false,"error":"unsupported file"}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTier(t, tt.status, tt.body, nil)
			r := New(Config{CoreURL: srv.URL, FullURL: srv.URL}, srv.Client())

			_, err := r.Route(context.Background(), request(analysis.ServiceCore))
			var de *DownstreamError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "docling-core", de.Service)
			assert.Equal(t, tt.wantCode, de.StatusCode)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestRouteReportedFailureMessage(t *testing.T) {
	srv := newTier(t, 200, `{"success":false,"error":"unsupported file"}`, nil)
	r := New(Config{CoreURL: srv.URL, FullURL: srv.URL}, srv.Client())
	_, err := r.Route(context.Background(), request(analysis.ServiceCore))
	assert.EqualError(t, err, "docling-core request failed: unsupported file")
}

func TestBreakerOpensOnTransientFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := New(Config{CoreURL: srv.URL, FullURL: srv.URL, BreakerFailures: 2, BreakerCooldown: time.Minute}, srv.Client())
	for i := 0; i < 2; i++ {
		_, err := r.Route(context.Background(), request(analysis.ServiceCore))
		require.Error(t, err)
	}
	assert.Equal(t, "open", r.BreakerState(analysis.ServiceCore))
	assert.Equal(t, "closed", r.BreakerState(analysis.ServiceFull))

	_, err := r.Route(context.Background(), request(analysis.ServiceCore))
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	srv := newTier(t, 400, `{"error":"bad envelope"}`, nil)
	r := New(Config{CoreURL: srv.URL, FullURL: srv.URL, BreakerFailures: 1}, srv.Client())

	for i := 0; i < 3; i++ {
		_, err := r.Route(context.Background(), request(analysis.ServiceCore))
		require.Error(t, err)
		assert.True(t, IsFatal(err))
	}
	assert.Equal(t, "closed", r.BreakerState(analysis.ServiceCore))
}

func TestRouteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	r := New(Config{CoreURL: srv.URL, FullURL: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client())
	_, err := r.Route(context.Background(), request(analysis.ServiceCore))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, IsTransient(err))
}

func TestRouteUnknownService(t *testing.T) {
	r := New(Config{CoreURL: "http://a", FullURL: "http://b"}, nil)
	_, err := r.Route(context.Background(), request(analysis.Service("docling-gpu")))
	var de *DownstreamError
	require.ErrorAs(t, err, &de)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(&DownstreamError{Service: "x", StatusCode: 429}))
	assert.False(t, IsTransient(&DownstreamError{Service: "x", StatusCode: 404}))
	assert.False(t, IsTransient(context.Canceled))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "breaker_open", resultLabel(ErrBreakerOpen))
	assert.Equal(t, "timeout", resultLabel(&DownstreamError{Service: "docling-core", Err: context.DeadlineExceeded}))
	assert.Equal(t, "rejected", resultLabel(&DownstreamError{Service: "docling-core", StatusCode: 422}))
	assert.Equal(t, "http_error", resultLabel(&DownstreamError{Service: "docling-core", StatusCode: 503}))
	assert.Equal(t, "http_error", resultLabel(&DownstreamError{Service: "docling-core", StatusCode: 429}))
	assert.Equal(t, "error", resultLabel(errors.New("boom")))
}
