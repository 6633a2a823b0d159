// Package orchestrator exposes the HTTP surface that analyses incoming documents
// and hands them to the processing tier picked by the complexity score.
package orchestrator

import (
	"context"
	"net/http"
	"time"

	"github.com/local/docorchestrator/internal/analysis"
	"github.com/local/docorchestrator/internal/router"
	"github.com/local/docorchestrator/internal/storage"
	"github.com/local/docorchestrator/internal/store"
)

type Analyzer interface {
	Analyze(data []byte, filename string) analysis.DocumentAnalysis
}

type Router interface {
	Route(ctx context.Context, req router.Request) (*router.Response, error)
}

type StatusStore interface {
	Set(ctx context.Context, documentID string, st store.Status) error
	Get(ctx context.Context, documentID string) (store.Status, bool, error)
}

type ResultCache interface {
	Get(ctx context.Context, hash string) (map[string]any, bool, error)
	Put(ctx context.Context, hash string, result map[string]any) error
}

type ObjectStore interface {
	Bucket() string
	PresignTTL() time.Duration
	GetDocument(ctx context.Context, key string) ([]byte, *storage.FileMetadata, error)
	PutJSON(ctx context.Context, key string, v any) error
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
}

// Dependencies wires the orchestrator. Status, Cache and Storage are optional;
// a nil value disables the features that need them.
type Dependencies struct {
	Analyzer      Analyzer
	Router        Router
	Status        StatusStore
	Cache         ResultCache
	Storage       ObjectStore
	ResultsPrefix string
	MaxBodyBytes  int64
	Now           func() time.Time
}

type Orchestrator struct {
	deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 64 << 20
	}
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", instrument("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.HandleFunc("POST /process", instrument("/process", o.handleProcess))
	mux.HandleFunc("POST /analyze", instrument("/analyze", o.handleAnalyze))
	mux.HandleFunc("GET /status/{id}", instrument("/status", o.handleStatus))
	mux.HandleFunc("POST /presigned-url", instrument("/presigned-url", o.handlePresign))
}
