package orchestrator

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/docorchestrator/internal/analysis"
	"github.com/local/docorchestrator/internal/metrics"
	"github.com/local/docorchestrator/internal/router"
	"github.com/local/docorchestrator/internal/storage"
	"github.com/local/docorchestrator/internal/store"
)

func (o *Orchestrator) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, data, err := o.readDocument(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	if req.DocumentID == "" {
		req.DocumentID = uuid.NewString()
	}

	status, body := o.Process(r.Context(), req.DocumentID, req.Filename, data, req.SkipCache)
	writeJSON(w, status, body)
}

// Process analyses one document, routes it to the recommended tier and returns
// the HTTP status and response body. Cache, status and storage failures are
// logged and never fail the request.
func (o *Orchestrator) Process(ctx context.Context, documentID, filename string, data []byte, skipCache bool) (int, map[string]any) {
	logger := log.With().Str("document_id", documentID).Str("filename", filename).Logger()
	start := o.deps.Now()

	hash := store.ContentHash(data)
	if !skipCache {
		if cached := o.lookupCache(ctx, hash); cached != nil {
			cached["cached"] = true
			cached["document_id"] = documentID
			cached["analysis"] = renamed(cached["analysis"], filename)
			o.persistResult(ctx, documentID, cached)
			o.setStatus(ctx, documentID, store.Status{
				Status:   store.StatusSuccess,
				Message:  "served from result cache",
				Filename: filename,
				Start:    &start,
				End:      &start,
			})
			logger.Info().Str("content_hash", hash).Msg("duplicate document served from cache")
			return http.StatusOK, cached
		}
	}

	o.setStatus(ctx, documentID, store.Status{
		Status:   store.StatusProcessing,
		Filename: filename,
		Start:    &start,
	})

	analyzeStart := time.Now()
	result := o.deps.Analyzer.Analyze(data, filename)
	metrics.ObserveAnalysis(result.FileType, string(result.RecommendedService),
		result.ComplexityScore, result.Error != "", time.Since(analyzeStart))

	logger.Info().
		Str("file_type", result.FileType).
		Int("score", result.ComplexityScore).
		Str("service", string(result.RecommendedService)).
		Strs("steps", result.ProcessingSteps).
		Msg("document analysed")

	resp, err := o.deps.Router.Route(ctx, router.Request{
		DocumentID: documentID,
		Filename:   filename,
		Data:       data,
		Analysis:   result,
	})
	if err != nil {
		end := o.deps.Now()
		o.setStatus(ctx, documentID, store.Status{
			Status:   store.StatusFailed,
			Message:  err.Error(),
			Filename: filename,
			Service:  string(result.RecommendedService),
			Score:    result.ComplexityScore,
			Start:    &start,
			End:      &end,
		})
		logger.Error().Err(err).Str("service", string(result.RecommendedService)).Msg("document processing failed")
		return http.StatusBadGateway, map[string]any{
			"success":     false,
			"error":       err.Error(),
			"document_id": documentID,
			"analysis":    result,
		}
	}

	body := responseBody(resp, result, documentID)
	o.persistResult(ctx, documentID, body)
	o.storeCache(ctx, hash, body)

	end := o.deps.Now()
	o.setStatus(ctx, documentID, store.Status{
		Status:   store.StatusSuccess,
		Filename: filename,
		Service:  string(resp.Service),
		Score:    result.ComplexityScore,
		Start:    &start,
		End:      &end,
		Metadata: map[string]interface{}{"duration_ms": resp.Duration.Milliseconds()},
	})

	logger.Info().
		Str("service", string(resp.Service)).
		Dur("duration", resp.Duration).
		Msg("document processed")
	return http.StatusOK, body
}

func responseBody(resp *router.Response, result analysis.DocumentAnalysis, documentID string) map[string]any {
	body := make(map[string]any, len(resp.Body)+4)
	for k, v := range resp.Body {
		body[k] = v
	}
	body["analysis"] = result
	body["processing_strategy"] = string(result.RecommendedService)
	body["processing_steps"] = result.ProcessingSteps
	body["document_id"] = documentID
	return body
}

func (o *Orchestrator) lookupCache(ctx context.Context, hash string) map[string]any {
	if o.deps.Cache == nil {
		return nil
	}
	cached, ok, err := o.deps.Cache.Get(ctx, hash)
	switch {
	case err != nil:
		metrics.CacheLookup("error")
		log.Warn().Err(err).Str("content_hash", hash).Msg("result cache lookup failed")
		return nil
	case !ok:
		metrics.CacheLookup("miss")
		return nil
	}
	metrics.CacheLookup("hit")
	return cached
}

// storeCache keeps the content-derived part of body; per-document fields are
// filled in again on every hit.
func (o *Orchestrator) storeCache(ctx context.Context, hash string, body map[string]any) {
	if o.deps.Cache == nil {
		return
	}
	entry := make(map[string]any, len(body))
	for k, v := range body {
		switch k {
		case "document_id", "result_key", "cached":
			continue
		}
		entry[k] = v
	}
	if err := o.deps.Cache.Put(ctx, hash, entry); err != nil {
		log.Warn().Err(err).Str("content_hash", hash).Msg("failed to cache result")
	}
}

// renamed returns the cached analysis with the caller's filename.
func renamed(v any, filename string) any {
	switch an := v.(type) {
	case analysis.DocumentAnalysis:
		an.Filename = filename
		return an
	case map[string]any:
		out := make(map[string]any, len(an))
		for k, val := range an {
			out[k] = val
		}
		out["filename"] = filename
		return out
	}
	return v
}

func (o *Orchestrator) persistResult(ctx context.Context, documentID string, body map[string]any) {
	if o.deps.Storage == nil || o.deps.Storage.Bucket() == "" {
		return
	}
	key := storage.ResultKey(o.deps.ResultsPrefix, documentID)
	if err := o.deps.Storage.PutJSON(ctx, key, body); err != nil {
		log.Warn().Err(err).Str("document_id", documentID).Str("key", key).Msg("failed to persist result")
		return
	}
	body["result_key"] = key
}

func (o *Orchestrator) setStatus(ctx context.Context, documentID string, st store.Status) {
	if o.deps.Status == nil {
		return
	}
	if err := o.deps.Status.Set(ctx, documentID, st); err != nil {
		log.Warn().Err(err).Str("document_id", documentID).Str("status", st.Status).Msg("failed to update status")
	}
}
